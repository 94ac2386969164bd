package errkind

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_MatchesKindAndCause(t *testing.T) {
	err := Wrap(ErrMediaRead, "source", "cat.png", io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, ErrMediaRead)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, ErrEncode)
	assert.Equal(t, "source: media read error (cat.png): unexpected EOF", err.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(ErrEncode, "encode", "", nil))
}

func TestWrap_KeepsExistingStage(t *testing.T) {
	inner := Wrap(ErrEncode, "stack", "out_stacked.mp4", errors.New("disk full"))
	outer := Wrap(ErrEncode, "pipeline", "", inner)

	assert.Equal(t, "stack", StageOf(outer))

	var e *Error
	require.ErrorAs(t, outer, &e)
	assert.Equal(t, "out_stacked.mp4", e.Input)
}

func TestWrap_DoesNotModifyExisting(t *testing.T) {
	inner := Configf("bad window")
	outer := Wrap(ErrConfiguration, "driving", "talk.mp4", inner)

	assert.Equal(t, "driving", StageOf(outer))
	assert.Equal(t, "", StageOf(inner))
}

func TestWrap_KeepsOuterContext(t *testing.T) {
	inner := Wrap(ErrMediaRead, "driving", "talk.mp4", io.ErrUnexpectedEOF)
	annotated := fmt.Errorf("read frame 12: %w", inner)

	err := Wrap(ErrMediaRead, "pipeline", "", annotated)

	assert.Contains(t, err.Error(), "read frame 12")
	assert.Equal(t, "driving", StageOf(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	unstaged := fmt.Errorf("load config: %w", Configf("bad mode"))
	err = Wrap(ErrConfiguration, "codec", "", unstaged)
	assert.Contains(t, err.Error(), "load config")
	assert.Equal(t, "codec", StageOf(err))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestConfigf(t *testing.T) {
	err := Configf("unknown codec %q", "av1")

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), `unknown codec "av1"`)
	assert.Equal(t, "", StageOf(err))
}

package timeremap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/imganimate/pkg/errkind"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Window
	}{
		{"whole source by default", Request{}, Window{Start: 0, Stop: 10}},
		{"start and end", Request{Start: 2, End: 5}, Window{Start: 2, Stop: 5}},
		{"start and duration", Request{Start: 2, Duration: 3}, Window{Start: 2, Stop: 5}},
		{"start only", Request{Start: 4}, Window{Start: 4, Stop: 10}},
		{"duration overruns from start", Request{Start: 9, Duration: 5}, Window{Start: 9, Stop: 10}},
		{"end before start falls to start-only", Request{Start: 6, End: 3}, Window{Start: 6, Stop: 10}},
		{"end equal to source is out of range", Request{Start: 2, End: 10}, Window{Start: 2, Stop: 10}},
		{"start past source resets", Request{Start: 12}, Window{Start: 0, Stop: 10, StartReset: true}},
		{"start equal to source resets", Request{Start: 10, Duration: 1}, Window{Start: 0, Stop: 10, StartReset: true}},
		{"end only", Request{End: 4}, Window{Start: 0, Stop: 4}},
		{"end equal to source is full", Request{End: 10}, Window{Start: 0, Stop: 10}},
		{"end past source is full", Request{End: 15}, Window{Start: 0, Stop: 10}},
		{"duration only", Request{Duration: 7.5}, Window{Start: 0, Stop: 7.5}},
		{"duration equal to source is full", Request{Duration: 10}, Window{Start: 0, Stop: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.req, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The start+duration overrun case keeps the requested start; only a start at
// or beyond the source duration falls back to the whole source.
func TestResolve_StartPlusDurationOverrun(t *testing.T) {
	got, err := Resolve(Request{Start: 9, Duration: 5}, 10)
	require.NoError(t, err)
	assert.False(t, got.StartReset)
	assert.InDelta(t, 1.0, got.Length(), 1e-9)
}

func TestResolve_EndAndDurationExclusive(t *testing.T) {
	for _, req := range []Request{
		{End: 5, Duration: 3},
		{Start: 1, End: 5, Duration: 3},
		{Start: 100, End: 200, Duration: 300},
	} {
		_, err := Resolve(req, 10)
		assert.ErrorIs(t, err, errkind.ErrConfiguration)
	}
}

func TestResolve_Negative(t *testing.T) {
	_, err := Resolve(Request{Start: -1}, 10)
	assert.ErrorIs(t, err, errkind.ErrConfiguration)
}

func TestResolve_ZeroSource(t *testing.T) {
	_, err := Resolve(Request{}, 0)
	assert.ErrorIs(t, err, errkind.ErrMediaRead)
	assert.NotErrorIs(t, err, errkind.ErrConfiguration)
}

func TestWindow(t *testing.T) {
	assert.Equal(t, 3.0, Window{Start: 2, Stop: 5}.Length())
	assert.Equal(t, "[2.00, 5.00)", Window{Start: 2, Stop: 5}.String())
}

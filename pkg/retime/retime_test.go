package retime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buffer(n int) []int {
	buf := make([]int, n)
	for i := range buf {
		buf[i] = i
	}
	return buf
}

func TestFrameAt(t *testing.T) {
	buf := buffer(100)

	tests := []struct {
		t    float64
		want int
	}{
		{0, 0},
		{0.05, 0},
		{0.1, 1},
		{5, 50},
		{9.99, 99},
		{10, 99},
		{25, 99},
	}

	for _, tt := range tests {
		got, ok := FrameAt(buf, 10, tt.t)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, "t=%v", tt.t)
	}
}

func TestFrameAt_ZeroDurationClampsToLast(t *testing.T) {
	got, ok := FrameAt(buffer(5), 0, 0)
	assert.True(t, ok)
	assert.Equal(t, 4, got)
}

func TestFrameAt_Empty(t *testing.T) {
	_, ok := FrameAt([]int(nil), 10, 1)
	assert.False(t, ok)
}

func TestIndex_OddValues(t *testing.T) {
	assert.Equal(t, 9, Index(10, 1, math.NaN()))
	assert.Equal(t, 9, Index(10, 1, -1))
	assert.Equal(t, 9, Index(10, 1, math.Inf(1)))
	assert.Equal(t, -1, Index(0, 1, 0))
}

func TestIndex_UpsamplingRepeatsFrames(t *testing.T) {
	// 10 predictions stretched over 2 seconds at 30 fps
	tl := Timeline{Duration: 2, FPS: 30}
	counts := make(map[int]int)
	for k := 0; k < tl.FrameCount(); k++ {
		counts[Index(10, tl.Duration, tl.TimeAt(k))]++
	}

	assert.Len(t, counts, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 6, counts[i], "index %d", i)
	}
}

func TestIndex_DownsamplingSkipsFrames(t *testing.T) {
	tl := Timeline{Duration: 1, FPS: 10}
	var got []int
	for k := 0; k < tl.FrameCount(); k++ {
		got = append(got, Index(100, tl.Duration, tl.TimeAt(k)))
	}
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}, got)
}

func TestTimeline(t *testing.T) {
	tl := Timeline{Duration: 3.5, FPS: 24}
	assert.Equal(t, 84, tl.FrameCount())
	assert.InDelta(t, 0.5, tl.TimeAt(12), 1e-9)
	assert.Equal(t, 500, tl.TimestampMs(12))

	assert.Zero(t, Timeline{Duration: 0, FPS: 30}.FrameCount())
	assert.Zero(t, Timeline{Duration: 3, FPS: 0}.TimeAt(5))
}

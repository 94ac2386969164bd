// Package retime maps a continuous output timeline onto the fixed-length
// prediction buffer returned by the animation model.
package retime

import "math"

// Index returns the buffer index shown at time t of an output lasting
// outputDuration seconds, for a buffer of n frames.
//
// The index is floor(n / outputDuration * t). Whenever that value does not
// address a frame (t at or past the end, a zero duration, NaN) the last index
// is used. It returns -1 only for an empty buffer.
func Index(n int, outputDuration, t float64) int {
	if n <= 0 {
		return -1
	}
	last := n - 1
	if outputDuration <= 0 {
		return last
	}

	pos := float64(n) / outputDuration * t
	if math.IsNaN(pos) || pos < 0 {
		return last
	}

	idx := math.Floor(pos)
	if idx > float64(last) {
		return last
	}
	return int(idx)
}

// FrameAt returns the buffer element shown at time t. Frames are never
// interpolated: consecutive times may repeat an element or skip some.
// ok is false only when buf is empty.
func FrameAt[T any](buf []T, outputDuration, t float64) (frame T, ok bool) {
	i := Index(len(buf), outputDuration, t)
	if i < 0 {
		return frame, false
	}
	return buf[i], true
}

// Timeline describes the output clip sampled at a fixed frame rate.
type Timeline struct {
	Duration float64 // Seconds
	FPS      float64 // Frames per second
}

// FrameCount returns the number of frames written for the timeline,
// floor(Duration * FPS).
func (tl Timeline) FrameCount() int {
	if tl.Duration <= 0 || tl.FPS <= 0 {
		return 0
	}
	return int(math.Floor(tl.Duration * tl.FPS))
}

// TimeAt returns the presentation time in seconds of output frame k.
func (tl Timeline) TimeAt(k int) float64 {
	if tl.FPS <= 0 {
		return 0
	}
	return float64(k) / tl.FPS
}

// TimestampMs returns the presentation time of output frame k in milliseconds.
func (tl Timeline) TimestampMs(k int) int {
	return int(math.Round(tl.TimeAt(k) * 1000))
}

// Package timeremap resolves the user's start/end/duration request against the
// driving video's real duration.
package timeremap

import (
	"fmt"

	"github.com/user/imganimate/pkg/errkind"
)

// Request is the time window asked for on the command line.
// A zero value means "not set" for every field, matching the CLI defaults.
type Request struct {
	Start    float64 // Seconds from the beginning of the source
	End      float64 // Absolute end in seconds (exclusive with Duration)
	Duration float64 // Length in seconds counted from Start (exclusive with End)
}

// Window is the effective [Start, Stop) range inside the source.
type Window struct {
	Start float64
	Stop  float64

	// StartReset is set when the requested start was out of range and the
	// whole source was selected instead.
	StartReset bool
}

// Length returns Stop - Start.
func (w Window) Length() float64 {
	return w.Stop - w.Start
}

// String formats the window for logs.
func (w Window) String() string {
	return fmt.Sprintf("[%.2f, %.2f)", w.Start, w.Stop)
}

// Validate checks the request on its own, before any media is read.
func (r Request) Validate() error {
	if r.End != 0 && r.Duration != 0 {
		return errkind.Configf("end (%.2f) and duration (%.2f) are mutually exclusive", r.End, r.Duration)
	}
	if r.Start < 0 || r.End < 0 || r.Duration < 0 {
		return errkind.Configf("start, end and duration must not be negative")
	}
	return nil
}

// Resolve computes the effective window.
//
// Every bound comparison is strict: an end (or start+duration) equal to the
// source duration is treated as out of range and the fallback branch applies,
// which still selects up to the end of the source.
func Resolve(req Request, sourceDuration float64) (Window, error) {
	if err := req.Validate(); err != nil {
		return Window{}, err
	}
	if sourceDuration <= 0 {
		return Window{}, &errkind.Error{Kind: errkind.ErrMediaRead, Err: fmt.Errorf("source duration must be positive, got %.3f", sourceDuration)}
	}

	start, end, duration := req.Start, req.End, req.Duration

	if start != 0 {
		switch {
		case end != 0 && end > start && end < sourceDuration:
			return Window{Start: start, Stop: end}, nil
		case duration != 0 && start+duration < sourceDuration:
			return Window{Start: start, Stop: start + duration}, nil
		case start < sourceDuration:
			return Window{Start: start, Stop: sourceDuration}, nil
		default:
			return Window{Start: 0, Stop: sourceDuration, StartReset: true}, nil
		}
	}

	switch {
	case end != 0 && end < sourceDuration:
		return Window{Start: 0, Stop: end}, nil
	case duration != 0 && duration < sourceDuration:
		return Window{Start: 0, Stop: duration}, nil
	default:
		return Window{Start: 0, Stop: sourceDuration}, nil
	}
}

// Package errkind defines the error taxonomy shared by every pipeline stage.
//
// Each failure carries a kind (one of the sentinels below), the stage that
// produced it and the input it was working on. Callers match kinds with
// errors.Is and recover the context with errors.As.
package errkind

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports invalid or contradictory run options.
	ErrConfiguration = errors.New("configuration error")

	// ErrMediaRead reports a source image or driving video that cannot be decoded.
	ErrMediaRead = errors.New("media read error")

	// ErrInference reports a failure inside the animation model collaborator.
	ErrInference = errors.New("inference error")

	// ErrEncode reports a failure while writing an output video.
	ErrEncode = errors.New("encode error")
)

// Error is a classified pipeline failure.
type Error struct {
	Kind  error  // One of the sentinels above
	Stage string // Pipeline stage, e.g. "driving" or "stack"
	Input string // Path or option the stage was processing (optional)
	Err   error  // Underlying cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Input != "" {
		msg += fmt.Sprintf(" (%s)", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap classifies err. It returns nil when err is nil. An err that is already
// an *Error of the same kind keeps its original stage unless it had none; it
// is never modified, and context added around it with %w is kept.
func Wrap(kind error, stage, input string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) && existing.Kind == kind {
		if direct, ok := err.(*Error); ok {
			cp := *direct
			if cp.Stage == "" {
				cp.Stage = stage
			}
			if cp.Input == "" {
				cp.Input = input
			}
			return &cp
		}
		if existing.Stage != "" {
			return err
		}
	}
	return &Error{Kind: kind, Stage: stage, Input: input, Err: err}
}

// Configf builds an ErrConfiguration with a formatted cause.
func Configf(format string, args ...interface{}) error {
	return &Error{Kind: ErrConfiguration, Err: fmt.Errorf(format, args...)}
}

// StageOf returns the stage recorded on err, or "" when err is not classified.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

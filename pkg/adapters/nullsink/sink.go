// Package nullsink provides a debug sink that discards everything.
package nullsink

import (
	"image"

	"github.com/user/imganimate/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
type Sink struct{}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

func (s *Sink) Enabled() bool                           { return false }
func (s *Sink) SaveRunJSON([]byte) error                { return nil }
func (s *Sink) SaveSource(image.Image) error            { return nil }
func (s *Sink) SaveDrivingFrame(int, image.Image) error { return nil }
func (s *Sink) SavePrediction(int, image.Image) error   { return nil }

var _ ports.DebugSink = (*Sink)(nil)

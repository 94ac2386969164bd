package mocks

import (
	"image"
	"sync"

	"github.com/user/imganimate/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	RunJSON       []byte
	Source        image.Image
	DrivingFrames map[int]image.Image
	Predictions   map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		DrivingFrames: make(map[int]image.Image),
		Predictions:   make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveRunJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunJSON = data
	return nil
}

func (m *DebugSink) SaveSource(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Source = img
	return nil
}

func (m *DebugSink) SaveDrivingFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DrivingFrames[index] = img
	return nil
}

func (m *DebugSink) SavePrediction(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Predictions[index] = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

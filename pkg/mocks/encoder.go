package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/imganimate/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
type VideoEncoder struct {
	mu sync.Mutex

	BeginFunc       func(width, height int, fps float64, opts ports.EncoderOptions) error
	EncodeFrameFunc func(img image.Image, timestampMs int) error
	EndFunc         func() ([]byte, error)

	// Recorded calls for verification
	BeginCalls       []BeginCall
	EncodeFrameCalls []EncodeFrameCall
	EndCalled        bool
	CloseCalls       int
}

// BeginCall records a call to Begin.
type BeginCall struct {
	Width   int
	Height  int
	FPS     float64
	Options ports.EncoderOptions
}

// EncodeFrameCall records a call to EncodeFrame.
type EncodeFrameCall struct {
	TimestampMs int
	Image       image.Image
}

func (m *VideoEncoder) Begin(ctx context.Context, width, height int, fps float64, opts ports.EncoderOptions) error {
	m.mu.Lock()
	m.BeginCalls = append(m.BeginCalls, BeginCall{Width: width, Height: height, FPS: fps, Options: opts})
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, fps, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(img image.Image, timestampMs int) error {
	m.mu.Lock()
	m.EncodeFrameCalls = append(m.EncodeFrameCalls, EncodeFrameCall{TimestampMs: timestampMs, Image: img})
	m.mu.Unlock()
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img, timestampMs)
	}
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.mu.Lock()
	m.EndCalled = true
	m.mu.Unlock()
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// Minimal ftyp box header
	return []byte{0x00, 0x00, 0x00, 0x08, 'f', 't', 'y', 'p'}, nil
}

func (m *VideoEncoder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)

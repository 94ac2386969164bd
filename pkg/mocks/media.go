package mocks

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/user/imganimate/pkg/ports"
)

// MediaProber is a mock implementation of ports.MediaProber.
type MediaProber struct {
	mu sync.Mutex

	Descriptors map[string]ports.MediaDescriptor
	ProbeFunc   func(path string) (ports.MediaDescriptor, error)

	ProbeCalls []string
}

func (m *MediaProber) Probe(ctx context.Context, path string) (ports.MediaDescriptor, error) {
	m.mu.Lock()
	m.ProbeCalls = append(m.ProbeCalls, path)
	m.mu.Unlock()
	if m.ProbeFunc != nil {
		return m.ProbeFunc(path)
	}
	if d, ok := m.Descriptors[path]; ok {
		return d, nil
	}
	return ports.MediaDescriptor{}, fmt.Errorf("no descriptor for %s", path)
}

var _ ports.MediaProber = (*MediaProber)(nil)

// VideoDecoder is a mock implementation of ports.VideoDecoder that replays
// Frames on every Open.
type VideoDecoder struct {
	mu sync.Mutex

	Frames   []image.Image
	OpenFunc func(path string, opts ports.DecodeOptions) (ports.FrameReader, error)
	// ReadErr is returned after the last frame instead of io.EOF.
	ReadErr error

	OpenCalls []OpenCall
	readers   []*FrameReader
}

// OpenCall records a call to Open.
type OpenCall struct {
	Path    string
	Options ports.DecodeOptions
}

func (m *VideoDecoder) Open(ctx context.Context, path string, opts ports.DecodeOptions) (ports.FrameReader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OpenCalls = append(m.OpenCalls, OpenCall{Path: path, Options: opts})
	if m.OpenFunc != nil {
		return m.OpenFunc(path, opts)
	}
	r := &FrameReader{frames: m.Frames, err: m.ReadErr}
	m.readers = append(m.readers, r)
	return r, nil
}

// AllClosed reports whether every reader handed out has been closed.
func (m *VideoDecoder) AllClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.readers {
		if !r.Closed {
			return false
		}
	}
	return true
}

var _ ports.VideoDecoder = (*VideoDecoder)(nil)

// FrameReader replays a fixed list of frames.
type FrameReader struct {
	frames []image.Image
	err    error
	pos    int

	Closed bool
}

// NewFrameReader creates a reader over frames.
func NewFrameReader(frames []image.Image) *FrameReader {
	return &FrameReader{frames: frames}
}

func (r *FrameReader) Next() (image.Image, error) {
	if r.pos >= len(r.frames) {
		if r.err != nil {
			return nil, r.err
		}
		return nil, io.EOF
	}
	img := r.frames[r.pos]
	r.pos++
	return img, nil
}

func (r *FrameReader) Close() error {
	r.Closed = true
	return nil
}

var _ ports.FrameReader = (*FrameReader)(nil)

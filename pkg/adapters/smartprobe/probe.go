// Package smartprobe picks the cheapest prober that can describe a file:
// MP4 boxes are read in-process, anything else goes through ffprobe.
package smartprobe

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/user/imganimate/pkg/ports"
)

// Backend identifies the prober that produced a descriptor.
type Backend string

const (
	// BackendMP4 reads the MP4 box structure directly.
	BackendMP4 Backend = "mp4"
	// BackendFFprobe runs the ffprobe executable.
	BackendFFprobe Backend = "ffprobe"
)

// ErrNoProber is returned when neither backend is configured.
var ErrNoProber = errors.New("smartprobe: no prober available")

// mp4Extensions are probed in-process first.
var mp4Extensions = map[string]bool{
	".mp4": true,
	".m4v": true,
	".mov": true,
}

// Prober implements ports.MediaProber over two backends.
type Prober struct {
	mp4     ports.MediaProber
	ffprobe ports.MediaProber
	logger  ports.Logger
}

// New creates a prober. Either backend may be nil.
func New(mp4, ffprobe ports.MediaProber, logger ports.Logger) *Prober {
	return &Prober{
		mp4:     mp4,
		ffprobe: ffprobe,
		logger:  logger.WithComponent("probe"),
	}
}

// Probe describes path, falling back to ffprobe when the in-process reader
// cannot handle the file or reports incomplete information.
func (p *Prober) Probe(ctx context.Context, path string) (ports.MediaDescriptor, error) {
	var firstErr error

	if p.mp4 != nil && mp4Extensions[strings.ToLower(filepath.Ext(path))] {
		desc, err := p.mp4.Probe(ctx, path)
		if err == nil && complete(desc) {
			p.logger.Debug("Probed %s with %s", path, BackendMP4)
			return desc, nil
		}
		if err == nil {
			err = errors.New("incomplete descriptor")
		}
		if ctx.Err() != nil {
			return ports.MediaDescriptor{}, ctx.Err()
		}
		p.logger.Debug("MP4 probe failed for %s: %s", path, err)
		firstErr = err
	}

	if p.ffprobe == nil {
		if firstErr != nil {
			return ports.MediaDescriptor{}, firstErr
		}
		return ports.MediaDescriptor{}, ErrNoProber
	}

	desc, err := p.ffprobe.Probe(ctx, path)
	if err != nil {
		return ports.MediaDescriptor{}, err
	}
	p.logger.Debug("Probed %s with %s", path, BackendFFprobe)
	return desc, nil
}

func complete(d ports.MediaDescriptor) bool {
	return d.Width > 0 && d.Height > 0 && d.Duration > 0 && d.FPS > 0
}

var _ ports.MediaProber = (*Prober)(nil)

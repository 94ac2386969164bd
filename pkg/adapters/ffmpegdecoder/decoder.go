// Package ffmpegdecoder decodes video frames by reading raw RGBA from an
// ffmpeg subprocess.
package ffmpegdecoder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"

	"github.com/user/imganimate/pkg/adapters/ffmpeg"
	"github.com/user/imganimate/pkg/ports"
)

var (
	// ErrInvalidSize is returned when DecodeOptions lacks the frame size.
	ErrInvalidSize = errors.New("ffmpegdecoder: frame size is required")
	// ErrTruncatedFrame is returned when the stream ends inside a frame.
	ErrTruncatedFrame = errors.New("ffmpegdecoder: truncated frame")
)

// Decoder implements ports.VideoDecoder.
type Decoder struct {
	binary string
}

// New creates a decoder. An empty binary is resolved with ffmpeg.FindFFmpeg.
func New(binary string) *Decoder {
	return &Decoder{binary: binary}
}

// Open starts ffmpeg for the window in opts. Rotation metadata is ignored so
// frames keep the probed width and height.
func (d *Decoder) Open(ctx context.Context, path string, opts ports.DecodeOptions) (ports.FrameReader, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, ErrInvalidSize
	}

	binary, err := ffmpeg.FindFFmpeg(d.binary)
	if err != nil {
		return nil, err
	}

	args := BuildArgs(path, opts)

	// #nosec G204 - binary is resolved from configuration
	cmd := exec.CommandContext(ctx, binary, args...)
	r := &reader{
		binary: binary,
		args:   args,
		cmd:    cmd,
		width:  opts.Width,
		height: opts.Height,
	}
	cmd.Stderr = &r.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	r.stdout = bufio.NewReaderSize(stdout, opts.Width*opts.Height*4)

	return r, nil
}

// BuildArgs returns the ffmpeg command line that writes raw RGBA frames of
// path to stdout.
func BuildArgs(path string, opts ports.DecodeOptions) []string {
	args := []string{"-v", "error", "-nostdin", "-noautorotate"}
	if opts.Start > 0 {
		args = append(args, "-ss", ffmpeg.Seconds(opts.Start))
	}
	if opts.Duration > 0 {
		args = append(args, "-t", ffmpeg.Seconds(opts.Duration))
	}
	return append(args,
		"-i", path,
		"-an",
		"-vsync", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
}

type reader struct {
	mu sync.Mutex

	binary string
	args   []string
	cmd    *exec.Cmd
	stdout *bufio.Reader
	stderr bytes.Buffer
	width  int
	height int
	done   bool
}

func (r *reader) Next() (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return nil, io.EOF
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	_, err := io.ReadFull(r.stdout, img.Pix)
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, io.EOF):
		if werr := r.wait(); werr != nil {
			return nil, werr
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		werr := r.wait()
		if werr != nil {
			return nil, werr
		}
		return nil, ErrTruncatedFrame
	default:
		r.kill()
		return nil, fmt.Errorf("read frame: %w", err)
	}
}

func (r *reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kill()
	return nil
}

func (r *reader) wait() error {
	if r.done {
		return nil
	}
	r.done = true
	if err := r.cmd.Wait(); err != nil {
		return ffmpeg.NewError(r.binary, r.args, r.stderr.String(), err)
	}
	return nil
}

func (r *reader) kill() {
	if r.done {
		return
	}
	r.done = true
	if r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
	r.cmd.Wait()
}

var _ ports.VideoDecoder = (*Decoder)(nil)

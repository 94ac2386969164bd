// Package ffmpegencoder encodes RGBA frames to MP4 by piping raw video into an
// ffmpeg process, optionally muxing a trimmed audio track from another file.
package ffmpegencoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/imganimate/pkg/adapters/ffmpeg"
	"github.com/user/imganimate/pkg/ports"
)

// Encoder implements ports.VideoEncoder using an ffmpeg subprocess.
type Encoder struct {
	mu sync.Mutex

	binary     string
	width      int
	height     int
	frame      *image.RGBA
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	args       []string
	tempPath   string
	frameCount int
}

// New creates a new encoder.
func New() *Encoder {
	return &Encoder{}
}

// Begin starts ffmpeg. The process lives until End or Close.
func (e *Encoder) Begin(ctx context.Context, width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if opts.VideoCodec == "" || (opts.Audio != nil && opts.AudioCodec == "") {
		return ErrMissingCodec
	}
	e.abortLocked()

	binary, err := ffmpeg.FindFFmpeg(opts.Binary)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp("", "imganimate_*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpFile.Close()

	e.binary = binary
	e.width = width
	e.height = height
	e.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	e.tempPath = tmpFile.Name()
	e.frameCount = 0
	e.stderr.Reset()
	e.args = BuildArgs(width, height, fps, opts, e.tempPath)

	// #nosec G204 - binary and arguments come from configuration
	e.cmd = exec.CommandContext(ctx, binary, e.args...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		os.Remove(e.tempPath)
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		os.Remove(e.tempPath)
		e.cmd, e.stdin = nil, nil
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return nil
}

// BuildArgs returns the ffmpeg command line for one encode.
// Input 0 is raw RGBA on stdin; input 1, when present, supplies audio.
func BuildArgs(width, height int, fps float64, opts ports.EncoderOptions, output string) []string {
	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
	}

	if opts.Audio != nil {
		if opts.Audio.Start > 0 {
			args = append(args, "-ss", ffmpeg.Seconds(opts.Audio.Start))
		}
		if opts.Audio.Duration > 0 {
			args = append(args, "-t", ffmpeg.Seconds(opts.Audio.Duration))
		}
		args = append(args, "-i", opts.Audio.Path, "-map", "0:v:0", "-map", "1:a:0?")
	}

	args = append(args, "-c:v", opts.VideoCodec, "-pix_fmt", "yuv420p")
	if opts.Audio != nil {
		args = append(args, "-c:a", opts.AudioCodec)
	}

	return append(args, "-movflags", "+faststart", output)
}

// EncodeFrame writes one frame. Frames are shown for 1/fps seconds each in
// call order; timestampMs is only used in error messages.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return ErrNotInitialized
	}

	draw.Draw(e.frame, e.frame.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(e.frame, e.frame.Bounds(), img, img.Bounds().Min, draw.Src)

	if _, err := e.stdin.Write(e.frame.Pix); err != nil {
		// ffmpeg exited early; wait for it so stderr is complete.
		e.stdin.Close()
		e.stdin = nil
		if waitErr := e.cmd.Wait(); waitErr != nil {
			err = waitErr
		}
		e.cmd = nil
		e.removeTemp()
		return fmt.Errorf("failed to write frame at %dms: %w", timestampMs, e.failure(err))
	}

	e.frameCount++
	return nil
}

// End finalizes encoding and returns the MP4 data.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return nil, ErrNotInitialized
	}
	if e.frameCount == 0 {
		e.abortLocked()
		return nil, ErrNoFrames
	}

	e.stdin.Close()
	e.stdin = nil

	err := e.cmd.Wait()
	e.cmd = nil
	defer e.removeTemp()
	if err != nil {
		return nil, e.failure(err)
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	return data, nil
}

// Close kills a running encode and removes its temporary file.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abortLocked()
	return nil
}

// FrameCount returns the number of frames written since Begin.
func (e *Encoder) FrameCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}

func (e *Encoder) abortLocked() {
	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil {
		if e.cmd.Process != nil {
			e.cmd.Process.Kill()
		}
		e.cmd.Wait()
		e.cmd = nil
	}
	e.removeTemp()
}

func (e *Encoder) removeTemp() {
	if e.tempPath != "" {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}
}

func (e *Encoder) failure(err error) error {
	return ffmpeg.NewError(e.binary, e.args, e.stderr.String(), err)
}

var _ ports.VideoEncoder = (*Encoder)(nil)

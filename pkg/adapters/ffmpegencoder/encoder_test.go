package ffmpegencoder

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/imganimate/pkg/adapters/codecdetect"
	"github.com/user/imganimate/pkg/adapters/ffmpeg"
	"github.com/user/imganimate/pkg/ports"
)

func TestBuildArgs_WithAudio(t *testing.T) {
	opts := ports.EncoderOptions{
		VideoCodec: "libx264",
		AudioCodec: "libmp3lame",
		Audio:      &ports.AudioSource{Path: "dance.mp4", Start: 2, Duration: 3.5},
	}

	args := strings.Join(BuildArgs(256, 256, 29.97, opts, "out.mp4"), " ")

	for _, want := range []string{
		"-s 256x256 -r 29.97 -i pipe:0",
		"-ss 2.000 -t 3.500 -i dance.mp4",
		"-map 0:v:0 -map 1:a:0?",
		"-c:v libx264 -pix_fmt yuv420p -c:a libmp3lame",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("expected %q in %q", want, args)
		}
	}
	if !strings.HasSuffix(args, "out.mp4") {
		t.Errorf("output path should be last: %q", args)
	}
}

func TestBuildArgs_WithoutAudio(t *testing.T) {
	args := strings.Join(BuildArgs(522, 256, 25, ports.EncoderOptions{VideoCodec: "mpeg4"}, "o.mp4"), " ")

	if strings.Contains(args, "-c:a") || strings.Contains(args, "-map") {
		t.Errorf("unexpected audio arguments in %q", args)
	}
	if !strings.Contains(args, "-c:v mpeg4") {
		t.Errorf("missing video codec in %q", args)
	}
}

func TestBuildArgs_AudioFromStart(t *testing.T) {
	opts := ports.EncoderOptions{
		VideoCodec: "libx264",
		AudioCodec: "libfdk_aac",
		Audio:      &ports.AudioSource{Path: "v.mp4"},
	}
	args := strings.Join(BuildArgs(256, 256, 30, opts, "o.mp4"), " ")

	if strings.Contains(args, "-ss") || strings.Contains(args, "-t ") {
		t.Errorf("untrimmed audio should not seek: %q", args)
	}
}

func TestEncoder_NotInitialized(t *testing.T) {
	enc := New()

	if err := enc.EncodeFrame(image.NewRGBA(image.Rect(0, 0, 2, 2)), 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := enc.End(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Errorf("Close on idle encoder: %v", err)
	}
}

func TestEncoder_RejectsOddSize(t *testing.T) {
	err := New().Begin(context.Background(), 255, 256, 30, ports.EncoderOptions{VideoCodec: "libx264"})
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestEncoder_MissingBinary(t *testing.T) {
	err := New().Begin(context.Background(), 16, 16, 30, ports.EncoderOptions{
		VideoCodec: "libx264",
		Binary:     filepath.Join(t.TempDir(), "ffmpeg-fdk-aac"),
	})
	if !errors.Is(err, ffmpeg.ErrNotFound) {
		t.Errorf("expected ffmpeg.ErrNotFound, got %v", err)
	}
}

func TestEncoder_EncodesMPEG4(t *testing.T) {
	requireFFmpeg(t)

	enc := New()
	defer enc.Close()

	if err := enc.Begin(context.Background(), 64, 64, 10, ports.EncoderOptions{VideoCodec: "mpeg4"}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		for p := range img.Pix {
			img.Pix[p] = uint8(i * 20)
		}
		if err := enc.EncodeFrame(img, i*100); err != nil {
			t.Fatalf("EncodeFrame failed: %v", err)
		}
	}

	data, err := enc.End()
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	codec, err := codecdetect.DetectFromBytes(data)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if codec != codecdetect.CodecMPEG4 {
		t.Errorf("expected mpeg4 video track, got %s", codec)
	}
}

func TestEncoder_NoFrames(t *testing.T) {
	requireFFmpeg(t)

	enc := New()
	if err := enc.Begin(context.Background(), 16, 16, 10, ports.EncoderOptions{VideoCodec: "mpeg4"}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := enc.End(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}

func TestEncoder_CloseRemovesTempFile(t *testing.T) {
	requireFFmpeg(t)

	enc := New()
	if err := enc.Begin(context.Background(), 16, 16, 10, ports.EncoderOptions{VideoCodec: "mpeg4"}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	tmp := enc.tempPath
	if err := enc.EncodeFrame(image.NewUniform(color.White), 0); err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	enc.Close()

	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed", tmp)
	}
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := ffmpeg.FindFFmpeg(""); err != nil {
		t.Skip("ffmpeg not available")
	}
}

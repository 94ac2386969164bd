package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFind_ExplicitRelativeFile(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg-fdk-aac")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)

	got, err := Find("ffmpeg", "ffmpeg-fdk-aac", "")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %s", got)
	}
	if filepath.Base(got) != "ffmpeg-fdk-aac" {
		t.Errorf("unexpected path %s", got)
	}
}

func TestFind_ExplicitMissing(t *testing.T) {
	_, err := Find("ffmpeg", filepath.Join(t.TempDir(), "nope", "ffmpeg"), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFind_EnvVar(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "custom-ffprobe")
	if err := os.WriteFile(bin, nil, 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("IMGANIMATE_TEST_PROBE", bin)

	got, err := Find("ffprobe", "", "IMGANIMATE_TEST_PROBE")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if got != bin {
		t.Errorf("expected %s, got %s", bin, got)
	}
}

func TestNewError_TruncatesStderr(t *testing.T) {
	long := strings.Repeat("x", stderrLimit*2)
	e := NewError("/usr/bin/ffmpeg", []string{"-i", "in.mp4"}, long, errors.New("exit status 1"))

	if len(e.Stderr) != stderrLimit+3 {
		t.Errorf("expected truncated stderr, got %d bytes", len(e.Stderr))
	}
	if !strings.HasPrefix(e.Error(), "ffmpeg: exit status 1") {
		t.Errorf("unexpected message %q", e.Error())
	}
}

func TestRun_TypedError(t *testing.T) {
	bin, err := FindFFmpeg("")
	if err != nil {
		t.Skip("ffmpeg not available")
	}

	_, err = Run(context.Background(), bin, "-v", "error", "-i", filepath.Join(t.TempDir(), "missing.mp4"))
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if ferr.Stderr == "" {
		t.Error("expected stderr to be captured")
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(2.5); got != "2.500" {
		t.Errorf("got %s", got)
	}
}

// Package ffmpeg locates the ffmpeg family of executables and runs them with
// typed errors. The encoder, decoder and prober adapters build on it.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNotFound is returned when a binary is neither configured nor on PATH.
	ErrNotFound = errors.New("ffmpeg: binary not found")
)

// stderrLimit bounds the stderr kept in an Error.
const stderrLimit = 4096

// Error is a failed ffmpeg or ffprobe invocation.
type Error struct {
	Binary string
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", filepath.Base(e.Binary), e.Err)
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error, keeping only the tail of stderr.
func NewError(binary string, args []string, stderr string, err error) *Error {
	stderr = strings.TrimSpace(stderr)
	if len(stderr) > stderrLimit {
		stderr = "..." + stderr[len(stderr)-stderrLimit:]
	}
	return &Error{Binary: binary, Args: args, Stderr: stderr, Err: err}
}

// FindFFmpeg resolves the ffmpeg executable.
// Priority: 1) explicit, 2) FFMPEG_PATH env, 3) PATH, 4) common locations.
func FindFFmpeg(explicit string) (string, error) {
	return Find("ffmpeg", explicit, "FFMPEG_PATH")
}

// FindFFprobe resolves the ffprobe executable the same way, using FFPROBE_PATH.
func FindFFprobe(explicit string) (string, error) {
	return Find("ffprobe", explicit, "FFPROBE_PATH")
}

// Find resolves the executable name. An explicit value that names an existing
// file is returned as an absolute path so that relative paths are not
// searched on PATH by exec.
func Find(name, explicit, envVar string) (string, error) {
	if explicit != "" {
		return resolve(explicit)
	}

	if envVar != "" {
		if envPath := os.Getenv(envVar); envPath != "" {
			return resolve(envPath)
		}
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName += ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	for _, dir := range commonDirs() {
		p := filepath.Join(dir, execName)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func resolve(path string) (string, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Abs(path)
	}
	if !strings.ContainsRune(path, os.PathSeparator) {
		if p, err := exec.LookPath(path); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

func commonDirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
		}
	case "darwin":
		return []string{"/opt/homebrew/bin", "/usr/local/bin", "/usr/bin"}
	default:
		return []string{"/usr/bin", "/usr/local/bin", "/snap/bin"}
	}
}

// Run executes binary with args and returns its stdout.
func Run(ctx context.Context, binary string, args ...string) ([]byte, error) {
	// #nosec G204 - binary is resolved from configuration, not user media
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s cancelled: %w", filepath.Base(binary), ctx.Err())
		}
		return nil, NewError(binary, args, stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// Seconds formats a time offset for -ss and -t.
func Seconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

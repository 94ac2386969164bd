// Package filesink writes intermediate images of a run to a debug directory.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/imganimate/pkg/ports"
)

// Sink saves debug output to files under baseDir.
//
//	<baseDir>/run.json
//	<baseDir>/source.png
//	<baseDir>/frames/driving/frame-0000.png
//	<baseDir>/frames/predicted/frame-0000.png
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new Sink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveRunJSON saves the resolved run parameters.
func (s *Sink) SaveRunJSON(data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "run.json"), data)
}

// SaveSource saves the resized source image.
func (s *Sink) SaveSource(img image.Image) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.savePNG(filepath.Join(s.baseDir, "source.png"), img)
}

// SaveDrivingFrame saves a driving frame after the geometry transform.
func (s *Sink) SaveDrivingFrame(index int, img image.Image) error {
	return s.saveFrame("driving", index, img)
}

// SavePrediction saves a frame generated by the model.
func (s *Sink) SavePrediction(index int, img image.Image) error {
	return s.saveFrame("predicted", index, img)
}

func (s *Sink) saveFrame(kind string, index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "frames", kind)
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	return s.savePNG(filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index)), img)
}

func (s *Sink) savePNG(path string, img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return s.fs.WriteFile(path, data)
}

var _ ports.DebugSink = (*Sink)(nil)

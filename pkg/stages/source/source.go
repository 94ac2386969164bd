// Package source implements the still image stage: decode, resize to the
// model size and normalize.
package source

import (
	"context"
	"path/filepath"

	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/geometry"
	"github.com/user/imganimate/pkg/pipeline"
	"github.com/user/imganimate/pkg/ports"
)

// Stage loads the source image.
type Stage struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new source stage.
func NewStage(fs ports.FileSystem, renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		fs:       fs,
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("source"),
	}
}

// Execute decodes input.Path and brings it to TargetSize x TargetSize.
func (s *Stage) Execute(ctx context.Context, input pipeline.SourceInput) (pipeline.SourceResult, error) {
	result := pipeline.SourceResult{Name: filepath.Base(input.Path)}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	data, err := s.fs.ReadFile(input.Path)
	if err != nil {
		return result, errkind.Wrap(errkind.ErrMediaRead, pipeline.StageSource, input.Path, err)
	}
	img, err := s.renderer.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		return result, errkind.Wrap(errkind.ErrMediaRead, pipeline.StageSource, input.Path, err)
	}

	b := img.Bounds()
	result.Width, result.Height = b.Dx(), b.Dy()

	plan, err := geometry.NewPlan(result.Width, result.Height, input.TargetSize, input.Strategy)
	if err != nil {
		return result, errkind.Wrap(errkind.ErrConfiguration, pipeline.StageSource, input.Path, err)
	}
	result.Plan = plan

	for _, step := range plan.Log() {
		s.logger.Debug("%s", step)
	}

	result.Image = plan.Apply(img)
	result.Frame = ports.NewFrame(result.Image)

	if s.sink.Enabled() {
		if err := s.sink.SaveSource(result.Image); err != nil {
			s.logger.Warn("Failed to save debug image: %v", err)
		}
	}

	return result, nil
}

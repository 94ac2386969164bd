// Package driving implements the driving video stage: probe, trim to the
// requested window, resize every frame and normalize.
package driving

import (
	"context"
	"errors"
	"image"
	"io"
	"path/filepath"

	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/geometry"
	"github.com/user/imganimate/pkg/pipeline"
	"github.com/user/imganimate/pkg/ports"
	"github.com/user/imganimate/pkg/timeremap"
)

// ErrNoFrames is returned when the window decodes to zero frames.
var ErrNoFrames = errors.New("driving video has no frames in the selected window")

// Stage loads the driving video.
type Stage struct {
	prober  ports.MediaProber
	decoder ports.VideoDecoder
	sink    ports.DebugSink
	logger  ports.Logger
}

// NewStage creates a new driving stage.
func NewStage(prober ports.MediaProber, decoder ports.VideoDecoder, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		prober:  prober,
		decoder: decoder,
		sink:    sink,
		logger:  logger.WithComponent("driving"),
	}
}

// Execute probes input.Path, resolves the window and reads every frame in it.
func (s *Stage) Execute(ctx context.Context, input pipeline.DrivingInput) (pipeline.DrivingResult, error) {
	result := pipeline.DrivingResult{Name: filepath.Base(input.Path)}

	if err := input.Window.Validate(); err != nil {
		return result, errkind.Wrap(errkind.ErrConfiguration, pipeline.StageDriving, input.Path, err)
	}

	desc, err := s.prober.Probe(ctx, input.Path)
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if err != nil {
		return result, errkind.Wrap(errkind.ErrMediaRead, pipeline.StageDriving, input.Path, err)
	}
	if desc.FPS <= 0 || desc.Width <= 0 || desc.Height <= 0 || desc.Duration <= 0 {
		return result, &errkind.Error{
			Kind:  errkind.ErrMediaRead,
			Stage: pipeline.StageDriving,
			Input: input.Path,
			Err:   errors.New("missing frame size, frame rate or duration"),
		}
	}
	result.Descriptor = desc

	window, err := timeremap.Resolve(input.Window, desc.Duration)
	if err != nil {
		return result, errkind.Wrap(errkind.ErrConfiguration, pipeline.StageDriving, input.Path, err)
	}
	result.Window = window
	if window.StartReset {
		s.logger.Warn("Start %.2fs is past the end of the video, using the whole video", input.Window.Start)
	}
	s.logger.Debug("Window %s of %.2fs", window, desc.Duration)

	plan, err := geometry.NewPlan(desc.Width, desc.Height, input.TargetSize, input.Strategy)
	if err != nil {
		return result, errkind.Wrap(errkind.ErrConfiguration, pipeline.StageDriving, input.Path, err)
	}
	result.Plan = plan
	for _, step := range plan.Log() {
		s.logger.Debug("%s", step)
	}

	result.Frames = &transformed{
		decoder: s.decoder,
		path:    input.Path,
		plan:    plan,
		opts: ports.DecodeOptions{
			Start:    window.Start,
			Duration: window.Length(),
			Width:    desc.Width,
			Height:   desc.Height,
		},
	}

	frames, err := s.readAll(ctx, result.Frames)
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if err != nil {
		return result, errkind.Wrap(errkind.ErrMediaRead, pipeline.StageDriving, input.Path, err)
	}
	result.Normalized = frames
	s.logger.Debug("Read %d driving frames", len(frames))

	return result, nil
}

func (s *Stage) readAll(ctx context.Context, src pipeline.FrameSource) ([]ports.Frame, error) {
	reader, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var frames []ports.Frame
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(frames) == 0 && s.sink.Enabled() {
			if err := s.sink.SaveDrivingFrame(0, img); err != nil {
				s.logger.Warn("Failed to save debug image: %v", err)
			}
		}
		frames = append(frames, ports.NewFrame(img))
	}

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return frames, nil
}

// transformed re-decodes the window on every Open and applies plan to each
// frame as it is read.
type transformed struct {
	decoder ports.VideoDecoder
	path    string
	opts    ports.DecodeOptions
	plan    geometry.Plan
}

func (t *transformed) Open(ctx context.Context) (ports.FrameReader, error) {
	r, err := t.decoder.Open(ctx, t.path, t.opts)
	if err != nil {
		return nil, err
	}
	return &planReader{FrameReader: r, plan: t.plan}, nil
}

type planReader struct {
	ports.FrameReader
	plan geometry.Plan
}

func (r *planReader) Next() (image.Image, error) {
	img, err := r.FrameReader.Next()
	if err != nil {
		return nil, err
	}
	return r.plan.Apply(img), nil
}

// Package stack implements the side-by-side output: the generated video on
// the left, a black margin, and the resized driving video on the right.
package stack

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/pipeline"
	"github.com/user/imganimate/pkg/ports"
	"github.com/user/imganimate/pkg/stages/encode"
)

// DefaultMargin is the gap between the two videos in pixels.
const DefaultMargin = 10

// ErrNoDrivingFrames is returned when the driving source yields nothing.
var ErrNoDrivingFrames = errors.New("driving video has no frames")

// Result describes the written side-by-side file.
type Result = pipeline.EncodeResult

// Stage composes and encodes the side-by-side video.
type Stage struct {
	encoder   ports.VideoEncoder
	renderer  ports.Renderer
	fs        ports.FileSystem
	inspector ports.ContainerInspector
	progress  ports.Progress
	logger    ports.Logger
}

// NewStage creates a new stack stage. The encoder must not be shared with
// the primary encode stage.
func NewStage(encoder ports.VideoEncoder, renderer ports.Renderer, fs ports.FileSystem, inspector ports.ContainerInspector, progress ports.Progress, logger ports.Logger) *Stage {
	return &Stage{
		encoder:   encoder,
		renderer:  renderer,
		fs:        fs,
		inspector: inspector,
		progress:  progress,
		logger:    logger.WithComponent("stack"),
	}
}

// Execute writes input.OutputPath. Every failure is an ErrEncode scoped to
// the stack stage.
func (s *Stage) Execute(ctx context.Context, input pipeline.StackInput) (Result, error) {
	result := Result{OutputPath: input.OutputPath}

	fail := func(err error) (Result, error) {
		return result, errkind.Wrap(errkind.ErrEncode, pipeline.StageStack, input.OutputPath, err)
	}

	if len(input.Predictions) == 0 {
		return fail(encode.ErrNoPredictions)
	}
	total := input.Timeline.FrameCount()
	if total == 0 {
		return fail(encode.ErrEmptyTimeline)
	}

	reader, err := input.Driving.Open(ctx)
	if err != nil {
		return fail(fmt.Errorf("open driving video: %w", err))
	}
	defer reader.Close()

	left := pipeline.NewPredictionImages(input.Predictions, input.Timeline.Duration)
	right := &holdLast{reader: reader}

	side := input.Predictions[0].Width
	height := input.Predictions[0].Height
	result.Width = side*2 + input.Margin
	result.Height = height

	data, err := encode.Run(ctx, s.encoder, s.progress, encode.Job{
		Width:    result.Width,
		Height:   result.Height,
		Timeline: input.Timeline,
		Options:  encode.Options(input.Profile, input.Binary, input.Audio),
		Label:    "Stacking",
		Frame: func(k int, t float64) (image.Image, error) {
			drv, err := right.next()
			if err != nil {
				return nil, err
			}
			canvas := s.renderer.CreateCanvas(result.Width, result.Height, color.Black)
			canvas.DrawImage(left.At(t), 0, 0)
			canvas.DrawImage(drv, side+input.Margin, 0)
			return canvas.ToImage(), nil
		},
	})
	if err != nil {
		return fail(err)
	}

	if err := s.fs.WriteFile(input.OutputPath, data); err != nil {
		return fail(fmt.Errorf("write output: %w", err))
	}

	result.FrameCount = total
	result.FileSize = int64(len(data))
	result.VideoCodec = encode.Verify(s.inspector, s.logger, data, input.Profile.VideoEncoder)
	s.logger.Debug("Wrote %d stacked frames (%dx%d) to %s", total, result.Width, result.Height, input.OutputPath)

	return result, nil
}

// holdLast reads one driving frame per output frame and repeats the last
// frame once the reader is exhausted.
type holdLast struct {
	reader ports.FrameReader
	last   image.Image
	done   bool
}

func (h *holdLast) next() (image.Image, error) {
	if h.done {
		return h.last, nil
	}
	img, err := h.reader.Next()
	if errors.Is(err, io.EOF) {
		h.done = true
		if h.last == nil {
			return nil, ErrNoDrivingFrames
		}
		return h.last, nil
	}
	if err != nil {
		return nil, err
	}
	h.last = img
	return img, nil
}

// Package encode implements the primary output stage: retime the prediction
// buffer onto the output timeline and encode it with the driving audio.
package encode

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/pipeline"
	"github.com/user/imganimate/pkg/ports"
)

var (
	// ErrNoPredictions is returned for an empty prediction buffer.
	ErrNoPredictions = errors.New("no frames to encode")
	// ErrEmptyTimeline is returned when duration*fps rounds down to zero frames.
	ErrEmptyTimeline = errors.New("output timeline has no frames")
)

// Stage encodes the prediction buffer into a video file.
type Stage struct {
	encoder   ports.VideoEncoder
	fs        ports.FileSystem
	inspector ports.ContainerInspector
	progress  ports.Progress
	logger    ports.Logger
}

// NewStage creates a new encode stage. inspector may be nil to skip the
// codec check of the written file.
func NewStage(encoder ports.VideoEncoder, fs ports.FileSystem, inspector ports.ContainerInspector, progress ports.Progress, logger ports.Logger) *Stage {
	return &Stage{
		encoder:   encoder,
		fs:        fs,
		inspector: inspector,
		progress:  progress,
		logger:    logger.WithComponent("encode"),
	}
}

// Execute writes input.OutputPath.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{OutputPath: input.OutputPath}

	fail := func(err error) (pipeline.EncodeResult, error) {
		return result, errkind.Wrap(errkind.ErrEncode, pipeline.StageEncode, input.OutputPath, err)
	}

	if len(input.Predictions) == 0 {
		return fail(ErrNoPredictions)
	}
	total := input.Timeline.FrameCount()
	if total == 0 {
		return fail(ErrEmptyTimeline)
	}

	images := pipeline.NewPredictionImages(input.Predictions, input.Timeline.Duration)
	result.Width, result.Height = input.Predictions[0].Width, input.Predictions[0].Height

	data, err := Run(ctx, s.encoder, s.progress, Job{
		Width:    result.Width,
		Height:   result.Height,
		Timeline: input.Timeline,
		Options:  Options(input.Profile, input.Binary, input.Audio),
		Label:    "Encoding",
		Frame: func(k int, t float64) (image.Image, error) {
			return images.At(t), nil
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
	result.VideoCodec = Verify(s.inspector, s.logger, data, input.Profile.VideoEncoder)
	s.logger.Debug("Wrote %d frames (%d bytes) to %s", total, len(data), input.OutputPath)

	return result, nil
}

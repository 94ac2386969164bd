// Package animate implements the inference stage.
package animate

import (
	"context"
	"errors"

	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/pipeline"
	"github.com/user/imganimate/pkg/ports"
)

// ErrEmptyPrediction is returned when the model returns no frames.
var ErrEmptyPrediction = errors.New("model returned no frames")

// Stage loads the model and runs it once.
type Stage struct {
	animator ports.Animator
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new animate stage.
func NewStage(animator ports.Animator, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		animator: animator,
		sink:     sink,
		logger:   logger.WithComponent("animate"),
	}
}

// Execute returns the prediction buffer for input. The model is closed
// before Execute returns.
func (s *Stage) Execute(ctx context.Context, input pipeline.AnimateInput) (result pipeline.AnimateResult, err error) {
	model, err := s.animator.Load(ctx, input.Model)
	if err != nil {
		return result, errkind.Wrap(errkind.ErrInference, pipeline.StageAnimate, input.Model.CheckpointPath, err)
	}
	defer func() {
		if cerr := model.Close(); cerr != nil && err == nil {
			err = errkind.Wrap(errkind.ErrInference, pipeline.StageAnimate, input.Model.CheckpointPath, cerr)
		}
	}()

	s.logger.Debug("Animating %d driving frames (adapt_scale=%t, relative=%t)",
		len(input.Driving), input.Options.AdaptScale, input.Options.Relative)

	predictions, err := model.Animate(ctx, input.Source, input.Driving, input.Options)
	if err != nil {
		return result, errkind.Wrap(errkind.ErrInference, pipeline.StageAnimate, input.Model.Mode, err)
	}
	if len(predictions) == 0 {
		return result, errkind.Wrap(errkind.ErrInference, pipeline.StageAnimate, input.Model.Mode, ErrEmptyPrediction)
	}
	result.Predictions = predictions

	if s.sink.Enabled() {
		s.saveDebug(predictions)
	}

	return result, nil
}

// saveDebug stores the first, middle and last prediction.
func (s *Stage) saveDebug(predictions []ports.Frame) {
	last := len(predictions) - 1
	for _, i := range []int{0, last / 2, last} {
		if err := s.sink.SavePrediction(i, predictions[i].ToRGBA()); err != nil {
			s.logger.Warn("Failed to save debug image: %v", err)
			return
		}
	}
}

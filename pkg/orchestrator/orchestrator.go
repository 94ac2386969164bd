// Package orchestrator runs the animation pipeline from input paths to the
// finished output videos.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/imganimate/pkg/codec"
	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/geometry"
	"github.com/user/imganimate/pkg/pipeline"
	"github.com/user/imganimate/pkg/ports"
	"github.com/user/imganimate/pkg/timeremap"
)

// ErrAlternateBinaryMissing is returned when the codec needs the AAC-capable
// ffmpeg build and it is not on disk.
var ErrAlternateBinaryMissing = errors.New("alternate ffmpeg binary not found")

// Config contains all configuration for one run.
type Config struct {
	// Input
	SourcePath string
	VideoPath  string
	OutputPath string

	// Model
	Mode       string
	Model      ports.ModelSpec
	AdaptScale bool // Relative motion is used otherwise

	// Geometry
	ImageResize geometry.Strategy
	VideoResize geometry.Strategy
	TargetSize  int

	// Time window
	Window timeremap.Request

	// Encoding
	Codec           string
	FFmpegPath      string // Empty uses the default lookup
	AlternateFFmpeg string // Required by codecs whose audio encoder stock ffmpeg lacks

	// Side by side
	Stack       bool
	StackMargin int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Mode:            "vox",
		ImageResize:     geometry.Stretch,
		VideoResize:     geometry.Stretch,
		TargetSize:      256,
		Codec:           string(codec.ModeH264),
		AlternateFFmpeg: "ffmpeg-fdk-aac",
		StackMargin:     10,
	}
}

// AnimateOptions returns the motion options forwarded to the model.
func (c Config) AnimateOptions() ports.AnimateOptions {
	return ports.AnimateOptions{AdaptScale: c.AdaptScale, Relative: !c.AdaptScale}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	sourceStage  pipeline.Stage[pipeline.SourceInput, pipeline.SourceResult]
	drivingStage pipeline.Stage[pipeline.DrivingInput, pipeline.DrivingResult]
	animateStage pipeline.Stage[pipeline.AnimateInput, pipeline.AnimateResult]
	encodeStage  pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	stackStage   pipeline.Stage[pipeline.StackInput, pipeline.EncodeResult]
	fs           ports.FileSystem
	sink         ports.DebugSink
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	sourceStage pipeline.Stage[pipeline.SourceInput, pipeline.SourceResult],
	drivingStage pipeline.Stage[pipeline.DrivingInput, pipeline.DrivingResult],
	animateStage pipeline.Stage[pipeline.AnimateInput, pipeline.AnimateResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	stackStage pipeline.Stage[pipeline.StackInput, pipeline.EncodeResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		sourceStage:  sourceStage,
		drivingStage: drivingStage,
		animateStage: animateStage,
		encodeStage:  encodeStage,
		stackStage:   stackStage,
		fs:           fs,
		sink:         sink,
		logger:       logger,
	}
}

// Run executes the complete pipeline.
//
// When the side-by-side video fails after the primary output was written,
// Run returns the populated result together with an ErrEncode error whose
// stage is "stack"; result.PrimaryWritten tells the two cases apart.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	started := time.Now()
	result := RunResult{Mode: config.Mode, OutputPath: config.OutputPath}

	// 1. Codec policy, checked before any media is touched
	profile, binary, err := o.resolveCodec(config)
	if err != nil {
		o.logger.Error("Invalid codec configuration: %v", err)
		return result, err
	}
	result.Profile = profile

	o.logger.Info("Generation Mode: %s", capitalize(config.Mode))
	o.logger.Info("Video Codec: %s", profile.VideoDisplay())
	o.logger.Info("Audio Codec: %s", profile.AudioDisplay())
	o.logger.Info("Scale: %s", scaleName(config.AdaptScale))

	if err := o.fs.MkdirAll(filepath.Dir(config.OutputPath)); err != nil {
		return result, errkind.Wrap(errkind.ErrEncode, pipeline.StageEncode, config.OutputPath, fmt.Errorf("create output directory: %w", err))
	}

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(config, "", "  "); err == nil {
			o.sink.SaveRunJSON(data)
		}
	}

	// 2. Driving video: probe, window, lazy frame transform
	o.logger.Info("Loading User Input")
	driving, err := o.drivingStage.Execute(ctx, pipeline.DrivingInput{
		Path:       config.VideoPath,
		Strategy:   config.VideoResize,
		TargetSize: config.TargetSize,
		Window:     config.Window,
	})
	if err != nil {
		o.logger.Error("Failed to load driving video: %v", err)
		return result, classify(err, errkind.ErrMediaRead, pipeline.StageDriving, config.VideoPath)
	}
	result.DrivingName = driving.Name
	result.Driving = driving.Descriptor
	result.Window = driving.Window
	result.DrivingFrames = len(driving.Normalized)

	o.logger.Info("Video Info:")
	o.logger.Info("  Name: %s", driving.Name)
	o.logger.Info("  Dimensions: %dx%d", driving.Descriptor.Width, driving.Descriptor.Height)
	o.logger.Info("  Start: %.2f", driving.Window.Start)
	o.logger.Info("  Duration: %.2f", driving.Window.Length())
	o.logger.Info("  End: %.2f", driving.Window.Stop)
	o.logger.Info("  FPS: %.2f", driving.Descriptor.FPS)

	// 3-4. Source image
	source, err := o.sourceStage.Execute(ctx, pipeline.SourceInput{
		Path:       config.SourcePath,
		Strategy:   config.ImageResize,
		TargetSize: config.TargetSize,
	})
	if err != nil {
		o.logger.Error("Failed to load source image: %v", err)
		return result, classify(err, errkind.ErrMediaRead, pipeline.StageSource, config.SourcePath)
	}
	result.SourceName = source.Name
	result.SourceWidth, result.SourceHeight = source.Width, source.Height

	o.logger.Info("Image Info:")
	o.logger.Info("  Name: %s", source.Name)
	o.logger.Info("  Dimensions: %dx%d", source.Width, source.Height)

	// 4-6. Resizing already happened inside the stages; report it
	o.reportResize("image", source.Plan)
	o.reportResize("video", driving.Plan)

	// 7. Inference
	o.logger.Info("Loading Model")
	o.logger.Info("Generating Video")
	animated, err := o.animateStage.Execute(ctx, pipeline.AnimateInput{
		Model:   config.Model,
		Source:  source.Frame,
		Driving: driving.Normalized,
		Options: config.AnimateOptions(),
	})
	if err != nil {
		o.logger.Error("Failed to generate video: %v", err)
		return result, classify(err, errkind.ErrInference, pipeline.StageAnimate, config.Model.CheckpointPath)
	}
	result.Predictions = len(animated.Predictions)

	// 8-9. Retime and encode the primary output
	audio := driving.Audio(config.VideoPath)
	o.logger.Info("Saving Video...")
	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		Predictions: animated.Predictions,
		Timeline:    driving.Timeline(),
		Profile:     profile,
		Binary:      binary,
		Audio:       audio,
		OutputPath:  config.OutputPath,
	})
	if err != nil {
		o.logger.Error("Failed to save video: %v", err)
		return result, classify(err, errkind.ErrEncode, pipeline.StageEncode, config.OutputPath)
	}
	result.Output = encoded
	result.PrimaryWritten = true
	o.logger.Info("Video saved to %s", config.OutputPath)

	// 10. Optional side-by-side output
	if config.Stack {
		stackedPath := pipeline.StackedPath(config.OutputPath)
		o.logger.Info("Saving Side by Side Video")
		stacked, err := o.stackStage.Execute(ctx, pipeline.StackInput{
			Predictions: animated.Predictions,
			Driving:     driving.Frames,
			Timeline:    driving.Timeline(),
			Margin:      config.StackMargin,
			Profile:     profile,
			Binary:      binary,
			Audio:       audio,
			OutputPath:  stackedPath,
		})
		if err != nil {
			o.logger.Error("Failed to save side by side video: %v", err)
			result.Elapsed = time.Since(started)
			return result, classify(err, errkind.ErrEncode, pipeline.StageStack, stackedPath)
		}
		result.StackedPath = stackedPath
		result.Stacked = &stacked
		o.logger.Info("Stacked Video saved to %s", stackedPath)
	}

	result.Elapsed = time.Since(started)
	return result, nil
}

// resolveCodec picks the profile and the ffmpeg binary that can encode it.
func (o *Orchestrator) resolveCodec(config Config) (codec.Profile, string, error) {
	profile, err := codec.ProfileFor(config.Codec)
	if err != nil {
		return profile, "", errkind.Wrap(errkind.ErrConfiguration, pipeline.StageCodec, config.Codec, err)
	}
	if !profile.RequiresAlternateBinary {
		return profile, config.FFmpegPath, nil
	}

	exists, err := o.fs.Exists(config.AlternateFFmpeg)
	if err != nil || !exists {
		if err == nil {
			err = ErrAlternateBinaryMissing
		}
		return profile, "", &errkind.Error{
			Kind:  errkind.ErrConfiguration,
			Stage: pipeline.StageCodec,
			Input: config.AlternateFFmpeg,
			Err:   fmt.Errorf("%s audio needs %s: %w", profile.AudioDisplay(), config.AlternateFFmpeg, err),
		}
	}
	return profile, config.AlternateFFmpeg, nil
}

func (o *Orchestrator) reportResize(media string, plan geometry.Plan) {
	if plan.Identity {
		o.logger.Info("The %s is already %dx%d, skipping resize", media, plan.Target, plan.Target)
		return
	}
	o.logger.Info("Resizing %s to %dx%d with Mode: %s", media, plan.Target, plan.Target, capitalize(string(plan.Strategy)))
}

// classify makes sure an error leaving Run carries a kind and a stage.
func classify(err, kind error, stage, input string) error {
	if errkind.StageOf(err) != "" || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errkind.Wrap(kind, stage, input, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func scaleName(adapt bool) string {
	if adapt {
		return "Adaptive"
	}
	return "Relative"
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	Mode    string
	Profile codec.Profile

	// Inputs
	SourceName    string
	SourceWidth   int
	SourceHeight  int
	DrivingName   string
	Driving       ports.MediaDescriptor
	Window        timeremap.Window
	DrivingFrames int
	Predictions   int

	// Outputs
	OutputPath     string
	PrimaryWritten bool
	Output         pipeline.EncodeResult
	StackedPath    string // Empty unless the stacked video was written
	Stacked        *pipeline.EncodeResult

	Elapsed time.Duration
}

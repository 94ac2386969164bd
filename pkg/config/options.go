package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/imganimate/pkg/codec"
	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/geometry"
	"github.com/user/imganimate/pkg/orchestrator"
	"github.com/user/imganimate/pkg/timeremap"
)

// Options are the per-run choices made on the command line.
type Options struct {
	SourcePath string `validate:"required"`
	VideoPath  string `validate:"required"`

	Mode       string `validate:"oneof=fashion vox vox-advanced gif"`
	AdaptScale bool
	Stack      bool

	ImageResize string `validate:"oneof=fill stretch crop"`
	VideoResize string `validate:"oneof=fill stretch crop"`

	// Zero means unset. End and Duration are mutually exclusive.
	Start    float64 `validate:"gte=0"`
	End      float64 `validate:"gte=0,excluded_with=Duration"`
	Duration float64 `validate:"gte=0"`

	Codec string `validate:"oneof=h264 mpeg4 mp4"`
}

// DefaultOptions returns the options used when no flag overrides them.
func DefaultOptions() Options {
	return Options{
		Mode:        "vox",
		ImageResize: string(geometry.Stretch),
		VideoResize: string(geometry.Stretch),
		Codec:       string(codec.ModeH264),
	}
}

// Validate checks the options without touching the filesystem.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return validationError(err)
	}
	return nil
}

// Window returns the requested time window.
func (o Options) Window() timeremap.Request {
	return timeremap.Request{Start: o.Start, End: o.End, Duration: o.Duration}
}

// OutputPath returns where the primary video of a run is written:
// <dir>/<video stem>/<image stem>_<image resize>_<video resize>[_adaptive_scaling]_<codec>.mp4
func (o Options) OutputPath(dir string) string {
	name := fmt.Sprintf("%s_%s_%s", stem(o.SourcePath), o.ImageResize, o.VideoResize)
	if o.AdaptScale {
		name += "_adaptive_scaling"
	}
	name += "_" + o.Codec + ".mp4"
	return filepath.Join(dir, stem(o.VideoPath), name)
}

// stem strips the directory and the last extension only.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OptionsBuilder applies command-line overrides onto DefaultOptions.
type OptionsBuilder struct {
	opts Options
}

// NewOptionsBuilder creates a builder seeded with DefaultOptions.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{opts: DefaultOptions()}
}

// Build returns the options. Call Validate on the result.
func (b *OptionsBuilder) Build() Options {
	return b.opts
}

// WithSource sets the still image path.
func (b *OptionsBuilder) WithSource(path string) *OptionsBuilder {
	b.opts.SourcePath = path
	return b
}

// WithVideo sets the driving video path.
func (b *OptionsBuilder) WithVideo(path string) *OptionsBuilder {
	b.opts.VideoPath = path
	return b
}

// WithMode sets the generation mode. Empty keeps the current value.
func (b *OptionsBuilder) WithMode(mode string) *OptionsBuilder {
	if mode != "" {
		b.opts.Mode = strings.ToLower(mode)
	}
	return b
}

// WithAdaptScale switches from relative motion to adaptive scaling.
func (b *OptionsBuilder) WithAdaptScale(adapt bool) *OptionsBuilder {
	b.opts.AdaptScale = adapt
	return b
}

// WithStack requests the side-by-side video.
func (b *OptionsBuilder) WithStack(stack bool) *OptionsBuilder {
	b.opts.Stack = stack
	return b
}

// WithImageResize sets the resize strategy of the source image.
func (b *OptionsBuilder) WithImageResize(strategy string) *OptionsBuilder {
	if strategy != "" {
		b.opts.ImageResize = strings.ToLower(strategy)
	}
	return b
}

// WithVideoResize sets the resize strategy of the driving video.
func (b *OptionsBuilder) WithVideoResize(strategy string) *OptionsBuilder {
	if strategy != "" {
		b.opts.VideoResize = strings.ToLower(strategy)
	}
	return b
}

// WithWindow sets the requested time window in seconds.
func (b *OptionsBuilder) WithWindow(start, end, duration float64) *OptionsBuilder {
	b.opts.Start = start
	b.opts.End = end
	b.opts.Duration = duration
	return b
}

// WithCodec sets the codec mode.
func (b *OptionsBuilder) WithCodec(mode string) *OptionsBuilder {
	if mode != "" {
		b.opts.Codec = strings.ToLower(mode)
	}
	return b
}

// ToOrchestratorConfig combines c and validated opts into an orchestrator.Config.
func (c Config) ToOrchestratorConfig(opts Options) (orchestrator.Config, error) {
	if err := c.Validate(); err != nil {
		return orchestrator.Config{}, err
	}
	if err := opts.Validate(); err != nil {
		return orchestrator.Config{}, err
	}

	model, err := c.ModelFor(opts.Mode)
	if err != nil {
		return orchestrator.Config{}, err
	}
	imageResize, err := geometry.ParseStrategy(opts.ImageResize)
	if err != nil {
		return orchestrator.Config{}, err
	}
	videoResize, err := geometry.ParseStrategy(opts.VideoResize)
	if err != nil {
		return orchestrator.Config{}, err
	}

	return orchestrator.Config{
		SourcePath:      opts.SourcePath,
		VideoPath:       opts.VideoPath,
		OutputPath:      opts.OutputPath(c.OutputDir),
		Mode:            opts.Mode,
		Model:           model,
		AdaptScale:      opts.AdaptScale,
		ImageResize:     imageResize,
		VideoResize:     videoResize,
		TargetSize:      c.TargetSize,
		Window:          opts.Window(),
		Codec:           opts.Codec,
		FFmpegPath:      c.FFmpegPath,
		AlternateFFmpeg: c.AlternateFFmpeg,
		Stack:           opts.Stack,
		StackMargin:     c.StackMargin,
	}, nil
}

// validationError turns validator output into a single ErrConfiguration
// naming every failing field.
func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return errkind.Wrap(errkind.ErrConfiguration, "", "", err)
	}

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", f.Namespace()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", f.Namespace(), f.Param(), fmt.Sprint(f.Value())))
		case "even":
			msgs = append(msgs, fmt.Sprintf("%s must be even, got %v", f.Namespace(), f.Value()))
		case "excluded_with":
			msgs = append(msgs, fmt.Sprintf("%s and %s are mutually exclusive", f.Field(), f.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", f.Namespace(), f.Tag(), f.Param(), f.Value()))
		}
	}
	return errkind.Configf("%s", strings.Join(msgs, "; "))
}

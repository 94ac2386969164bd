package summarizer

import (
	"time"

	"github.com/user/imganimate/pkg/orchestrator"
	"github.com/user/imganimate/pkg/pipeline"
)

// Summary contains the data collected during one run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	Source  SourceInfo
	Driving DrivingInfo

	Settings Settings

	// Outputs in write order; the stacked video, when any, comes second
	Outputs []VideoInfo

	ElapsedMs int64

	// Error is the failure that ended the run, empty on success
	Error string
}

// SourceInfo describes the still image.
type SourceInfo struct {
	Path   string
	Width  int
	Height int
}

// DrivingInfo describes the driving video and the part of it that was used.
type DrivingInfo struct {
	Path     string
	Width    int
	Height   int
	FPS      float64
	Duration float64 // Whole file, seconds
	Start    float64 // Effective window
	Stop     float64
	Frames   int // Driving frames handed to the model
}

// Settings contains the run options.
type Settings struct {
	Mode        string
	ImageResize string
	VideoResize string
	AdaptScale  bool
	VideoCodec  string // Display names
	AudioCodec  string
	TargetSize  int
}

// VideoInfo describes one written video.
type VideoInfo struct {
	Label      string
	Path       string
	FrameCount int
	Width      int
	Height     int
	FileSize   int64
	VideoCodec string // As found in the written container
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets the still image information.
func (b *Builder) WithSource(path string, width, height int) *Builder {
	b.summary.Source = SourceInfo{Path: path, Width: width, Height: height}
	return b
}

// WithDriving sets the driving video information.
func (b *Builder) WithDriving(info DrivingInfo) *Builder {
	b.summary.Driving = info
	return b
}

// WithSettings sets the run options.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// AddOutput appends a written video.
func (b *Builder) AddOutput(video VideoInfo) *Builder {
	b.summary.Outputs = append(b.summary.Outputs, video)
	return b
}

// WithElapsed sets the wall time of the run.
func (b *Builder) WithElapsed(d time.Duration) *Builder {
	b.summary.ElapsedMs = d.Milliseconds()
	return b
}

// WithError records the failure that ended the run. A nil err is ignored.
func (b *Builder) WithError(err error) *Builder {
	if err != nil {
		b.summary.Error = err.Error()
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// FromRun builds a Summary from an orchestrator run. runErr may be nil.
func FromRun(config orchestrator.Config, result orchestrator.RunResult, runErr error) *Summary {
	b := NewBuilder().
		WithSource(config.SourcePath, result.SourceWidth, result.SourceHeight).
		WithDriving(DrivingInfo{
			Path:     config.VideoPath,
			Width:    result.Driving.Width,
			Height:   result.Driving.Height,
			FPS:      result.Driving.FPS,
			Duration: result.Driving.Duration,
			Start:    result.Window.Start,
			Stop:     result.Window.Stop,
			Frames:   result.DrivingFrames,
		}).
		WithSettings(Settings{
			Mode:        config.Mode,
			ImageResize: string(config.ImageResize),
			VideoResize: string(config.VideoResize),
			AdaptScale:  config.AdaptScale,
			VideoCodec:  result.Profile.VideoDisplay(),
			AudioCodec:  result.Profile.AudioDisplay(),
			TargetSize:  config.TargetSize,
		}).
		WithElapsed(result.Elapsed).
		WithError(runErr)

	if result.PrimaryWritten {
		b.AddOutput(videoInfo("Animated", result.Output))
	}
	if result.Stacked != nil {
		b.AddOutput(videoInfo("Side by Side", *result.Stacked))
	}
	return b.Build()
}

func videoInfo(label string, r pipeline.EncodeResult) VideoInfo {
	return VideoInfo{
		Label:      label,
		Path:       r.OutputPath,
		FrameCount: r.FrameCount,
		Width:      r.Width,
		Height:     r.Height,
		FileSize:   r.FileSize,
		VideoCodec: r.VideoCodec,
	}
}

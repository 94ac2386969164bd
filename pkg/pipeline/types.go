package pipeline

import (
	"context"
	"image"
	"path/filepath"
	"strings"

	"github.com/user/imganimate/pkg/codec"
	"github.com/user/imganimate/pkg/geometry"
	"github.com/user/imganimate/pkg/ports"
	"github.com/user/imganimate/pkg/retime"
	"github.com/user/imganimate/pkg/timeremap"
)

// Stage names used in classified errors and logs.
const (
	StageCodec   = "codec"
	StageSource  = "source"
	StageDriving = "driving"
	StageAnimate = "animate"
	StageEncode  = "encode"
	StageStack   = "stack"
)

// FrameSource produces a sequence of frames. Every Open starts over from the
// first frame, so the driving video can be read once for inference and again
// for the side-by-side output without holding it in memory.
type FrameSource interface {
	Open(ctx context.Context) (ports.FrameReader, error)
}

// =============================================================================
// Source Stage Types
// =============================================================================

// SourceInput names the still image and how it reaches the model size.
type SourceInput struct {
	Path       string
	Strategy   geometry.Strategy
	TargetSize int
}

// SourceResult is the decoded and resized still image.
type SourceResult struct {
	Name   string // Base name of Path
	Width  int    // Size as decoded
	Height int

	Plan  geometry.Plan
	Image *image.RGBA // TargetSize x TargetSize
	Frame ports.Frame // Image normalized to [0, 1]
}

// =============================================================================
// Driving Stage Types
// =============================================================================

// DrivingInput names the driving video, the time window and the resize strategy.
type DrivingInput struct {
	Path       string
	Strategy   geometry.Strategy
	TargetSize int
	Window     timeremap.Request
}

// DrivingResult describes the trimmed, resized driving video.
type DrivingResult struct {
	Name       string
	Descriptor ports.MediaDescriptor
	Window     timeremap.Window
	Plan       geometry.Plan

	// Frames re-reads the transformed frames of Window.
	Frames FrameSource

	// Normalized holds every transformed frame of Window in [0, 1].
	Normalized []ports.Frame
}

// Timeline returns the output timeline: the window length at the source rate.
func (r DrivingResult) Timeline() retime.Timeline {
	return retime.Timeline{Duration: r.Window.Length(), FPS: r.Descriptor.FPS}
}

// Audio returns the trimmed audio of the window, or nil when the video has
// no audio track.
func (r DrivingResult) Audio(path string) *ports.AudioSource {
	if !r.Descriptor.HasAudio {
		return nil
	}
	return &ports.AudioSource{Path: path, Start: r.Window.Start, Duration: r.Window.Length()}
}

// =============================================================================
// Animate Stage Types
// =============================================================================

// AnimateInput is one inference request.
type AnimateInput struct {
	Model   ports.ModelSpec
	Source  ports.Frame
	Driving []ports.Frame
	Options ports.AnimateOptions
}

// AnimateResult holds the prediction buffer.
type AnimateResult struct {
	Predictions []ports.Frame
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput describes the primary output video.
type EncodeInput struct {
	Predictions []ports.Frame
	Timeline    retime.Timeline
	Profile     codec.Profile
	Binary      string             // ffmpeg binary for this profile
	Audio       *ports.AudioSource // nil for a silent output
	OutputPath  string
}

// EncodeResult describes a written video file.
type EncodeResult struct {
	OutputPath string
	FrameCount int
	Width      int
	Height     int
	FileSize   int64
	VideoCodec string // Codec found in the written container
}

// =============================================================================
// Stack Stage Types
// =============================================================================

// StackInput describes the side-by-side output: predictions on the left,
// the transformed driving video on the right.
type StackInput struct {
	Predictions []ports.Frame
	Driving     FrameSource
	Timeline    retime.Timeline
	Margin      int
	Profile     codec.Profile
	Binary      string
	Audio       *ports.AudioSource
	OutputPath  string
}

// StackedPath returns the side-by-side variant of a primary output path:
// the extension is replaced by "_stacked.mp4".
func StackedPath(primary string) string {
	return strings.TrimSuffix(primary, filepath.Ext(primary)) + "_stacked.mp4"
}

// PredictionImages retimes prediction frames onto an output timeline and
// converts them to RGBA on demand. Consecutive output times often select the
// same frame, so only the latest conversion is kept.
type PredictionImages struct {
	frames   []*predictionFrame
	duration float64
	current  *predictionFrame
}

type predictionFrame struct {
	frame ports.Frame
	img   *image.RGBA
}

// NewPredictionImages wraps frames for an output lasting outputDuration seconds.
func NewPredictionImages(frames []ports.Frame, outputDuration float64) *PredictionImages {
	p := &PredictionImages{
		frames:   make([]*predictionFrame, len(frames)),
		duration: outputDuration,
	}
	for i := range frames {
		p.frames[i] = &predictionFrame{frame: frames[i]}
	}
	return p
}

// At returns the frame shown at output time t, or nil when there are no frames.
func (p *PredictionImages) At(t float64) *image.RGBA {
	f, ok := retime.FrameAt(p.frames, p.duration, t)
	if !ok {
		return nil
	}
	if f != p.current {
		if p.current != nil {
			p.current.img = nil
		}
		f.img = f.frame.ToRGBA()
		p.current = f
	}
	return f.img
}

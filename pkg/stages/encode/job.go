package encode

import (
	"context"
	"fmt"
	"image"

	"github.com/user/imganimate/pkg/codec"
	"github.com/user/imganimate/pkg/ports"
	"github.com/user/imganimate/pkg/retime"
)

// Job is one encoder run over an output timeline.
type Job struct {
	Width    int
	Height   int
	Timeline retime.Timeline
	Options  ports.EncoderOptions
	Label    string // Progress bar description

	// Frame returns the image shown at output frame k, presented at t seconds.
	Frame func(k int, t float64) (image.Image, error)
}

// Options builds encoder options for a codec profile.
func Options(profile codec.Profile, binary string, audio *ports.AudioSource) ports.EncoderOptions {
	return ports.EncoderOptions{
		VideoCodec: profile.VideoEncoder,
		AudioCodec: profile.AudioEncoder,
		Binary:     binary,
		Audio:      audio,
	}
}

// Run feeds every frame of job to encoder and returns the finished file.
// The encoder is closed on every path, so no subprocess or temporary file
// outlives a failed run.
func Run(ctx context.Context, encoder ports.VideoEncoder, progress ports.Progress, job Job) ([]byte, error) {
	total := job.Timeline.FrameCount()

	defer encoder.Close()
	if err := encoder.Begin(ctx, job.Width, job.Height, job.Timeline.FPS, job.Options); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	progress.Start(total, job.Label)
	defer progress.Finish()

	for k := 0; k < total; k++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := job.Frame(k, job.Timeline.TimeAt(k))
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", k, err)
		}
		ts := job.Timeline.TimestampMs(k)
		if err := encoder.EncodeFrame(img, ts); err != nil {
			return nil, fmt.Errorf("encode frame at %dms: %w", ts, err)
		}
		progress.Add(1)
	}

	data, err := encoder.End()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	return data, nil
}

// Verify reports the codec found in data and warns when it is not the one
// the encoder should have produced. It returns "" when inspector is nil.
func Verify(inspector ports.ContainerInspector, logger ports.Logger, data []byte, encoder string) string {
	if inspector == nil {
		return ""
	}
	got, err := inspector.VideoCodec(data)
	if err != nil {
		logger.Warn("Could not inspect output: %v", err)
		return ""
	}
	if want := inspector.ExpectedCodec(encoder); got != want {
		logger.Warn("Output codec is %s, expected %s for %s", got, want, encoder)
	}
	return got
}

package ports

import (
	"context"
	"image"
)

// VideoEncoder abstracts video encoding operations.
type VideoEncoder interface {
	// Begin initializes the encoder with the specified dimensions and frame rate.
	Begin(ctx context.Context, width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame encodes a single frame at the specified timestamp.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finalizes encoding and returns the video data.
	End() ([]byte, error)

	// Close aborts an unfinished encode and releases its resources.
	// It is safe to call after End.
	Close() error
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	VideoCodec string // ffmpeg video encoder, e.g. libx264
	AudioCodec string // ffmpeg audio encoder, e.g. libfdk_aac

	// Binary overrides the encoder executable. Empty uses the default lookup.
	Binary string

	// Audio is muxed into the output when set.
	Audio *AudioSource
}

// AudioSource is the audio track copied from an input file, trimmed to
// [Start, Start+Duration).
type AudioSource struct {
	Path     string
	Start    float64
	Duration float64
}

// ContainerInspector checks an encoded file against the encoder that wrote it.
type ContainerInspector interface {
	// VideoCodec returns the codec of the first video track in data.
	VideoCodec(data []byte) (string, error)

	// ExpectedCodec returns the codec an ffmpeg encoder id produces.
	ExpectedCodec(encoder string) string
}

package ports

import (
	"context"
	"image"
)

// MediaDescriptor describes a probed media file. For still images only
// Width and Height are meaningful.
type MediaDescriptor struct {
	Width    int
	Height   int
	Duration float64 // Seconds
	FPS      float64
	HasAudio bool
	Codec    string // Video codec name as reported by the prober
}

// MediaProber reads a MediaDescriptor from a video file.
type MediaProber interface {
	Probe(ctx context.Context, path string) (MediaDescriptor, error)
}

// DecodeOptions selects the part of a video to decode.
type DecodeOptions struct {
	Start    float64 // Seconds from the beginning of the file
	Duration float64 // Seconds; 0 decodes to the end
	Width    int     // Frame width of the stream
	Height   int     // Frame height of the stream
}

// FrameReader yields decoded frames in presentation order.
type FrameReader interface {
	// Next returns the next frame, or io.EOF after the last one.
	Next() (image.Image, error)

	// Close releases the underlying decoder.
	Close() error
}

// VideoDecoder abstracts video decoding operations.
type VideoDecoder interface {
	// Open starts decoding path within the window described by opts.
	Open(ctx context.Context, path string, opts DecodeOptions) (FrameReader, error)
}

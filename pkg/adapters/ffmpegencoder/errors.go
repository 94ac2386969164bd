package ffmpegencoder

import "errors"

var (
	// ErrNotInitialized is returned when encoder methods are called before Begin.
	ErrNotInitialized = errors.New("ffmpegencoder: encoder not initialized")

	// ErrNoFrames is returned by End when no frame was encoded.
	ErrNoFrames = errors.New("ffmpegencoder: no frames to encode")

	// ErrInvalidSize is returned for non-positive or odd frame dimensions.
	ErrInvalidSize = errors.New("ffmpegencoder: frame size must be positive and even")

	// ErrMissingCodec is returned when EncoderOptions lacks a video or audio codec.
	ErrMissingCodec = errors.New("ffmpegencoder: video and audio codecs are required")
)

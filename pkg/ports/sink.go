package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRunJSON saves the resolved run parameters as JSON.
	SaveRunJSON(data []byte) error

	// SaveSource saves the source image after resizing.
	SaveSource(img image.Image) error

	// SaveDrivingFrame saves a driving frame after resizing.
	SaveDrivingFrame(index int, img image.Image) error

	// SavePrediction saves a frame generated by the model.
	SavePrediction(index int, img image.Image) error
}

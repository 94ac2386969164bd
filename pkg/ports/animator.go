package ports

import "context"

// ModelSpec names the configuration and checkpoint files of one
// generation mode. Both paths are opaque to the pipeline.
type ModelSpec struct {
	Mode           string
	ConfigPath     string
	CheckpointPath string
}

// AnimateOptions are forwarded verbatim to the model.
type AnimateOptions struct {
	AdaptScale bool
	Relative   bool
}

// Animator loads animation models.
type Animator interface {
	// Load prepares the model described by spec.
	Load(ctx context.Context, spec ModelSpec) (Model, error)
}

// Model turns a still image and a sequence of driving frames into a
// sequence of generated frames.
type Model interface {
	// Animate runs inference once. It is the dominant cost of a run.
	Animate(ctx context.Context, source Frame, driving []Frame, opts AnimateOptions) ([]Frame, error)

	// Close releases the model.
	Close() error
}

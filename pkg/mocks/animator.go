package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/user/imganimate/pkg/ports"
)

// Animator is a testify mock of ports.Animator.
type Animator struct {
	mock.Mock
}

func (m *Animator) Load(ctx context.Context, spec ports.ModelSpec) (ports.Model, error) {
	args := m.Called(ctx, spec)
	model, _ := args.Get(0).(ports.Model)
	return model, args.Error(1)
}

var _ ports.Animator = (*Animator)(nil)

// Model is a testify mock of ports.Model.
type Model struct {
	mock.Mock
}

func (m *Model) Animate(ctx context.Context, source ports.Frame, driving []ports.Frame, opts ports.AnimateOptions) ([]ports.Frame, error) {
	args := m.Called(ctx, source, driving, opts)
	frames, _ := args.Get(0).([]ports.Frame)
	return frames, args.Error(1)
}

func (m *Model) Close() error {
	return m.Called().Error(0)
}

var _ ports.Model = (*Model)(nil)

// SolidFrames returns n frames of the given size with every channel set to v.
func SolidFrames(n, width, height int, v float32) []ports.Frame {
	frames := make([]ports.Frame, n)
	for i := range frames {
		pix := make([]float32, width*height*3)
		for p := range pix {
			pix[p] = v
		}
		frames[i] = ports.Frame{Width: width, Height: height, Pix: pix}
	}
	return frames
}

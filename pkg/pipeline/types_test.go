package pipeline

import (
	"testing"

	"github.com/user/imganimate/pkg/ports"
)

func TestStackedPath(t *testing.T) {
	tests := map[string]string{
		"output/drive/face_fill_crop_h264.mp4": "output/drive/face_fill_crop_h264_stacked.mp4",
		"out.mov":                              "out_stacked.mp4",
		"noext":                                "noext_stacked.mp4",
		"dir.v2/clip":                          "dir.v2/clip_stacked.mp4",
	}
	for in, want := range tests {
		if got := StackedPath(in); got != want {
			t.Errorf("StackedPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPredictionImages_CachesLast(t *testing.T) {
	frames := []ports.Frame{
		{Width: 1, Height: 1, Pix: []float32{1, 0, 0}},
		{Width: 1, Height: 1, Pix: []float32{0, 1, 0}},
	}
	p := NewPredictionImages(frames, 2)

	a := p.At(0)
	if p.At(0.5) != a {
		t.Error("expected the same image while the same frame is shown")
	}
	b := p.At(1)
	if b == a || b.Pix[1] != 255 {
		t.Errorf("unexpected second frame %v", b.Pix)
	}
}

func TestPredictionImages_Retimes(t *testing.T) {
	frames := make([]ports.Frame, 4)
	for i := range frames {
		frames[i] = ports.Frame{Width: 1, Height: 1, Pix: []float32{float32(i) / 3, 0, 0}}
	}
	// Four predictions spread over a two second output: one per half second.
	p := NewPredictionImages(frames, 2)

	tests := []struct {
		t    float64
		want uint8
	}{
		{0, 0},
		{0.49, 0},
		{0.5, 85},
		{1.5, 255},
		{2, 255},  // end of the output holds the last frame
		{10, 255}, // past the end as well
	}
	for _, tt := range tests {
		if got := p.At(tt.t).Pix[0]; got != tt.want {
			t.Errorf("At(%v): red = %d, want %d", tt.t, got, tt.want)
		}
	}
}

func TestPredictionImages_Empty(t *testing.T) {
	if img := NewPredictionImages(nil, 2).At(0); img != nil {
		t.Errorf("expected nil for an empty buffer, got %v", img)
	}
}

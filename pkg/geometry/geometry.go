// Package geometry reconciles arbitrary image and frame sizes to the square
// input size expected by the animation model.
//
// A Plan is computed once per media (image or video) from its dimensions and
// then applied to one image, or lazily to every frame of a video.
package geometry

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"

	"github.com/user/imganimate/pkg/errkind"
)

// Strategy selects how a non-square input reaches the target size.
type Strategy string

const (
	// Fill scales the longer axis to the target and pads the shorter axis with black.
	Fill Strategy = "fill"
	// Stretch scales both axes independently to the target.
	Stretch Strategy = "stretch"
	// Crop scales the shorter axis to the target and cuts a centred square.
	Crop Strategy = "crop"
)

// Strategies returns every supported strategy in CLI order.
func Strategies() []Strategy {
	return []Strategy{Fill, Stretch, Crop}
}

// ParseStrategy parses a strategy name case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Fill, Stretch, Crop:
		return st, nil
	default:
		return "", errkind.Configf("invalid resize mode %q (want one of %v)", s, Strategies())
	}
}

// Insets is the padding added around a scaled frame.
type Insets struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Plan is the resize/pad/crop sequence that brings one media size to Target x Target.
type Plan struct {
	Strategy Strategy
	Target   int

	SourceWidth  int
	SourceHeight int

	// Size after the scale step (before padding or cropping).
	ScaledWidth  int
	ScaledHeight int

	// Padding applies to Fill only.
	Padding Insets

	// Crop is the window taken from the scaled frame. Crop strategy only.
	Crop image.Rectangle

	// Identity is set when the source is already Target x Target.
	Identity bool
}

// NewPlan computes the transform for a width x height input.
//
// Inputs that are already target x target produce an identity plan whatever
// the strategy. Square inputs of another size follow the "else" branch of
// the orientation test: they scale straight to target x target.
func NewPlan(width, height, target int, strategy Strategy) (Plan, error) {
	strategy, err := ParseStrategy(string(strategy))
	if err != nil {
		return Plan{}, err
	}
	if width <= 0 || height <= 0 {
		return Plan{}, errkind.Configf("invalid media size %dx%d", width, height)
	}
	if target <= 0 {
		return Plan{}, errkind.Configf("invalid target size %d", target)
	}

	p := Plan{
		Strategy:     strategy,
		Target:       target,
		SourceWidth:  width,
		SourceHeight: height,
	}

	if width == target && height == target {
		p.Identity = true
		p.ScaledWidth = width
		p.ScaledHeight = height
		return p, nil
	}

	switch strategy {
	case Stretch:
		p.ScaledWidth = target
		p.ScaledHeight = target

	case Fill:
		if height > width {
			p.ScaledHeight = target
			p.ScaledWidth = proportional(target, width, height)
			p.Padding.Left, p.Padding.Right = split(target - p.ScaledWidth)
		} else {
			p.ScaledWidth = target
			p.ScaledHeight = proportional(target, height, width)
			p.Padding.Top, p.Padding.Bottom = split(target - p.ScaledHeight)
		}

	case Crop:
		half := target / 2
		if height < width {
			p.ScaledHeight = target
			p.ScaledWidth = proportional(target, width, height)
			x := p.ScaledWidth/2 - half
			p.Crop = image.Rect(x, 0, x+target, target)
		} else {
			p.ScaledWidth = target
			p.ScaledHeight = proportional(target, height, width)
			y := p.ScaledHeight/2 - half
			p.Crop = image.Rect(0, y, target, y+target)
		}
	}

	return p, nil
}

// proportional returns floor(target*num/den), never less than one pixel.
func proportional(target, num, den int) int {
	v := int(float64(target*num) / float64(den))
	if v < 1 {
		v = 1
	}
	return v
}

// split divides remaining padding so the smaller half comes first.
func split(remaining int) (int, int) {
	first := remaining / 2
	return first, remaining - first
}

// Apply transforms img with the default bilinear interpolator.
func (p Plan) Apply(img image.Image) *image.RGBA {
	return p.ApplyWith(draw.BiLinear, img)
}

// ApplyWith transforms img using interp for the scale step.
// The result is always Target x Target, fully opaque, with black margins.
func (p Plan) ApplyWith(interp draw.Interpolator, img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, p.Target, p.Target))

	if p.Identity {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
		opaque(dst)
		return dst
	}

	scaled := image.NewRGBA(image.Rect(0, 0, p.ScaledWidth, p.ScaledHeight))
	interp.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	switch p.Strategy {
	case Stretch:
		dst = scaled
	case Fill:
		r := image.Rect(p.Padding.Left, p.Padding.Top, p.Padding.Left+p.ScaledWidth, p.Padding.Top+p.ScaledHeight)
		draw.Draw(dst, r, scaled, image.Point{}, draw.Src)
	case Crop:
		draw.Draw(dst, dst.Bounds(), scaled, p.Crop.Min, draw.Src)
	}

	opaque(dst)
	return dst
}

// opaque drops alpha: every pixel becomes its colour composited over black.
func opaque(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}

// Log describes the applied operations, one step per entry.
func (p Plan) Log() []string {
	if p.Identity {
		return []string{fmt.Sprintf("identity %dx%d", p.Target, p.Target)}
	}

	steps := []string{fmt.Sprintf("scale %dx%d -> %dx%d", p.SourceWidth, p.SourceHeight, p.ScaledWidth, p.ScaledHeight)}
	switch p.Strategy {
	case Fill:
		steps = append(steps, fmt.Sprintf("pad top=%d bottom=%d left=%d right=%d",
			p.Padding.Top, p.Padding.Bottom, p.Padding.Left, p.Padding.Right))
	case Crop:
		steps = append(steps, fmt.Sprintf("crop %dx%d at (%d,%d)",
			p.Crop.Dx(), p.Crop.Dy(), p.Crop.Min.X, p.Crop.Min.Y))
	}
	return steps
}

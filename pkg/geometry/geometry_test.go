package geometry

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/user/imganimate/pkg/errkind"
)

const target = 256

var sizes = []struct {
	width, height int
}{
	{512, 384},
	{384, 512},
	{1920, 1080},
	{1080, 1920},
	{300, 500},
	{257, 255},
	{100, 40},
	{40, 100},
	{20, 400},
	{400, 20},
	{512, 512},
	{128, 128},
}

// gradient builds a deterministic test pattern.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestParseStrategy(t *testing.T) {
	for _, in := range []string{"fill", "FILL", " Stretch ", "crop"} {
		_, err := ParseStrategy(in)
		assert.NoError(t, err, in)
	}

	_, err := ParseStrategy("zoom")
	assert.ErrorIs(t, err, errkind.ErrConfiguration)
}

func TestNewPlan_InvalidInputs(t *testing.T) {
	_, err := NewPlan(512, 384, target, Strategy("zoom"))
	assert.ErrorIs(t, err, errkind.ErrConfiguration)

	_, err = NewPlan(0, 384, target, Fill)
	assert.ErrorIs(t, err, errkind.ErrConfiguration)

	_, err = NewPlan(512, 384, 0, Fill)
	assert.ErrorIs(t, err, errkind.ErrConfiguration)
}

func TestNewPlan_IdentityAtTarget(t *testing.T) {
	src := gradient(target, target)

	for _, st := range Strategies() {
		t.Run(string(st), func(t *testing.T) {
			p, err := NewPlan(target, target, target, st)
			require.NoError(t, err)
			assert.True(t, p.Identity)
			assert.Equal(t, []string{"identity 256x256"}, p.Log())

			out := p.Apply(src)
			assert.Equal(t, src.Pix, out.Pix)
		})
	}
}

func TestStretch_AlwaysTargetSquare(t *testing.T) {
	for _, s := range sizes {
		p, err := NewPlan(s.width, s.height, target, Stretch)
		require.NoError(t, err)

		out := p.Apply(gradient(s.width, s.height))
		assert.Equal(t, image.Rect(0, 0, target, target), out.Bounds(), "%dx%d", s.width, s.height)
	}
}

func TestFill_PaddingSplit(t *testing.T) {
	for _, s := range sizes {
		p, err := NewPlan(s.width, s.height, target, Fill)
		require.NoError(t, err)

		out := p.Apply(gradient(s.width, s.height))
		assert.Equal(t, image.Rect(0, 0, target, target), out.Bounds())

		if s.height > s.width {
			assert.Equal(t, target, p.ScaledHeight)
			remaining := target - p.ScaledWidth
			assert.Equal(t, remaining, p.Padding.Left+p.Padding.Right)
			assert.LessOrEqual(t, p.Padding.Left, p.Padding.Right)
			assert.Zero(t, p.Padding.Top+p.Padding.Bottom)
		} else {
			assert.Equal(t, target, p.ScaledWidth)
			remaining := target - p.ScaledHeight
			assert.Equal(t, remaining, p.Padding.Top+p.Padding.Bottom)
			assert.LessOrEqual(t, p.Padding.Top, p.Padding.Bottom)
			assert.Zero(t, p.Padding.Left+p.Padding.Right)
		}
	}
}

func TestFill_KnownSizes(t *testing.T) {
	p, err := NewPlan(512, 384, target, Fill)
	require.NoError(t, err)
	assert.Equal(t, 256, p.ScaledWidth)
	assert.Equal(t, 192, p.ScaledHeight)
	assert.Equal(t, Insets{Top: 32, Bottom: 32}, p.Padding)

	// 256*300/500 = 153.6 -> 153, remaining 103 split 51/52
	p, err = NewPlan(300, 500, target, Fill)
	require.NoError(t, err)
	assert.Equal(t, 153, p.ScaledWidth)
	assert.Equal(t, Insets{Left: 51, Right: 52}, p.Padding)
}

func TestFill_MarginIsOpaqueBlack(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p, err := NewPlan(512, 384, target, Fill)
	require.NoError(t, err)

	out := p.Apply(solid(512, 384, white))

	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(target-1, target-1))
	center := out.RGBAAt(target/2, target/2)
	assert.GreaterOrEqual(t, center.R, uint8(250))
	assert.Equal(t, uint8(255), center.A)
}

func TestFill_SquareNotAtTarget(t *testing.T) {
	p, err := NewPlan(512, 512, target, Fill)
	require.NoError(t, err)
	assert.False(t, p.Identity)
	assert.Equal(t, 256, p.ScaledWidth)
	assert.Equal(t, 256, p.ScaledHeight)
	assert.Equal(t, Insets{}, p.Padding)
}

func TestCrop_WindowCenteredAndInBounds(t *testing.T) {
	for _, s := range sizes {
		p, err := NewPlan(s.width, s.height, target, Crop)
		require.NoError(t, err)

		scaled := image.Rect(0, 0, p.ScaledWidth, p.ScaledHeight)
		assert.True(t, p.Crop.In(scaled), "%dx%d crop %v outside %v", s.width, s.height, p.Crop, scaled)
		assert.Equal(t, target, p.Crop.Dx())
		assert.Equal(t, target, p.Crop.Dy())

		if s.height < s.width {
			assert.Equal(t, target, p.ScaledHeight)
			assert.Equal(t, p.ScaledWidth/2, p.Crop.Min.X+target/2)
		} else {
			assert.Equal(t, target, p.ScaledWidth)
			assert.Equal(t, p.ScaledHeight/2, p.Crop.Min.Y+target/2)
		}

		out := p.Apply(gradient(s.width, s.height))
		assert.Equal(t, image.Rect(0, 0, target, target), out.Bounds())
	}
}

func TestCrop_LandscapeMatchesCenterOfScaledImage(t *testing.T) {
	src := gradient(512, 384)

	p, err := NewPlan(512, 384, target, Crop)
	require.NoError(t, err)
	assert.Equal(t, 341, p.ScaledWidth)
	assert.Equal(t, 256, p.ScaledHeight)
	assert.Equal(t, image.Rect(42, 0, 298, 256), p.Crop)

	out := p.Apply(src)
	require.Equal(t, image.Rect(0, 0, 256, 256), out.Bounds())

	scaled := image.NewRGBA(image.Rect(0, 0, 341, 256))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
	center := scaled.SubImage(image.Rect(42, 0, 298, 256)).(*image.RGBA)

	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			want := center.RGBAAt(42+x, y)
			want.A = 255
			if got := out.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestCrop_Portrait(t *testing.T) {
	p, err := NewPlan(384, 512, target, Crop)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 42, 256, 298), p.Crop)
	assert.Equal(t, []string{"scale 384x512 -> 256x341", "crop 256x256 at (0,42)"}, p.Log())
}

func TestPlan_TargetIsNotHardCoded(t *testing.T) {
	p, err := NewPlan(640, 480, 64, Crop)
	require.NoError(t, err)
	assert.Equal(t, 85, p.ScaledWidth)
	assert.Equal(t, image.Rect(10, 0, 74, 64), p.Crop)

	out := p.Apply(gradient(640, 480))
	assert.Equal(t, image.Rect(0, 0, 64, 64), out.Bounds())
}

package ports

import (
	"image"
	"image/color"
)

// Frame is an RGB image with channels normalized to [0, 1], the pixel format
// exchanged with animation models.
type Frame struct {
	Width  int
	Height int
	Pix    []float32 // Interleaved RGB, row-major, len = Width*Height*3
}

// NewFrame converts img to a Frame, dividing each 8-bit channel by 255.
// Alpha is discarded.
func NewFrame(img image.Image) Frame {
	b := img.Bounds()
	f := Frame{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]float32, b.Dx()*b.Dy()*3),
	}

	if rgba, ok := img.(*image.RGBA); ok {
		i := 0
		for y := 0; y < f.Height; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < f.Width; x++ {
				f.Pix[i] = float32(row[x*4]) / 255
				f.Pix[i+1] = float32(row[x*4+1]) / 255
				f.Pix[i+2] = float32(row[x*4+2]) / 255
				i += 3
			}
		}
		return f
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			f.Pix[i] = float32(c.R) / 255
			f.Pix[i+1] = float32(c.G) / 255
			f.Pix[i+2] = float32(c.B) / 255
			i += 3
		}
	}
	return f
}

// Bounds returns the frame rectangle anchored at the origin.
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// ToRGBA converts the frame back to 8-bit pixels. Values are clamped to
// [0, 1] and truncated after scaling by 255.
func (f Frame) ToRGBA() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	n := f.Width * f.Height
	for p := 0; p < n && p*3+2 < len(f.Pix); p++ {
		img.Pix[p*4] = toByte(f.Pix[p*3])
		img.Pix[p*4+1] = toByte(f.Pix[p*3+1])
		img.Pix[p*4+2] = toByte(f.Pix[p*3+2])
		img.Pix[p*4+3] = 0xff
	}
	return img
}

func toByte(v float32) uint8 {
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255)
}

package vision

import (
	"image"

	"golang.org/x/image/draw"
)

// Frame is a row-major grayscale image buffer, one byte per pixel.
type Frame struct {
	Pix    []uint8
	Width  int
	Height int
}

// Valid reports whether the buffer covers the declared dimensions. A short
// buffer signals a malformed frame upstream and every consumer treats it as
// empty input rather than an error.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pix) >= f.Width*f.Height
}

// At returns the pixel at (x, y) with coordinates clamped to the image
// edges, so out-of-bounds sampling reads the nearest border pixel.
func (f Frame) At(x, y int) uint8 {
	if x < 0 {
		x = 0
	} else if x >= f.Width {
		x = f.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.Height {
		y = f.Height - 1
	}
	return f.Pix[y*f.Width+x]
}

// FromGray wraps an image.Gray as a Frame without copying when the stride
// is tight, copying row by row otherwise.
func FromGray(img *image.Gray) Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if img.Stride == w && b.Min == (image.Point{}) {
		return Frame{Pix: img.Pix, Width: w, Height: h}
	}
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		copy(pix[y*w:(y+1)*w], img.Pix[(y+b.Min.Y-img.Rect.Min.Y)*img.Stride:])
	}
	return Frame{Pix: pix, Width: w, Height: h}
}

// FromImage converts any image to a grayscale Frame, scaling to the target
// dimensions. Pass the source dimensions to convert without scaling.
func FromImage(src image.Image, width, height int) Frame {
	gray := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), draw.Src, nil)
	return FromGray(gray)
}

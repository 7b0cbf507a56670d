package media

import (
	"image"
	"image/color"
	"image/draw"
)

// Grid is a decoded image as non-premultiplied RGBA bytes, 4 per pixel,
// row-major from the top-left corner.
type Grid struct {
	Width  int
	Height int
	Pix    []byte
}

// NewGrid allocates a black, fully transparent grid.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// FromImage flattens img into a grid. Colors are converted to NRGBA so the
// RGB channels are independent of alpha.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	g := NewGrid(b.Dx(), b.Dy())
	if g.Width == 0 || g.Height == 0 {
		return g
	}

	if src, ok := img.(*image.NRGBA); ok && src.Stride == g.Width*4 && src.Rect.Min == (image.Point{}) {
		copy(g.Pix, src.Pix)
		return g
	}

	dst := &image.NRGBA{
		Pix:    g.Pix,
		Stride: g.Width * 4,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return g
}

// Len returns the pixel count.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return g.Width * g.Height
}

// At returns the pixel at (x, y). Out of range coordinates yield zero.
func (g *Grid) At(x, y int) color.NRGBA {
	if g == nil || x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return color.NRGBA{}
	}
	off := (y*g.Width + x) * 4
	return color.NRGBA{R: g.Pix[off], G: g.Pix[off+1], B: g.Pix[off+2], A: g.Pix[off+3]}
}

// Set writes the pixel at (x, y); out of range writes are ignored.
func (g *Grid) Set(x, y int, c color.NRGBA) {
	if g == nil || x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	off := (y*g.Width + x) * 4
	g.Pix[off] = c.R
	g.Pix[off+1] = c.G
	g.Pix[off+2] = c.B
	g.Pix[off+3] = c.A
}

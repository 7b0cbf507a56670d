// Package render draws an image grid into the terminal with the playhead
// column highlighted.
package render

import (
	"math"
	"strings"

	"github.com/olivier-w/ynok/internal/media"
)

var markerTint = rgb{255, 72, 72}

// cell holds the two source pixels a half-block cell shows.
type cell struct{ top, bot rgb }

// Renderer converts an image grid into a terminal string.
// It supports two modes:
//   - Color (half-block): uses "▀" with fg/bg colors to pack 2 pixel rows per terminal row.
//   - ASCII (no color): maps each cell to a brightness character.
//
// Sampled cells are cached per grid and size, so redrawing only the moving
// playhead is cheap.
type Renderer struct {
	mode  colorMode
	sb    strings.Builder
	grid  *media.Grid
	outW  int
	outH  int
	cells []cell
}

// NewRenderer creates a renderer using the current terminal's color capabilities.
func NewRenderer() *Renderer {
	return &Renderer{mode: detectColorMode()}
}

// Color reports whether half-block color output is active.
func (r *Renderer) Color() bool { return r.mode != colorOff }

// Render draws g scaled to outW x outH cells. The column at marker is tinted
// (or drawn as '|' in ASCII mode); a marker outside [0, outW) draws nothing.
func (r *Renderer) Render(g *media.Grid, outW, outH, marker int) string {
	if g.Len() == 0 || outW <= 0 || outH <= 0 {
		return ""
	}
	r.sample(g, outW, outH)

	r.sb.Reset()
	r.sb.Grow(outW * outH * 24)
	if r.mode == colorOff {
		r.renderASCII(marker)
	} else {
		r.renderHalfBlock(marker)
	}
	return r.sb.String()
}

// sample maps every cell to its source pixels with nearest-neighbor scaling.
func (r *Renderer) sample(g *media.Grid, outW, outH int) {
	if r.grid == g && r.outW == outW && r.outH == outH {
		return
	}
	r.grid, r.outW, r.outH = g, outW, outH
	r.cells = make([]cell, outW*outH)

	pixelRows := outH
	if r.mode != colorOff {
		pixelRows = outH * 2
	}
	for row := 0; row < outH; row++ {
		for col := 0; col < outW; col++ {
			srcX := col * g.Width / outW
			c := &r.cells[row*outW+col]
			if r.mode == colorOff {
				c.top = pixelAt(g, srcX, row*g.Height/pixelRows)
				continue
			}
			c.top = pixelAt(g, srcX, (row*2)*g.Height/pixelRows)
			c.bot = pixelAt(g, srcX, (row*2+1)*g.Height/pixelRows)
		}
	}
}

// pixelAt returns the pixel composited over black.
func pixelAt(g *media.Grid, x, y int) rgb {
	p := g.At(x, y)
	if p.A == 255 {
		return rgb{p.R, p.G, p.B}
	}
	a := int(p.A)
	return rgb{uint8(int(p.R) * a / 255), uint8(int(p.G) * a / 255), uint8(int(p.B) * a / 255)}
}

// renderHalfBlock uses "▀" (upper half block) with fg = top pixel, bg = bottom pixel.
func (r *Renderer) renderHalfBlock(marker int) {
	var lastFg, lastBg string
	for row := 0; row < r.outH; row++ {
		for col := 0; col < r.outW; col++ {
			c := r.cells[row*r.outW+col]
			if col == marker {
				c.top = c.top.blend(markerTint, 0.65)
				c.bot = c.bot.blend(markerTint, 0.65)
			}
			fg := colorSeq(r.mode, 38, c.top)
			bg := colorSeq(r.mode, 48, c.bot)
			if fg != lastFg {
				r.sb.WriteString(fg)
				lastFg = fg
			}
			if bg != lastBg {
				r.sb.WriteString(bg)
				lastBg = bg
			}
			r.sb.WriteString("▀")
		}
		r.sb.WriteString(ansiReset)
		lastFg, lastBg = "", ""
		if row < r.outH-1 {
			r.sb.WriteByte('\n')
		}
	}
}

func (r *Renderer) renderASCII(marker int) {
	for row := 0; row < r.outH; row++ {
		for col := 0; col < r.outW; col++ {
			if col == marker {
				r.sb.WriteByte('|')
				continue
			}
			r.sb.WriteByte(brightnessChar(r.cells[row*r.outW+col].top.brightness()))
		}
		if row < r.outH-1 {
			r.sb.WriteByte('\n')
		}
	}
}

// Fit returns the largest cell size that shows a srcW x srcH image inside
// termW x termH cells with its aspect ratio kept. Terminal cells are taken
// to be about twice as tall as they are wide.
func Fit(termW, termH, srcW, srcH int) (outW, outH int) {
	if srcW <= 0 || srcH <= 0 || termW <= 0 || termH <= 0 {
		return 0, 0
	}
	aspect := float64(srcW) / float64(srcH)
	w := float64(termW)
	h := w / aspect / 2
	if h > float64(termH) {
		h = float64(termH)
		w = h * aspect * 2
	}
	outW = max(int(w), 1)
	outH = min(max(int(math.Round(h)), 1), termH)
	return outW, outH
}

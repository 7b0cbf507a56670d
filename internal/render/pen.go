package render

import "strings"

// RGB is an opaque 8-bit color.
type RGB struct{ R, G, B uint8 }

// Lerp moves from c toward o by t in [0, 1].
func (c RGB) Lerp(o RGB, t float64) RGB {
	m := rgb{c.R, c.G, c.B}.blend(rgb{o.R, o.G, o.B}, t)
	return RGB{m.r, m.g, m.b}
}

// Pen writes foreground colors into a builder using the terminal's color
// mode, skipping sequences that would repeat the current color.
type Pen struct {
	mode colorMode
	cur  RGB
	set  bool
}

// NewPen returns a pen for the detected terminal color mode.
func NewPen() Pen { return Pen{mode: detectColorMode()} }

// Set switches the foreground to c.
func (p *Pen) Set(sb *strings.Builder, c RGB) {
	if p.mode == colorOff || (p.set && p.cur == c) {
		return
	}
	sb.WriteString(colorSeq(p.mode, 38, rgb{c.R, c.G, c.B}))
	p.cur, p.set = c, true
}

// Reset clears any color the pen has written.
func (p *Pen) Reset(sb *strings.Builder) {
	if !p.set {
		return
	}
	sb.WriteString(ansiReset)
	p.set = false
}

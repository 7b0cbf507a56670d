// Package playhead integrates frame time into a visual playback position.
//
// The position is an estimate derived from the buffer's declared duration,
// not a readback of the device cursor. Drift is bounded by clamping to the
// display width.
package playhead

import "math"

// Playhead tracks a position in [0, Width].
type Playhead struct {
	width    float64
	duration float64
	rate     float64
	pos      float64
}

// New returns a playhead for a display width in pixels (or cells) and a
// buffer duration in seconds.
func New(width, duration float64) Playhead {
	p := Playhead{}
	p.width = sanitize(width)
	p.duration = sanitize(duration)
	p.recompute()
	return p
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func (p *Playhead) recompute() {
	if p.duration > 0 {
		p.rate = p.width / p.duration
	} else {
		p.rate = 0
	}
	if p.pos > p.width {
		p.pos = p.width
	}
}

// SetWidth changes the display width. The position is rescaled so the
// fraction of the buffer already played is unchanged.
func (p *Playhead) SetWidth(width float64) {
	width = sanitize(width)
	if p.width > 0 {
		p.pos = p.pos * width / p.width
	} else {
		p.pos = 0
	}
	p.width = width
	p.recompute()
}

// SetDuration changes the buffer duration.
func (p *Playhead) SetDuration(seconds float64) {
	p.duration = sanitize(seconds)
	p.recompute()
}

// Rate returns the advance in units per second at speed 1.
func (p *Playhead) Rate() float64 { return p.rate }

func (p *Playhead) Width() float64    { return p.width }
func (p *Playhead) Duration() float64 { return p.duration }
func (p *Playhead) Position() float64 { return p.pos }

// Fraction returns Position / Width, or 0 for a zero width.
func (p *Playhead) Fraction() float64 {
	if p.width <= 0 {
		return 0
	}
	return p.pos / p.width
}

// Reset moves the playhead back to 0.
func (p *Playhead) Reset() { p.pos = 0 }

// Advance moves the playhead by rate*speed*dt and reports whether the right
// edge has been reached. The position never leaves [0, Width]. A playhead
// without width never reaches an edge.
func (p *Playhead) Advance(dt, speed float64) bool {
	if p.width <= 0 {
		return false
	}
	dt = sanitize(dt)
	speed = sanitize(speed)
	p.pos += p.rate * speed * dt
	if p.pos >= p.width {
		p.pos = p.width
		return true
	}
	return false
}

package visualizer

import "github.com/charmbracelet/harmonica"

// springField animates a row of values toward per-frame targets.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(frequency, damping float64) springField {
	return springField{spring: harmonica.NewSpring(harmonica.FPS(springFPS), frequency, damping)}
}

// resize keeps existing positions when growing so the field does not jump.
func (s *springField) resize(n int) {
	if len(s.pos) == n {
		return
	}
	pos := make([]float64, n)
	vel := make([]float64, n)
	copy(pos, s.pos)
	copy(vel, s.vel)
	s.pos, s.vel = pos, vel
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return p
}

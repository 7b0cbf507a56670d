// Package visualizer draws the audio at and around the playhead.
package visualizer

import "github.com/olivier-w/ynok/internal/audiobuf"

// springFPS matches the UI frame tick so springs settle in real time.
const springFPS = 30

// Frame is what a visualizer sees on each UI tick.
type Frame struct {
	Buffer   *audiobuf.Buffer
	Fraction float64 // playhead position in [0, 1]
}

// Visualizer renders audio data as terminal art.
type Visualizer interface {
	Name() string
	Update(f Frame, width, height int)
	View() string
}

// Modes returns all available visualizers.
func Modes() []Visualizer {
	return []Visualizer{
		NewMeter(),
		NewOverview(),
		NewSpectrum(),
	}
}

// window returns up to n frames starting at the frame under frac, split
// into left and right channels. Mono buffers return the same slice twice.
func window(f Frame, n int) (left, right []float64) {
	buf := f.Buffer
	if buf == nil || buf.Len() == 0 || n <= 0 {
		return nil, nil
	}
	frames := buf.Frames()
	ch := buf.Channels()
	samples := buf.Samples()

	start := int(clamp01(f.Fraction) * float64(frames))
	if start >= frames {
		start = frames - 1
	}
	end := min(start+n, frames)

	left = make([]float64, 0, end-start)
	if ch == 2 {
		right = make([]float64, 0, end-start)
	}
	for i := start; i < end; i++ {
		idx := i * ch
		left = append(left, float64(samples[idx]))
		if ch == 2 {
			r := 0.0
			if idx+1 < len(samples) {
				r = float64(samples[idx+1])
			}
			right = append(right, r)
		}
	}
	if ch == 1 {
		right = left
	}
	return left, right
}

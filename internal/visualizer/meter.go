package visualizer

import (
	"math"
	"strings"

	"github.com/olivier-w/ynok/internal/render"
)

const (
	meterWindow = 256
	peakDecay   = 0.02
	dbFloor     = -40.0
)

// Meter shows the spring-smoothed level of the audio under the playhead,
// with a decaying peak marker.
type Meter struct {
	levels springField // index 0 left, 1 right
	peaks  [2]float64
	mono   bool
	output string
}

// NewMeter creates a level meter.
func NewMeter() *Meter {
	m := &Meter{levels: newSpringField(9.0, 0.85)}
	m.levels.resize(2)
	return m
}

func (m *Meter) Name() string { return "level" }

// Level returns the current smoothed level of channel ch in [0, 1].
func (m *Meter) Level(ch int) float64 {
	if ch < 0 || ch > 1 {
		return 0
	}
	return clamp01(m.levels.pos[ch])
}

func (m *Meter) Update(f Frame, width, height int) {
	left, right := window(f, meterWindow)
	targets := [2]float64{rmsToLevel(rms(left)), rmsToLevel(rms(right))}
	for i, target := range targets {
		lvl := clamp01(m.levels.step(i, target))
		if lvl > m.peaks[i] {
			m.peaks[i] = lvl
		} else {
			m.peaks[i] = math.Max(0, m.peaks[i]-peakDecay)
		}
	}
	m.mono = f.Buffer == nil || f.Buffer.Channels() == 1

	barWidth := max(width-6, 10)
	var sb strings.Builder
	if m.mono {
		sb.WriteString(" M  ")
		sb.WriteString(renderLevelBar(m.Level(0), m.peaks[0], barWidth))
	} else {
		sb.WriteString(" L  ")
		sb.WriteString(renderLevelBar(m.Level(0), m.peaks[0], barWidth))
		sb.WriteByte('\n')
		if height >= 3 {
			sb.WriteByte('\n')
		}
		sb.WriteString(" R  ")
		sb.WriteString(renderLevelBar(m.Level(1), m.peaks[1], barWidth))
	}
	m.output = sb.String()
}

func (m *Meter) View() string {
	return m.output
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// rmsToLevel maps RMS onto [0, 1] on a dB scale with a -40 dB floor.
func rmsToLevel(r float64) float64 {
	if r < 1e-6 {
		return 0
	}
	db := 20 * math.Log10(r)
	if db < dbFloor {
		return 0
	}
	return clamp01((db - dbFloor) / -dbFloor)
}

func renderLevelBar(level, peak float64, width int) string {
	filled := int(level * float64(width))
	peakPos := min(int(peak*float64(width)), width-1)

	var sb strings.Builder
	color := render.NewPen()
	for i := range width {
		switch {
		case i < filled:
			color.Set(&sb, heatColor(0.35+0.65*float64(i)/float64(width)))
			sb.WriteRune('█')
		case i == peakPos && peakPos > 0:
			color.Set(&sb, markerColor)
			sb.WriteRune('│')
		default:
			color.Set(&sb, axisColor)
			sb.WriteRune('─')
		}
	}
	color.Reset(&sb)
	return sb.String()
}

package visualizer

import (
	"math"
	"strings"

	"github.com/olivier-w/ynok/internal/audiobuf"
	"github.com/olivier-w/ynok/internal/render"
)

// Overview draws the min/max envelope of the whole buffer with the playhead
// column marked. The envelope springs toward a new shape after a rebuild.
type Overview struct {
	hi, lo   springField
	buf      *audiobuf.Buffer
	cols     int
	targetHi []float64
	targetLo []float64
	output   string
}

// NewOverview creates a buffer overview.
func NewOverview() *Overview {
	return &Overview{
		hi: newSpringField(6.0, 0.75),
		lo: newSpringField(6.0, 0.75),
	}
}

func (o *Overview) Name() string { return "overview" }

func (o *Overview) Update(f Frame, width, height int) {
	if f.Buffer == nil || f.Buffer.Len() == 0 || width < 4 || height < 1 {
		o.output = ""
		return
	}

	cols := width - 2
	if f.Buffer != o.buf || cols != o.cols {
		o.targetHi, o.targetLo = envelope(f.Buffer, cols)
		o.buf, o.cols = f.Buffer, cols
	}
	o.hi.resize(cols)
	o.lo.resize(cols)
	for c := range cols {
		o.hi.step(c, o.targetHi[c])
		o.lo.step(c, o.targetLo[c])
	}

	marker := min(int(clamp01(f.Fraction)*float64(cols)), cols-1)
	mid := ampToRow(0, height)

	var out strings.Builder
	color := render.NewPen()
	for r := range height {
		if r > 0 {
			out.WriteByte('\n')
		}
		// Row r covers amplitudes around this value.
		rowAmp := 1 - 2*float64(r)/math.Max(1, float64(height-1))
		for c := range cols {
			top := ampToRow(o.hi.pos[c], height)
			bot := ampToRow(o.lo.pos[c], height)
			switch {
			case c == marker:
				color.Set(&out, markerColor)
				out.WriteRune('│')
			case r >= top && r <= bot:
				color.Set(&out, heatColor(math.Abs(rowAmp)))
				out.WriteRune('█')
			case r == mid:
				color.Set(&out, axisColor)
				out.WriteRune('·')
			default:
				out.WriteByte(' ')
			}
		}
		color.Reset(&out)
	}
	o.output = out.String()
}

func (o *Overview) View() string {
	return o.output
}

// envelope returns per-column max and min of the channel-averaged signal.
func envelope(buf *audiobuf.Buffer, cols int) (hi, lo []float64) {
	hi = make([]float64, cols)
	lo = make([]float64, cols)
	frames := buf.Frames()
	for c := range cols {
		start := c * frames / cols
		end := max((c+1)*frames/cols, start+1)
		end = min(end, frames)
		h, l := math.Inf(-1), math.Inf(1)
		for i := start; i < end; i++ {
			v := frameValue(buf, i)
			h = math.Max(h, v)
			l = math.Min(l, v)
		}
		if math.IsInf(h, 0) {
			h, l = 0, 0
		}
		hi[c], lo[c] = h, l
	}
	return hi, lo
}

func frameValue(buf *audiobuf.Buffer, i int) float64 {
	samples := buf.Samples()
	ch := buf.Channels()
	idx := i * ch
	if ch == 1 || idx+1 >= len(samples) {
		return float64(samples[idx])
	}
	return (float64(samples[idx]) + float64(samples[idx+1])) / 2
}

func ampToRow(amp float64, height int) int {
	if height <= 1 {
		return 0
	}
	amp = clamp01((amp + 1) / 2)
	row := int(math.Round((1 - amp) * float64(height-1)))
	return min(max(row, 0), height-1)
}

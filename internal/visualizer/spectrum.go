package visualizer

import (
	"math"
	"strings"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/olivier-w/ynok/internal/render"
)

const (
	spectrumBands = 16
	fftSize       = 1024
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

// Spectrum shows log-spaced frequency bands of the audio just after the
// playhead.
type Spectrum struct {
	plan   *algofft.PlanRealT[float32, complex64]
	in     []float32
	out    []complex64
	bands  springField
	output string
}

// NewSpectrum creates a spectrum visualizer. It renders nothing if the FFT
// plan cannot be built.
func NewSpectrum() *Spectrum {
	s := &Spectrum{bands: newSpringField(12.0, 0.9)}
	s.bands.resize(spectrumBands)
	plan, err := algofft.NewPlanReal32(fftSize)
	if err != nil {
		return s
	}
	s.plan = plan
	s.in = make([]float32, fftSize)
	s.out = make([]complex64, fftSize/2+1)
	return s
}

func (s *Spectrum) Name() string { return "spectrum" }

func (s *Spectrum) Update(f Frame, width, height int) {
	if s.plan == nil {
		s.output = ""
		return
	}

	left, right := window(f, fftSize)
	var mean float64
	for i := range fftSize {
		v := 0.0
		if i < len(left) {
			v = (left[i] + right[i]) / 2
		}
		s.in[i] = float32(v)
		mean += v
	}
	// Unipolar buffers carry a DC offset that would swamp the lowest band.
	mean /= fftSize
	for i := range fftSize {
		hann := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
		s.in[i] = float32((float64(s.in[i]) - mean) * hann)
	}

	var mags [spectrumBands]float64
	if err := s.plan.Forward(s.out, s.in); err == nil {
		mags = bandMagnitudes(s.out)
	}

	maxVal := 0.01
	for b := range spectrumBands {
		if v := s.bands.step(b, mags[b]); v > maxVal {
			maxVal = v
		}
	}

	height = max(height, 1)
	colWidth := max((width-2)/spectrumBands, 1)
	gap := 1
	if colWidth <= 1 {
		gap = 0
	}

	rows := make([]string, height)
	for row := range height {
		var line strings.Builder
		color := render.NewPen()
		fromBottom := float64(height - 1 - row)
		for b := range spectrumBands {
			if b > 0 && gap > 0 {
				line.WriteByte(' ')
			}
			level := math.Max(s.bands.pos[b], 0) / maxVal * float64(height)
			idx := 0
			switch {
			case level > fromBottom+1:
				idx = len(barChars) - 1
			case level > fromBottom:
				idx = int((level - fromBottom) * float64(len(barChars)-1))
			}
			color.Set(&line, heatColor((fromBottom+1)/float64(height)))
			line.WriteString(strings.Repeat(string(barChars[idx]), colWidth-gap))
		}
		color.Reset(&line)
		rows[row] = line.String()
	}
	s.output = strings.Join(rows, "\n")
}

func (s *Spectrum) View() string {
	return s.output
}

// bandMagnitudes averages FFT bin magnitudes into log-spaced bands.
func bandMagnitudes(bins []complex64) [spectrumBands]float64 {
	var mags [spectrumBands]float64
	maxBin := fftSize / 2
	for b := range spectrumBands {
		lo := int(math.Pow(float64(maxBin), float64(b)/spectrumBands))
		hi := int(math.Pow(float64(maxBin), float64(b+1)/spectrumBands))
		lo = max(lo, 1)
		hi = min(max(hi, lo+1), maxBin)
		var sum float64
		for i := lo; i < hi; i++ {
			re, im := float64(real(bins[i])), float64(imag(bins[i]))
			sum += math.Sqrt(re*re + im*im)
		}
		if hi > lo {
			mags[b] = sum / float64(hi-lo)
		}
	}
	return mags
}

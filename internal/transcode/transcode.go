// Package transcode turns pixel brightness into audio samples.
package transcode

import (
	"fmt"
	"strings"

	"github.com/olivier-w/ynok/internal/media"
)

// Signal is one normalized sample per pixel, in row-major pixel order.
type Signal []float32

// Mode selects the output range of Transcode.
type Mode uint8

const (
	// Bipolar maps brightness to [-1, 1]; mid-grey is silence.
	Bipolar Mode = iota
	// Unipolar maps brightness to [0, 1].
	Unipolar
)

// String returns the flag/display name of the mode.
func (m Mode) String() string {
	switch m {
	case Unipolar:
		return "unipolar"
	default:
		return "bipolar"
	}
}

// Next toggles between the two modes.
func (m Mode) Next() Mode {
	if m == Unipolar {
		return Bipolar
	}
	return Unipolar
}

// ParseMode parses "unipolar" or "bipolar".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bipolar", "signed":
		return Bipolar, nil
	case "unipolar", "unsigned":
		return Unipolar, nil
	default:
		return Bipolar, fmt.Errorf("unknown mode %q (want unipolar or bipolar)", s)
	}
}

// Transcode averages R, G and B of every pixel into a sample. Alpha is
// ignored. A nil or empty grid yields an empty signal.
func Transcode(grid *media.Grid, mode Mode) Signal {
	n := grid.Len()
	if n == 0 {
		return Signal{}
	}

	out := make(Signal, n)
	pix := grid.Pix
	for i := range out {
		off := i * 4
		sum := float32(pix[off]) + float32(pix[off+1]) + float32(pix[off+2])
		avg := sum / 3 / 255
		if mode == Bipolar {
			avg = avg*2 - 1
		}
		out[i] = avg
	}
	return out
}

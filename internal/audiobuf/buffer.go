// Package audiobuf packages a brightness signal as a fixed, replayable audio
// buffer.
package audiobuf

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/olivier-w/ynok/internal/transcode"
)

var (
	// ErrDegenerate is returned for buffers whose duration would be zero or
	// undefined.
	ErrDegenerate = errors.New("degenerate audio buffer")
	// ErrChannels is returned for channel counts other than 1 or 2.
	ErrChannels = errors.New("unsupported channel count")
)

// Buffer is an immutable sample buffer. The samples are interleaved when
// Channels is 2.
type Buffer struct {
	samples    transcode.Signal
	channels   int
	sampleRate int
}

// Build wraps signal without copying it. The caller must not modify signal
// afterwards.
func Build(signal transcode.Signal, channels, sampleRate int) (*Buffer, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d", ErrChannels, channels)
	}
	if len(signal) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrDegenerate)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrDegenerate, sampleRate)
	}
	return &Buffer{
		samples:    signal,
		channels:   channels,
		sampleRate: sampleRate,
	}, nil
}

// Seconds returns len(samples) / (sampleRate * channels).
func (b *Buffer) Seconds() float64 {
	return float64(len(b.samples)) / (float64(b.sampleRate) * float64(b.channels))
}

// Duration returns Seconds as a time.Duration.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Len returns the total sample count across all channels.
func (b *Buffer) Len() int { return len(b.samples) }

// Frames returns the number of sample frames, counting a trailing partial
// frame as a whole one.
func (b *Buffer) Frames() int {
	return (len(b.samples) + b.channels - 1) / b.channels
}

func (b *Buffer) Channels() int   { return b.channels }
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Samples returns the underlying signal. It must be treated as read-only.
func (b *Buffer) Samples() transcode.Signal { return b.samples }

// SampleAt returns the sample at the given fraction of the buffer, clamped
// to [0, 1].
func (b *Buffer) SampleAt(frac float64) float32 {
	if len(b.samples) == 0 {
		return 0
	}
	if !(frac > 0) {
		return b.samples[0]
	}
	i := int(frac * float64(len(b.samples)))
	if i >= len(b.samples) {
		i = len(b.samples) - 1
	}
	return b.samples[i]
}

// Quantize converts a normalized sample to signed 16-bit PCM. Values are
// clamped to [-1, 1] first; NaN maps to 0.
func Quantize(s float32) int16 {
	v := float64(s)
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	return int16(math.Round(v * math.MaxInt16))
}

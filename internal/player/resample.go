package player

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	deviceSampleRate     = 48000
	deviceChannels       = 2
	deviceBytesPerSample = 2
	deviceFrameSize      = deviceChannels * deviceBytesPerSample
)

// resampler presents a mono or stereo source at any rate as a 48 kHz
// stereo s16le stream. The source is read into memory up front; buffers are
// bounded by image size so this stays small.
type resampler struct {
	frames    []int16 // interleaved L/R at the source rate
	srcRate   int
	srcFrames int64

	outFrames int64
	outPos    int64
	buf       []byte
}

func newResampler(src pcmSource) (*resampler, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > deviceChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding source: %w", err)
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading source PCM: %w", err)
	}

	srcFrameSize := channels * deviceBytesPerSample
	n := len(raw) / srcFrameSize
	frames := make([]int16, n*deviceChannels)
	for i := 0; i < n; i++ {
		off := i * srcFrameSize
		left := int16(binary.LittleEndian.Uint16(raw[off:]))
		right := left
		if channels == 2 {
			right = int16(binary.LittleEndian.Uint16(raw[off+2:]))
		}
		frames[i*2] = left
		frames[i*2+1] = right
	}

	outFrames := int64(n) * deviceSampleRate / int64(rate)
	if n > 0 && outFrames == 0 {
		outFrames = 1
	}

	return &resampler{
		frames:    frames,
		srcRate:   rate,
		srcFrames: int64(n),
		outFrames: outFrames,
	}, nil
}

func (r *resampler) Length() int64     { return r.outFrames * deviceFrameSize }
func (r *resampler) SampleRate() int   { return deviceSampleRate }
func (r *resampler) ChannelCount() int { return deviceChannels }

func (r *resampler) Read(p []byte) (int, error) {
	if len(r.buf) > 0 {
		n := copy(p, r.buf)
		r.buf = r.buf[n:]
		return n, nil
	}
	if r.outPos >= r.outFrames {
		return 0, io.EOF
	}

	want := (len(p) + deviceFrameSize - 1) / deviceFrameSize
	if want == 0 {
		want = 1
	}
	if remaining := r.outFrames - r.outPos; int64(want) > remaining {
		want = int(remaining)
	}

	raw := make([]byte, want*deviceFrameSize)
	for i := 0; i < want; i++ {
		// Source position in units of 1/deviceSampleRate source frames.
		num := r.outPos * int64(r.srcRate)
		idx := num / deviceSampleRate
		frac := num % deviceSampleRate

		next := idx + 1
		if next >= r.srcFrames {
			next = r.srcFrames - 1
		}
		if idx >= r.srcFrames {
			idx = r.srcFrames - 1
		}
		off := i * deviceFrameSize
		binary.LittleEndian.PutUint16(raw[off:], uint16(interpolateSample(r.frames[idx*2], r.frames[next*2], frac)))
		binary.LittleEndian.PutUint16(raw[off+2:], uint16(interpolateSample(r.frames[idx*2+1], r.frames[next*2+1], frac)))
		r.outPos++
	}

	n := copy(p, raw)
	if n < len(raw) {
		r.buf = raw[n:]
	}
	return n, nil
}

func (r *resampler) Seek(offset int64, whence int) (int64, error) {
	cur := r.outPos*deviceFrameSize - int64(len(r.buf))
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = cur + offset
	case io.SeekEnd:
		next = r.Length() + offset
	default:
		return cur, fmt.Errorf("invalid seek whence: %d", whence)
	}
	if next < 0 {
		next = 0
	}
	if next > r.Length() {
		next = r.Length()
	}
	next -= next % deviceFrameSize

	r.buf = nil
	r.outPos = next / deviceFrameSize
	return next, nil
}

// interpolateSample blends a toward b by frac/deviceSampleRate.
func interpolateSample(a, b int16, frac int64) int16 {
	if frac == 0 || a == b {
		return a
	}
	diff := int64(int32(b) - int32(a))
	return int16(int64(int32(a)) + (diff*frac+deviceSampleRate/2)/deviceSampleRate)
}

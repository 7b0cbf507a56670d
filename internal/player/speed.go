package player

import (
	"io"
	"sync"
)

// speedReader sits between the resampler and oto and steps through source
// frames at a fractional rate. Above 1 it skips frames, below 1 it repeats
// them, so pitch and tempo change together.
type speedReader struct {
	source    io.Reader
	frameSize int

	// mu guards speed and the pending state; Read runs on oto's goroutine
	// while Position polls from the UI.
	mu    sync.Mutex
	speed float64

	pending []byte  // source frames not yet fully consumed
	frac    float64 // read position within pending, in frames
	eof     bool
	err     error
	tmp     []byte
}

func newSpeedReader(source io.Reader, frameSize int, speed float64) *speedReader {
	if !(speed > 0) {
		speed = 1
	}
	return &speedReader{
		source:    source,
		frameSize: frameSize,
		speed:     speed,
	}
}

func (sr *speedReader) Read(p []byte) (int, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	// Only whole frames are handed out so the output stays frame aligned.
	p = p[:len(p)-len(p)%sr.frameSize]
	if len(p) == 0 {
		return 0, nil
	}
	if sr.speed == 1 && len(sr.pending) == 0 {
		sr.frac = 0
		return sr.readWhole(p)
	}
	return sr.readScaled(p, sr.speed)
}

// readWhole passes source bytes through, holding back a trailing partial
// frame until the rest of it arrives.
func (sr *speedReader) readWhole(p []byte) (int, error) {
	n, err := sr.source.Read(p)
	if rem := n % sr.frameSize; rem != 0 {
		sr.pending = append(sr.pending, p[n-rem:n]...)
		n -= rem
		if err != nil {
			sr.eof = true
			if err != io.EOF {
				sr.err = err
			}
			err = nil
		}
	}
	return n, err
}

// pendingBytes returns how many source bytes have been read but not yet
// emitted.
func (sr *speedReader) pendingBytes() int {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	left := len(sr.pending) - int(sr.frac)*sr.frameSize
	return max(left, 0)
}

func (sr *speedReader) readScaled(p []byte, speed float64) (int, error) {
	fs := sr.frameSize
	outFrames := len(p) / fs

	need := int(sr.frac+float64(outFrames)*speed) + 2
	sr.fill(need)

	avail := len(sr.pending) / fs
	written := 0
	for written < outFrames {
		idx := int(sr.frac)
		if idx >= avail {
			break
		}
		copy(p[written*fs:(written+1)*fs], sr.pending[idx*fs:(idx+1)*fs])
		written++
		sr.frac += speed
	}

	drop := int(sr.frac)
	if drop > avail {
		drop = avail
	}
	n := copy(sr.pending, sr.pending[drop*fs:])
	sr.pending = sr.pending[:n]
	sr.frac -= float64(drop)

	if written > 0 {
		return written * fs, nil
	}
	if sr.err != nil {
		return 0, sr.err
	}
	return 0, io.EOF
}

// fill reads from source until at least frames whole frames are pending or
// the source is exhausted.
func (sr *speedReader) fill(frames int) {
	const chunk = 4096
	for !sr.eof && len(sr.pending)/sr.frameSize < frames {
		if cap(sr.tmp) < chunk*sr.frameSize {
			sr.tmp = make([]byte, chunk*sr.frameSize)
		}
		n, err := sr.source.Read(sr.tmp[:chunk*sr.frameSize])
		sr.pending = append(sr.pending, sr.tmp[:n]...)
		if err != nil {
			sr.eof = true
			if err != io.EOF {
				sr.err = err
			}
		}
		if n == 0 && err == nil {
			// Stalled source; try again on the next Read.
			break
		}
	}
}

func (sr *speedReader) setSpeed(speed float64) {
	if !(speed > 0) {
		return
	}
	sr.mu.Lock()
	sr.speed = speed
	sr.mu.Unlock()
}

func (sr *speedReader) currentSpeed() float64 {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.speed
}

package audiobuf

import (
	"encoding/binary"
	"fmt"
	"io"
)

const bytesPerSample = 2

// Reader streams a Buffer as signed 16-bit little-endian PCM. A trailing
// partial frame is padded with silence.
type Reader struct {
	buf    *Buffer
	pos    int64
	length int64
}

// NewReader returns a reader positioned at the first sample. Every call
// returns an independent reader, so a buffer can be replayed any number of
// times.
func (b *Buffer) NewReader() *Reader {
	return &Reader{
		buf:    b,
		length: int64(b.Frames()*b.channels) * bytesPerSample,
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= r.length {
		return 0, io.EOF
	}

	written := 0
	var tmp [bytesPerSample]byte
	for written < len(p) && r.pos < r.length {
		binary.LittleEndian.PutUint16(tmp[:], uint16(r.sampleAt(r.pos/bytesPerSample)))
		// Seek may leave pos in the middle of a sample.
		n := copy(p[written:], tmp[r.pos%bytesPerSample:])
		written += n
		r.pos += int64(n)
	}

	if r.pos >= r.length {
		return written, io.EOF
	}
	return written, nil
}

func (r *Reader) sampleAt(idx int64) int16 {
	if idx < int64(len(r.buf.samples)) {
		return Quantize(r.buf.samples[idx])
	}
	return 0
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = r.pos + offset
	case io.SeekEnd:
		next = r.length + offset
	default:
		return r.pos, fmt.Errorf("invalid seek whence: %d", whence)
	}
	if next < 0 {
		next = 0
	}
	if next > r.length {
		next = r.length
	}
	r.pos = next
	return next, nil
}

// Length returns the PCM size in bytes.
func (r *Reader) Length() int64 { return r.length }

func (r *Reader) SampleRate() int   { return r.buf.sampleRate }
func (r *Reader) ChannelCount() int { return r.buf.channels }

package export

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/olivier-w/ynok/internal/audiobuf"
)

const (
	bitDepth     = 16
	wavFormatPCM = 1
	chunkSamples = 8192
)

// WAV writes buf as a 16-bit signed PCM WAV file whose header declares the
// buffer's own channel count and sample rate.
func WAV(buf *audiobuf.Buffer, path string) error {
	if err := checkBuffer(buf); err != nil {
		return err
	}
	return writeAtomic(path, func(w io.WriteSeeker) error {
		return encodeWAV(w, buf)
	})
}

func encodeWAV(w io.WriteSeeker, buf *audiobuf.Buffer) error {
	enc := wav.NewEncoder(w, buf.SampleRate(), bitDepth, buf.Channels(), wavFormatPCM)
	format := &audio.Format{
		NumChannels: buf.Channels(),
		SampleRate:  buf.SampleRate(),
	}

	samples := Samples(buf)
	// Chunks stay frame-aligned because chunkSamples is even.
	intBuf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, 0, min(len(samples), chunkSamples)),
		SourceBitDepth: bitDepth,
	}
	for start := 0; start < len(samples); start += chunkSamples {
		end := min(start+chunkSamples, len(samples))
		intBuf.Data = intBuf.Data[:0]
		for _, s := range samples[start:end] {
			intBuf.Data = append(intBuf.Data, int(s))
		}
		if err := enc.Write(intBuf); err != nil {
			return err
		}
	}
	return enc.Close()
}

package export

import (
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/olivier-w/ynok/internal/audiobuf"
)

const flacBlockSize = 4096

// FLAC writes buf as a lossless 16-bit FLAC stream using verbatim subframes.
func FLAC(buf *audiobuf.Buffer, path string) error {
	if err := checkBuffer(buf); err != nil {
		return err
	}
	return writeAtomic(path, func(w io.WriteSeeker) error {
		return encodeFLAC(w, buf)
	})
}

func encodeFLAC(w io.Writer, buf *audiobuf.Buffer) error {
	samples := Samples(buf)
	nch := buf.Channels()
	nframes := len(samples) / nch

	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(buf.SampleRate()),
		NChannels:     uint8(nch),
		BitsPerSample: bitDepth,
		NSamples:      uint64(nframes),
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return err
	}

	channels := frame.ChannelsMono
	if nch == 2 {
		channels = frame.ChannelsLR
	}

	for start, num := 0, uint64(0); start < nframes; start, num = start+flacBlockSize, num+1 {
		n := min(flacBlockSize, nframes-start)
		subframes := make([]*frame.Subframe, nch)
		for c := range nch {
			s := make([]int32, n)
			for i := range n {
				s[i] = int32(samples[(start+i)*nch+c])
			}
			subframes[c] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   s,
				NSamples:  n,
			}
		}
		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(buf.SampleRate()),
				Channels:          channels,
				BitsPerSample:     bitDepth,
				Num:               num,
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(f); err != nil {
			return err
		}
	}
	return enc.Close()
}

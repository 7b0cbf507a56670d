package player

import "io"

// pcmSource is a seekable signed 16-bit little-endian PCM stream.
// *audiobuf.Reader satisfies it.
type pcmSource interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

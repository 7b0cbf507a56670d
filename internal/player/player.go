// Package player plays audio buffers through the system audio device.
package player

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/olivier-w/ynok/internal/audiobuf"
)

// ErrDeviceUnavailable is returned when no audio output can be opened.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// countingReader wraps an io.Reader and tracks bytes read.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// oto allows a single context per process, so every Output shares it.
func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   deviceSampleRate,
			ChannelCount: deviceChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// stream is one queued buffer on its way to the device.
type stream struct {
	player  *oto.Player
	speed   *speedReader
	counter *countingReader
}

// Output owns at most one playing stream at a time.
type Output struct {
	ctx    *oto.Context
	log    *slog.Logger
	mu     sync.Mutex
	cur    *stream
	volume float64
	closed bool
}

// Open initializes the audio device. log may be nil.
func Open(log *slog.Logger) (*Output, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	log.Debug("audio device ready", "rate", deviceSampleRate, "channels", deviceChannels)
	return &Output{ctx: ctx, log: log, volume: 0.8}, nil
}

// Start queues buf from its first sample, replacing anything already queued.
func (o *Output) Start(buf *audiobuf.Buffer, speed float64) error {
	if buf == nil {
		return fmt.Errorf("start: %w", audiobuf.ErrDegenerate)
	}

	res, err := newResampler(buf.NewReader())
	if err != nil {
		return fmt.Errorf("preparing buffer: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrDeviceUnavailable
	}
	o.stopLocked()

	counter := &countingReader{reader: res}
	sr := newSpeedReader(counter, deviceFrameSize, speed)
	p := o.ctx.NewPlayer(sr)
	p.SetVolume(o.volume)
	p.Play()

	o.cur = &stream{player: p, speed: sr, counter: counter}
	o.log.Debug("stream started",
		"frames", buf.Frames(),
		"rate", buf.SampleRate(),
		"channels", buf.Channels(),
		"speed", speed,
	)
	return nil
}

// Stop discards the current stream. It is safe to call when nothing plays.
func (o *Output) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()
}

func (o *Output) stopLocked() {
	if o.cur == nil {
		return
	}
	o.cur.player.Pause()
	if err := o.cur.player.Close(); err != nil {
		o.log.Debug("closing stream", "error", err)
	}
	o.cur = nil
}

// Busy reports whether a stream is queued and has not drained yet.
func (o *Output) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cur != nil && o.cur.player.IsPlaying()
}

// SetSpeed changes how fast the current stream is consumed.
func (o *Output) SetSpeed(speed float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur != nil {
		o.cur.speed.setSpeed(speed)
	}
}

// Position estimates how far into the buffer the device is, in buffer time.
// Bytes the speed reader holds back and bytes oto has pulled but not yet
// played are subtracted.
func (o *Output) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur == nil {
		return 0
	}
	consumed := o.cur.counter.Pos()
	buffered := float64(o.cur.player.BufferedSize()) * o.cur.speed.currentSpeed()
	pos := float64(consumed) - float64(o.cur.speed.pendingBytes()) - buffered
	if pos < 0 {
		pos = 0
	}
	secs := pos / float64(deviceSampleRate*deviceFrameSize)
	return time.Duration(secs * float64(time.Second))
}

// Volume returns current volume (0.0 to 1.0).
func (o *Output) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (o *Output) SetVolume(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	o.volume = v
	if o.cur != nil {
		o.cur.player.SetVolume(v)
	}
}

// Close stops playback. The shared device context stays alive.
func (o *Output) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.stopLocked()
}

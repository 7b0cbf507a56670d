// Package transport implements the play/stop state machine, speed control
// and the visual playhead for a single active audio buffer.
package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/olivier-w/ynok/internal/audiobuf"
	"github.com/olivier-w/ynok/internal/playhead"
	"github.com/olivier-w/ynok/internal/util"
)

// ErrNoBuffer is returned by Toggle when no playable buffer is loaded.
var ErrNoBuffer = errors.New("no audio buffer loaded")

// Device is the audio output driven by a Transport. *player.Output
// implements it.
type Device interface {
	Start(buf *audiobuf.Buffer, speed float64) error
	Stop()
	Busy() bool
	SetSpeed(speed float64)
	Position() time.Duration
}

// State is the transport state.
type State uint8

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Transport owns the active buffer. All mutation goes through its methods and
// is expected to happen from a single goroutine (the UI loop).
type Transport struct {
	dev   Device
	opts  Options
	log   *slog.Logger
	buf   *audiobuf.Buffer
	state State
	speed float64
	head  playhead.Playhead
}

// New creates an idle transport. dev may be nil when no audio device is
// available; playback then only drives the playhead.
func New(dev Device, opts Options) *Transport {
	opts = opts.withDefaults()
	return &Transport{
		dev:   dev,
		opts:  opts,
		log:   opts.Logger,
		speed: math.Max(opts.MinSpeed, math.Min(opts.MaxSpeed, 1)),
		head:  playhead.New(1, 0),
	}
}

// Load stops whatever is playing and makes buf the active buffer. A nil buf
// clears the slot.
func (t *Transport) Load(buf *audiobuf.Buffer) {
	t.Stop()
	t.buf = buf
	if buf != nil {
		t.head.SetDuration(buf.Seconds())
		t.log.Debug("buffer loaded",
			"samples", buf.Len(),
			"rate", buf.SampleRate(),
			"channels", buf.Channels(),
			"duration", buf.Duration(),
		)
	} else {
		t.head.SetDuration(0)
	}
}

// Toggle starts playback from the beginning when idle and stops it when
// playing.
func (t *Transport) Toggle() error {
	if t.state == Playing {
		t.Stop()
		return nil
	}
	return t.Play()
}

// Play starts the active buffer from sample 0. Playing while already playing
// restarts.
func (t *Transport) Play() error {
	if t.buf == nil {
		return ErrNoBuffer
	}
	if t.dev != nil {
		// A buffer may still be draining after the playhead ended it.
		if t.dev.Busy() {
			t.dev.Stop()
		}
		if err := t.dev.Start(t.buf, t.deviceSpeed()); err != nil {
			return fmt.Errorf("starting playback: %w", err)
		}
	}
	t.state = Playing
	t.head.Reset()
	t.log.Debug("playback started", "speed", t.speed)
	return nil
}

// Stop halts output and rewinds the playhead. Calling it while idle is a
// no-op apart from the rewind.
func (t *Transport) Stop() {
	if t.dev != nil {
		t.dev.Stop()
	}
	if t.state == Playing {
		t.log.Debug("playback stopped", "position", t.head.Position())
	}
	t.state = Idle
	t.head.Reset()
}

// SetSpeed sets the speed multiplier. Values outside the configured range,
// or not finite, are ignored and false is returned.
func (t *Transport) SetSpeed(m float64) bool {
	if math.IsNaN(m) || m < t.opts.MinSpeed || m > t.opts.MaxSpeed {
		return false
	}
	t.speed = m
	if t.dev != nil && t.opts.SpeedPolicy == PitchSpeed {
		t.dev.SetSpeed(m)
	}
	return true
}

// AdjustSpeed changes the speed by delta, clamping to the configured range.
func (t *Transport) AdjustSpeed(delta float64) {
	m := t.speed + delta
	m = math.Max(t.opts.MinSpeed, math.Min(t.opts.MaxSpeed, m))
	// Keep the display tidy after repeated float steps.
	m = math.Round(m*100) / 100
	t.SetSpeed(m)
}

// CycleSpeed steps through the speed presets. A speed that is not a preset
// goes back to the first one.
func (t *Transport) CycleSpeed() {
	presets := t.opts.SpeedPresets
	next := presets[0]
	for i, p := range presets {
		if p == t.speed {
			next = presets[(i+1)%len(presets)]
			break
		}
	}
	t.SetSpeed(next)
}

func (t *Transport) deviceSpeed() float64 {
	if t.opts.SpeedPolicy == PitchSpeed {
		return t.speed
	}
	return 1
}

// SetWidth sets the width the playhead travels across. Mid-playback the
// played fraction is kept, so the end time still matches the buffer.
func (t *Transport) SetWidth(w float64) {
	t.head.SetWidth(w)
}

// Tick advances the playhead by dt seconds and applies the end-of-playback
// policy. It returns true when playback finished during this tick.
func (t *Transport) Tick(dt float64) bool {
	if t.state != Playing {
		return false
	}
	reached := t.head.Advance(dt, t.speed)

	if t.opts.EndPolicy == EndOnDrain && t.dev != nil {
		if t.dev.Busy() {
			return false
		}
		t.log.Debug("device drained", "position", t.head.Position())
		t.finish()
		return true
	}

	if reached {
		t.log.Debug("playhead reached edge", "width", t.head.Width())
		t.finish()
		return true
	}
	return false
}

func (t *Transport) finish() {
	if t.dev != nil {
		t.dev.Stop()
	}
	t.state = Idle
	t.head.Reset()
}

func (t *Transport) State() State             { return t.state }
func (t *Transport) Playing() bool            { return t.state == Playing }
func (t *Transport) Speed() float64           { return t.speed }
func (t *Transport) Buffer() *audiobuf.Buffer { return t.buf }
func (t *Transport) Position() float64        { return t.head.Position() }
func (t *Transport) Width() float64           { return t.head.Width() }
func (t *Transport) Fraction() float64        { return t.head.Fraction() }
func (t *Transport) PixelsPerSecond() float64 { return t.head.Rate() }
func (t *Transport) HasDevice() bool          { return t.dev != nil }
func (t *Transport) Options() Options         { return t.opts }

// Elapsed converts the playhead position back into buffer time.
func (t *Transport) Elapsed() time.Duration {
	if t.buf == nil {
		return 0
	}
	return time.Duration(t.head.Fraction() * t.buf.Seconds() * float64(time.Second))
}

// DevicePosition returns the device cursor estimate, or 0 without a device.
func (t *Transport) DevicePosition() time.Duration {
	if t.dev == nil || t.state != Playing {
		return 0
	}
	return t.dev.Position()
}

// Status renders a one-line transport summary.
func (t *Transport) Status() string {
	icon := "■"
	if t.state == Playing {
		icon = "▶"
	}
	s := fmt.Sprintf("%s %s  speed %.2fx", icon, t.state, t.speed)
	if t.buf != nil {
		s += fmt.Sprintf("  %s / %s", util.FormatClock(t.Elapsed()), util.FormatClock(t.buf.Duration()))
	}
	if t.dev == nil {
		s += "  (no audio device)"
	}
	return s
}

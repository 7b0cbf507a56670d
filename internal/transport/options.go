package transport

import (
	"fmt"
	"log/slog"
	"strings"
)

// SpeedPolicy decides what the speed multiplier affects.
type SpeedPolicy uint8

const (
	// PitchSpeed changes the rate the device consumes the buffer, so pitch
	// and playhead speed move together.
	PitchSpeed SpeedPolicy = iota
	// VisualSpeed plays audio at its native rate and only scales the
	// playhead.
	VisualSpeed
)

func (p SpeedPolicy) String() string {
	if p == VisualSpeed {
		return "visual"
	}
	return "pitch"
}

// ParseSpeedPolicy parses "pitch" or "visual".
func ParseSpeedPolicy(s string) (SpeedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pitch", "":
		return PitchSpeed, nil
	case "visual":
		return VisualSpeed, nil
	default:
		return PitchSpeed, fmt.Errorf("unknown speed policy %q (want pitch or visual)", s)
	}
}

// EndPolicy decides which clock ends playback.
type EndPolicy uint8

const (
	// EndOnPlayhead ends playback when the integrated playhead reaches the
	// right edge, and stops the device at that moment.
	EndOnPlayhead EndPolicy = iota
	// EndOnDrain ends playback when the device has played the whole buffer.
	// The playhead waits at the edge if it gets there first.
	EndOnDrain
)

func (p EndPolicy) String() string {
	if p == EndOnDrain {
		return "drain"
	}
	return "playhead"
}

// ParseEndPolicy parses "playhead" or "drain".
func ParseEndPolicy(s string) (EndPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "playhead", "":
		return EndOnPlayhead, nil
	case "drain", "device":
		return EndOnDrain, nil
	default:
		return EndOnPlayhead, fmt.Errorf("unknown end policy %q (want playhead or drain)", s)
	}
}

// Options configures a Transport. Zero values get defaults.
type Options struct {
	MinSpeed     float64
	MaxSpeed     float64
	SpeedPresets []float64
	SpeedPolicy  SpeedPolicy
	EndPolicy    EndPolicy
	Logger       *slog.Logger
}

const (
	DefaultMinSpeed = 0.25
	DefaultMaxSpeed = 4.0
)

// DefaultSpeedPresets is the cycle used by CycleSpeed.
var DefaultSpeedPresets = []float64{1, 0.5, 0.25}

func (o Options) withDefaults() Options {
	if !(o.MinSpeed > 0) {
		o.MinSpeed = DefaultMinSpeed
	}
	if !(o.MaxSpeed >= o.MinSpeed) {
		o.MaxSpeed = DefaultMaxSpeed
	}
	if o.MaxSpeed < o.MinSpeed {
		o.MinSpeed, o.MaxSpeed = DefaultMinSpeed, DefaultMaxSpeed
	}
	var presets []float64
	for _, p := range o.SpeedPresets {
		if p >= o.MinSpeed && p <= o.MaxSpeed {
			presets = append(presets, p)
		}
	}
	if len(presets) == 0 {
		presets = append(presets, DefaultSpeedPresets...)
	}
	o.SpeedPresets = presets
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

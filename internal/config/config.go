// Package config holds the command-line settings and compiled-in presets.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"slices"

	"github.com/olivier-w/ynok/internal/transcode"
	"github.com/olivier-w/ynok/internal/transport"
)

// DebugEnv names the environment variable that enables debug logging when
// -debug-log is not given. Its value is the log file path.
const DebugEnv = "YNOK_DEBUG"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// SampleRates are the presets cycled by the r key.
var SampleRates = []int{11025, 22050, 44100, 88200}

// Config is the full set of user-tunable settings.
type Config struct {
	SampleRate  int
	Channels    int
	Mode        string
	SpeedPolicy string
	EndPolicy   string
	Out         string
	DebugLog    string
}

// Default returns the settings used when no flags are given.
func Default() Config {
	return Config{
		SampleRate:  88200,
		Channels:    1,
		Mode:        transcode.Bipolar.String(),
		SpeedPolicy: transport.PitchSpeed.String(),
		EndPolicy:   transport.EndOnPlayhead.String(),
	}
}

// Bind registers the flags on fs, using the current values as defaults.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.SampleRate, "rate", c.SampleRate, "sample rate in Hz")
	fs.IntVar(&c.Channels, "channels", c.Channels, "channel count (1 or 2)")
	fs.StringVar(&c.Mode, "mode", c.Mode, "normalization mode: bipolar or unipolar")
	fs.StringVar(&c.SpeedPolicy, "speed-policy", c.SpeedPolicy, "what speed changes: pitch (audio and playhead) or visual (playhead only)")
	fs.StringVar(&c.EndPolicy, "end-policy", c.EndPolicy, "what ends playback: playhead or drain")
	fs.StringVar(&c.Out, "out", c.Out, "default export filename")
	fs.StringVar(&c.DebugLog, "debug-log", c.DebugLog, "write debug logs to this file (also $"+DebugEnv+")")
}

// ApplyEnv fills settings left empty by flags from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.DebugLog == "" {
		c.DebugLog = getenv(DebugEnv)
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d must be positive", ErrInvalid, c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("%w: channels %d must be 1 or 2", ErrInvalid, c.Channels)
	}
	if _, err := c.TranscodeMode(); err != nil {
		return err
	}
	if _, err := c.TransportOptions(nil); err != nil {
		return err
	}
	return nil
}

// TranscodeMode parses Mode.
func (c Config) TranscodeMode() (transcode.Mode, error) {
	m, err := transcode.ParseMode(c.Mode)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return m, nil
}

// TransportOptions parses the policy settings into transport options.
func (c Config) TransportOptions(log *slog.Logger) (transport.Options, error) {
	sp, err := transport.ParseSpeedPolicy(c.SpeedPolicy)
	if err != nil {
		return transport.Options{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	ep, err := transport.ParseEndPolicy(c.EndPolicy)
	if err != nil {
		return transport.Options{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return transport.Options{
		SpeedPolicy: sp,
		EndPolicy:   ep,
		Logger:      log,
	}, nil
}

// NextSampleRate returns the preset after rate, wrapping around. A rate that
// is not a preset moves to the first one.
func NextSampleRate(rate int) int {
	i := slices.Index(SampleRates, rate)
	return SampleRates[(i+1)%len(SampleRates)]
}

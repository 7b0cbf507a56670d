// Package session owns the loaded image, the transcoding parameters and the
// transport that plays the resulting buffer.
package session

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/olivier-w/ynok/internal/audiobuf"
	"github.com/olivier-w/ynok/internal/config"
	"github.com/olivier-w/ynok/internal/export"
	"github.com/olivier-w/ynok/internal/media"
	"github.com/olivier-w/ynok/internal/transcode"
	"github.com/olivier-w/ynok/internal/transport"
	"github.com/olivier-w/ynok/internal/util"
)

// Params are the inputs that, together with the grid, determine the buffer.
type Params struct {
	Mode       transcode.Mode
	Channels   int
	SampleRate int
}

// Session ties an image to the transport. It is only mutated from the UI's
// update loop.
type Session struct {
	log    *slog.Logger
	tr     *transport.Transport
	path   string
	grid   *media.Grid
	params Params
}

// New creates a session around tr. No image is loaded yet.
func New(tr *transport.Transport, params Params, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Session{log: log, tr: tr, params: params}
}

// Open loads the image at path and swaps in its buffer. On failure the
// current image and buffer stay in place.
func (s *Session) Open(path string) error {
	grid, err := media.Load(path)
	if err != nil {
		s.log.Debug("open failed", "path", path, "err", err)
		return err
	}
	return s.SetGrid(grid, path)
}

// SetGrid replaces the image with an already decoded grid.
func (s *Session) SetGrid(grid *media.Grid, path string) error {
	return s.rebuild(grid, path, s.params)
}

// SetMode rebuilds the buffer with a different normalization mode.
func (s *Session) SetMode(m transcode.Mode) error {
	p := s.params
	p.Mode = m
	return s.rebuild(s.grid, s.path, p)
}

// ToggleMode switches between unipolar and bipolar.
func (s *Session) ToggleMode() error {
	return s.SetMode(s.params.Mode.Next())
}

// SetChannels rebuilds the buffer with n interleaved channels.
func (s *Session) SetChannels(n int) error {
	p := s.params
	p.Channels = n
	return s.rebuild(s.grid, s.path, p)
}

// CycleChannels switches between mono and stereo.
func (s *Session) CycleChannels() error {
	if s.params.Channels == 2 {
		return s.SetChannels(1)
	}
	return s.SetChannels(2)
}

// SetSampleRate rebuilds the buffer at rate Hz.
func (s *Session) SetSampleRate(rate int) error {
	p := s.params
	p.SampleRate = rate
	return s.rebuild(s.grid, s.path, p)
}

// CycleSampleRate moves to the next sample rate preset.
func (s *Session) CycleSampleRate() error {
	return s.SetSampleRate(config.NextSampleRate(s.params.SampleRate))
}

// rebuild derives a new buffer and commits it together with its inputs.
// Without a grid only the parameters are validated and stored.
func (s *Session) rebuild(grid *media.Grid, path string, p Params) error {
	if grid == nil {
		if p.Channels != 1 && p.Channels != 2 {
			return fmt.Errorf("%w: %d", audiobuf.ErrChannels, p.Channels)
		}
		if p.SampleRate <= 0 {
			return fmt.Errorf("%w: sample rate %d", audiobuf.ErrDegenerate, p.SampleRate)
		}
		s.params = p
		return nil
	}

	buf, err := audiobuf.Build(transcode.Transcode(grid, p.Mode), p.Channels, p.SampleRate)
	if err != nil {
		s.log.Debug("rebuild rejected", "path", path, "err", err)
		return err
	}
	s.tr.Load(buf)
	s.grid = grid
	s.path = path
	s.params = p
	s.log.Debug("buffer built",
		"path", path,
		"mode", p.Mode.String(),
		"channels", p.Channels,
		"rate", p.SampleRate,
		"seconds", buf.Seconds(),
	)
	return nil
}

// Export writes the current buffer to path, as FLAC for .flac and WAV
// otherwise.
func (s *Session) Export(path string) error {
	return s.ExportJob(path)()
}

// ExportJob captures the current buffer and returns a function that writes
// it to path. The buffer is immutable, so the job may run off the UI loop
// while the session moves on.
func (s *Session) ExportJob(path string) func() error {
	buf := s.tr.Buffer()
	log := s.log
	return func() error {
		if err := export.File(buf, path); err != nil {
			log.Debug("export failed", "path", path, "err", err)
			return err
		}
		log.Debug("exported", "path", path)
		return nil
	}
}

// DefaultExportName suggests a filename derived from the image name.
func (s *Session) DefaultExportName() string {
	return export.DefaultName(s.path, ".wav")
}

func (s *Session) Transport() *transport.Transport { return s.tr }
func (s *Session) Grid() *media.Grid               { return s.grid }
func (s *Session) Path() string                    { return s.path }
func (s *Session) Params() Params                  { return s.params }
func (s *Session) Buffer() *audiobuf.Buffer        { return s.tr.Buffer() }

// Title returns the image filename, or "" before the first load.
func (s *Session) Title() string {
	if s.path == "" {
		return ""
	}
	return filepath.Base(s.path)
}

// Describe summarizes the parameters, e.g. "bipolar · mono · 88200 Hz".
func (s *Session) Describe() string {
	ch := "mono"
	if s.params.Channels == 2 {
		ch = "stereo"
	}
	return fmt.Sprintf("%s · %s · %s", s.params.Mode, ch, util.FormatRate(s.params.SampleRate))
}

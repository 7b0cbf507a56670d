package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/olivier-w/ynok/internal/config"
	"github.com/olivier-w/ynok/internal/media"
	"github.com/olivier-w/ynok/internal/queue"
	"github.com/olivier-w/ynok/internal/session"
	"github.com/olivier-w/ynok/internal/transport"
	"github.com/olivier-w/ynok/internal/ui"
)

// app carries what every playback model is built from.
type app struct {
	cfg    config.Config
	dev    transport.Device // nil without an audio device
	volume ui.VolumeControl // nil without an audio device
	log    *slog.Logger
}

// buildPlaybackModel validates and decodes the image at path and returns a
// player model with the image loaded and its siblings queued.
func (a app) buildPlaybackModel(path string) (ui.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ui.Model{}, err
	}
	if info.IsDir() {
		return ui.Model{}, fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return ui.Model{}, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}

	mode, err := a.cfg.TranscodeMode()
	if err != nil {
		return ui.Model{}, err
	}
	opts, err := a.cfg.TransportOptions(a.log)
	if err != nil {
		return ui.Model{}, err
	}

	tr := transport.New(a.dev, opts)
	sess := session.New(tr, session.Params{
		Mode:       mode,
		Channels:   a.cfg.Channels,
		SampleRate: a.cfg.SampleRate,
	}, a.log)
	if err := sess.Open(path); err != nil {
		return ui.Model{}, err
	}

	q, err := queue.Siblings(path)
	if err != nil {
		a.log.Debug("no sibling queue", "path", path, "err", err)
		q = nil
	}

	return ui.New(ui.Options{
		Session:    sess,
		Queue:      q,
		Volume:     a.volume,
		ExportName: a.cfg.Out,
		Logger:     a.log,
	}), nil
}

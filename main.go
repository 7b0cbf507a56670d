package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/ynok/internal/config"
	"github.com/olivier-w/ynok/internal/media"
	"github.com/olivier-w/ynok/internal/player"
	"github.com/olivier-w/ynok/internal/transport"
	"github.com/olivier-w/ynok/internal/ui"
)

func main() {
	cfg := config.Default()
	fs := flag.NewFlagSet("ynok", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ynok [flags] [image]\n\n")
		fmt.Fprintf(fs.Output(), "Plays an image as sound: every pixel's brightness becomes one sample.\n")
		fmt.Fprintf(fs.Output(), "Without an image, pick one from the current directory (%s).\n\n", media.SupportedExtsList())
		fs.PrintDefaults()
	}
	cfg.Bind(fs)
	_ = fs.Parse(os.Args[1:])
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log, closeLog, err := setupLogging(cfg.DebugLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	log.Info("starting ynok", "args", os.Args[1:])

	a := app{cfg: cfg, log: log}
	out, err := player.Open(log)
	if err != nil {
		log.Warn("playing silently", "err", err)
		fmt.Fprintf(os.Stderr, "Warning: %v; the playhead will run without sound\n", err)
	} else {
		defer out.Close()
		a.dev = transport.Device(out)
		a.volume = out
	}

	var model tea.Model
	if fs.NArg() == 0 {
		model = newStartupModel(a)
	} else {
		m, err := a.buildPlaybackModel(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		model = m
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging writes debug logs to path when set and discards them
// otherwise. The terminal belongs to the TUI, so logs never go to stderr.
func setupLogging(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := tea.LogToFile(path, "ynok")
	if err != nil {
		return nil, nil, fmt.Errorf("opening debug log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	return logger, func() { _ = f.Close() }, nil
}

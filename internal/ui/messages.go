package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/ynok/internal/media"
)

// frameInterval paces the playhead and visualizers at 30 fps.
const frameInterval = time.Second / 30

// statusLifetime is how long transient status messages stay visible.
const statusLifetime = 5 * time.Second

type tickMsg time.Time

// imageLoadedMsg carries a grid decoded off the update loop. index is the
// queue position it was loaded for, or -1 for a path outside the queue.
type imageLoadedMsg struct {
	path     string
	index    int
	grid     *media.Grid
	err      error
	autoplay bool
}

type exportDoneMsg struct {
	path string
	err  error
}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadImageCmd(path string, index int, autoplay bool) tea.Cmd {
	return func() tea.Msg {
		grid, err := media.Load(path)
		return imageLoadedMsg{path: path, index: index, grid: grid, err: err, autoplay: autoplay}
	}
}

func exportCmd(path string, job func() error) tea.Cmd {
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: job()}
	}
}

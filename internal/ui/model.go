// Package ui is the Bubbletea front end: image view with playhead, transport
// status, visualizers, export prompt and file browser.
package ui

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/ynok/internal/export"
	"github.com/olivier-w/ynok/internal/queue"
	"github.com/olivier-w/ynok/internal/render"
	"github.com/olivier-w/ynok/internal/session"
	"github.com/olivier-w/ynok/internal/transport"
	"github.com/olivier-w/ynok/internal/util"
	"github.com/olivier-w/ynok/internal/visualizer"
)

// speedStep is the +/- nudge.
const speedStep = 0.25

// vizHeight is the number of rows given to the visualizer pane.
const vizHeight = 4

// chromeRows counts the non-image rows of the player view.
const chromeRows = 13 + vizHeight

// VolumeControl is implemented by the audio output.
type VolumeControl interface {
	Volume() float64
	SetVolume(v float64)
}

type viewMode uint8

const (
	viewPlayer viewMode = iota
	viewExport
	viewBrowse
)

// Options wires a Model to the rest of the program.
type Options struct {
	Session    *session.Session
	Queue      *queue.Queue
	Volume     VolumeControl // nil without an audio device
	ExportName string        // default export filename; derived from the image when empty
	Logger     *slog.Logger
}

// Model is the Bubbletea model for the ynok player.
type Model struct {
	sess     *session.Session
	tr       *transport.Transport
	queue    *queue.Queue
	volume   VolumeControl
	log      *slog.Logger
	renderer *render.Renderer
	viz      []visualizer.Visualizer
	vizIdx   int
	progress progress.Model
	input    textinput.Model
	browser  BrowserModel

	mode   viewMode
	repeat RepeatMode
	debug  bool

	width  int
	height int
	imgW   int
	imgH   int

	lastTick time.Time
	fps      float64

	exportName       string
	overwritePending string // path the user was warned about
	exporting        bool
	loading          bool
	quitting         bool

	status     string
	statusErr  bool
	statusTime time.Time
}

// New creates the player model. The session should already hold an image.
func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	p := progress.New(
		progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
		progress.WithoutPercentage(),
	)

	ti := textinput.New()
	ti.Prompt = "export to: "
	ti.CharLimit = 1024
	ti.Width = 60

	m := Model{
		sess:       opts.Session,
		tr:         opts.Session.Transport(),
		queue:      opts.Queue,
		volume:     opts.Volume,
		log:        log,
		renderer:   render.NewRenderer(),
		viz:        visualizer.Modes(),
		progress:   p,
		input:      ti,
		exportName: opts.ExportName,
		width:      80,
		height:     24,
	}
	m.layout()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.SetWindowTitle(windowTitle(m.sess.Title(), false)))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if m.mode == viewBrowse {
			return m.updateBrowser(msg)
		}
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case imageLoadedMsg:
		return m.handleLoaded(msg)

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Export failed: %v", msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("Exported to %s", msg.path), false)
		}
		return m, nil

	case BrowserSelectedMsg:
		m.mode = viewPlayer
		m.loading = true
		return m, loadImageCmd(msg.Path, -1, false)

	case BrowserCancelledMsg:
		m.mode = viewPlayer
		return m, nil
	}

	switch m.mode {
	case viewBrowse:
		return m.updateBrowser(msg)
	case viewExport:
		return m.updateExport(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.tr.Stop()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case " ":
		if err := m.tr.Toggle(); err != nil {
			m.setStatus(err.Error(), true)
		}
		return m, tea.SetWindowTitle(windowTitle(m.sess.Title(), m.tr.Playing()))
	case "s":
		m.tr.CycleSpeed()
	case "+", "=":
		m.tr.AdjustSpeed(speedStep)
	case "-", "_":
		m.tr.AdjustSpeed(-speedStep)
	case "r":
		m.rebuilt(m.sess.CycleSampleRate())
	case "c":
		m.rebuilt(m.sess.CycleChannels())
	case "m":
		m.rebuilt(m.sess.ToggleMode())
	case "up", "k":
		m.adjustVolume(0.05)
	case "down", "j":
		m.adjustVolume(-0.05)
	case "v":
		m.vizIdx = (m.vizIdx + 1) % len(m.viz)
	case "l":
		m.repeat = m.repeat.Next()
	case "d":
		m.debug = !m.debug
		m.layout()
	case "n":
		return m.step(1, false)
	case "p":
		return m.step(-1, false)
	case "o":
		dir := "."
		if path := m.sess.Path(); path != "" {
			dir = filepath.Dir(path)
		}
		m.browser = NewEmbeddedBrowserIn(dir)
		m.mode = viewBrowse
		size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
		next, _ := m.browser.Update(size)
		m.browser = next.(BrowserModel)
		return m, m.browser.Init()
	case "e":
		if m.exporting {
			return m, nil
		}
		if m.tr.Buffer() == nil {
			m.setStatus("Nothing to export", true)
			return m, nil
		}
		m.mode = viewExport
		m.overwritePending = ""
		m.input.SetValue(m.defaultExportName())
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

// rebuilt reports a failed buffer rebuild; on success the transport is
// already idle with the new buffer.
func (m *Model) rebuilt(err error) {
	if err != nil {
		m.setStatus(fmt.Sprintf("Kept previous buffer: %v", err), true)
		return
	}
	m.layout()
}

func (m *Model) adjustVolume(delta float64) {
	if m.volume == nil {
		return
	}
	m.volume.SetVolume(m.volume.Volume() + delta)
}

// step loads the neighbouring image in the queue.
func (m Model) step(dir int, autoplay bool) (Model, tea.Cmd) {
	if m.queue == nil || m.loading {
		return m, nil
	}
	i := m.queue.Step(dir)
	if i < 0 {
		return m, nil
	}
	m.loading = true
	return m, loadImageCmd(m.queue.Item(i).Path, i, autoplay)
}

func (m Model) handleTick(now time.Time) (Model, tea.Cmd) {
	var dt float64
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
		if dt > 0 {
			inst := 1 / dt
			if m.fps == 0 {
				m.fps = inst
			} else {
				m.fps = m.fps*0.9 + inst*0.1
			}
		}
	}
	m.lastTick = now

	ended := m.tr.Tick(dt)

	m.viz[m.vizIdx].Update(visualizer.Frame{
		Buffer:   m.tr.Buffer(),
		Fraction: m.tr.Fraction(),
	}, m.width-4, vizHeight)

	if m.status != "" && now.Sub(m.statusTime) > statusLifetime {
		m.status = ""
	}

	cmds := []tea.Cmd{tickCmd()}
	if ended {
		next, cmd := m.handleEnded()
		m = next
		cmds = append(cmds, cmd, tea.SetWindowTitle(windowTitle(m.sess.Title(), m.tr.Playing())))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleEnded() (Model, tea.Cmd) {
	switch m.repeat {
	case RepeatOne:
		if err := m.tr.Play(); err != nil {
			m.setStatus(err.Error(), true)
		}
	case RepeatAll:
		if m.queue != nil && m.queue.Step(1) >= 0 {
			return m.step(1, true)
		}
		if err := m.tr.Play(); err != nil {
			m.setStatus(err.Error(), true)
		}
	}
	return m, nil
}

func (m Model) handleLoaded(msg imageLoadedMsg) (Model, tea.Cmd) {
	m.loading = false
	if msg.err == nil {
		msg.err = m.sess.SetGrid(msg.grid, msg.path)
	}
	if msg.err != nil {
		if m.queue != nil && msg.index >= 0 {
			m.queue.MarkFailed(msg.index)
		}
		m.setStatus(fmt.Sprintf("Cannot open %s: %v", filepath.Base(msg.path), msg.err), true)
		return m, nil
	}

	switch {
	case msg.index >= 0 && m.queue != nil:
		m.queue.SetCurrentIndex(msg.index)
	default:
		if q, err := queue.Siblings(msg.path); err == nil {
			m.queue = q
		}
	}
	m.layout()
	m.log.Debug("image loaded", "path", msg.path, "width", msg.grid.Width, "height", msg.grid.Height)

	if msg.autoplay {
		if err := m.tr.Play(); err != nil {
			m.setStatus(err.Error(), true)
		}
	}
	return m, tea.SetWindowTitle(windowTitle(m.sess.Title(), m.tr.Playing()))
}

func (m Model) updateExport(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			m.mode = viewPlayer
			m.input.Blur()
			return m, nil
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				path = m.defaultExportName()
			}
			if export.Exists(path) && m.overwritePending != path {
				m.overwritePending = path
				m.setStatus(fmt.Sprintf("%s exists; press enter again to overwrite", path), true)
				return m, nil
			}
			m.mode = viewPlayer
			m.input.Blur()
			m.exporting = true
			m.setStatus("Exporting...", false)
			return m, exportCmd(path, m.sess.ExportJob(path))
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowser(msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.browser.Update(msg)
	if b, ok := next.(BrowserModel); ok {
		m.browser = b
	}
	return m, cmd
}

func (m Model) defaultExportName() string {
	if m.exportName != "" {
		return m.exportName
	}
	return m.sess.DefaultExportName()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
	m.statusTime = time.Now()
	if !m.lastTick.IsZero() {
		m.statusTime = m.lastTick
	}
}

// layout fits the image into the window and hands its width to the playhead.
func (m *Model) layout() {
	w := max(m.width-4, 10)
	m.progress.Width = max(w-16, 10)

	grid := m.sess.Grid()
	if grid == nil {
		m.imgW, m.imgH = 0, 0
		return
	}
	rows := m.height - chromeRows
	if m.debug {
		rows--
	}
	m.imgW, m.imgH = render.Fit(w, max(rows, 2), grid.Width, grid.Height)
	if m.imgW > 0 {
		m.tr.SetWidth(float64(m.imgW))
	}
}

// markerColumn is the image column under the playhead, or -1 when idle.
func (m Model) markerColumn() int {
	if !m.tr.Playing() || m.imgW <= 0 {
		return -1
	}
	col := int(math.Floor(m.tr.Position()))
	return min(max(col, 0), m.imgW-1)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == viewBrowse {
		return m.browser.View()
	}

	w := max(m.width-4, 10)
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("ynok"))
	b.WriteString("  ")
	b.WriteString(titleStyle.Render(m.sess.Title()))
	if m.queue != nil && m.queue.Len() > 1 {
		b.WriteString(paramStyle.Render(fmt.Sprintf("  %d/%d", m.queue.CurrentIndex()+1, m.queue.Len())))
	}
	if m.loading {
		b.WriteString(paramStyle.Render("  loading..."))
	}
	b.WriteString("\n  ")
	b.WriteString(paramStyle.Render(m.sess.Describe()))
	b.WriteString("\n\n")

	if img := m.renderer.Render(m.sess.Grid(), m.imgW, m.imgH, m.markerColumn()); img != "" {
		b.WriteString(indentBlock(img, "  "))
		b.WriteString("\n\n")
	}

	elapsed := m.tr.Elapsed()
	var total time.Duration
	if buf := m.tr.Buffer(); buf != nil {
		total = buf.Duration()
	}
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(util.FormatClock(elapsed)))
	b.WriteString(" ")
	b.WriteString(m.progress.ViewAs(m.tr.Fraction()))
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(util.FormatClock(total)))
	b.WriteString("\n\n")

	if v := m.viz[m.vizIdx].View(); v != "" {
		b.WriteString(indentBlock(v, "  "))
		b.WriteString("\n\n")
	}

	left := m.tr.Status()
	if icon := m.repeat.Icon(); icon != "" {
		left += "  " + icon
	}
	right := m.viz[m.vizIdx].Name()
	if m.volume != nil {
		right = renderVolumePercent(m.volume.Volume()) + "  " + right
	}
	b.WriteString("  ")
	b.WriteString(joinEnds(statusStyle.Render(left), statusStyle.Render(right),
		lipgloss.Width(left), lipgloss.Width(right), w))
	b.WriteString("\n")

	if m.debug {
		b.WriteString("  ")
		b.WriteString(debugStyle.Render(m.debugLine()))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := helpStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("  ")
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	if m.mode == viewExport {
		b.WriteString(m.input.View())
		b.WriteString("\n  ")
		b.WriteString(helpStyle.Render(exportHelpText()))
	} else {
		b.WriteString(helpStyle.Render(helpText(m.queue != nil && m.queue.Len() > 1)))
	}
	b.WriteString("\n")

	view := b.String()
	if pad := m.height - lipgloss.Height(view); pad > 0 {
		view += strings.Repeat("\n", pad)
	}
	return view
}

func (m Model) debugLine() string {
	var size string
	if g := m.sess.Grid(); g != nil {
		size = fmt.Sprintf("%dx%d", g.Width, g.Height)
	}
	return fmt.Sprintf("fps %.1f  image %s  W %d  playhead %.1f px  %.1f px/s  device %s",
		m.fps, size, m.imgW, m.tr.Position(), m.tr.PixelsPerSecond(), util.FormatClock(m.tr.DevicePosition()))
}

func windowTitle(title string, playing bool) string {
	if title == "" {
		return "ynok"
	}
	if playing {
		return "▶ " + title + " · ynok"
	}
	return title + " · ynok"
}

package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/ynok/internal/media"
)

// BrowserResult holds the outcome of the standalone file browser.
type BrowserResult struct {
	Path      string
	Cancelled bool
}

// BrowserSelectedMsg is emitted by an embedded browser when a file is picked.
type BrowserSelectedMsg struct {
	Path string
}

// BrowserCancelledMsg is emitted by an embedded browser on q or esc.
type BrowserCancelledMsg struct{}

type fileItem struct {
	dir  string
	name string
	ext  string
	size int64
}

func (i fileItem) Title() string { return i.name }
func (i fileItem) Description() string {
	return fmt.Sprintf("%s  %s", strings.TrimPrefix(i.ext, "."), formatSize(i.size))
}
func (i fileItem) FilterValue() string { return i.name }
func (i fileItem) Path() string        { return filepath.Join(i.dir, i.name+i.ext) }

// BrowserModel lists the supported images in a directory.
type BrowserModel struct {
	list     list.Model
	embedded bool
	result   *BrowserResult
	err      error
}

// NewBrowser creates a standalone browser over the current directory. It
// quits the program on selection; read the outcome with Result.
func NewBrowser() BrowserModel {
	return newBrowser(".", false)
}

// NewEmbeddedBrowser creates a browser over the current directory that
// reports selection and cancellation as messages instead of quitting.
func NewEmbeddedBrowser() BrowserModel {
	return newBrowser(".", true)
}

// NewEmbeddedBrowserIn is NewEmbeddedBrowser for another directory.
func NewEmbeddedBrowserIn(dir string) BrowserModel {
	return newBrowser(dir, true)
}

func newBrowser(dir string, embedded bool) BrowserModel {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BrowserModel{embedded: embedded, err: fmt.Errorf("cannot read directory: %w", err)}
	}

	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !media.IsSupportedExt(ext) {
			continue
		}
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		items = append(items, fileItem{
			dir:  dir,
			name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			ext:  filepath.Ext(e.Name()),
			size: size,
		})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(items, delegate, 80, 20)
	l.Title = "ynok · pick an image to play"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("image", "images")
	l.Styles.Title = headerStyle

	return BrowserModel{list: l, embedded: embedded}
}

// HasError returns true if the browser could not be initialized.
func (m BrowserModel) HasError() bool {
	return m.err != nil
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

// Empty reports whether no supported images were found.
func (m BrowserModel) Empty() bool {
	return m.err == nil && len(m.list.Items()) == 0
}

// Result returns the browser result after the program finishes.
func (m BrowserModel) Result() BrowserResult {
	if m.result != nil {
		return *m.result
	}
	return BrowserResult{Cancelled: true}
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle("ynok")
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys when filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			item, ok := m.list.SelectedItem().(fileItem)
			if !ok {
				return m, nil
			}
			return m.finish(BrowserResult{Path: item.Path()})
		case "q", "esc", "ctrl+c":
			return m.finish(BrowserResult{Cancelled: true})
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) finish(r BrowserResult) (tea.Model, tea.Cmd) {
	if m.embedded {
		if r.Cancelled {
			return m, func() tea.Msg { return BrowserCancelledMsg{} }
		}
		path := r.Path
		return m, func() tea.Msg { return BrowserSelectedMsg{Path: path} }
	}
	m.result = &r
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m BrowserModel) View() string {
	if m.err != nil {
		return "\n  " + errorStyle.Render(m.err.Error()) + "\n"
	}
	if m.Empty() {
		s := "\n  " + headerStyle.Render("ynok") + "\n\n"
		s += "  " + statusStyle.Render("No images here (supported: "+media.SupportedExtsList()+")") + "\n\n"
		s += "  " + helpStyle.Render("q quit") + "\n"
		return s
	}
	return m.list.View()
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

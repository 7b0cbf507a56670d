package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(hasQueue bool) string {
	s := "space play/stop  s speed  +/- nudge  r rate  c channels  m mode  ↑/↓ volume  v viz  l loop"
	if hasQueue {
		s += "  n/p image"
	}
	s += "  o open  e export  d debug  q quit"
	return s
}

func exportHelpText() string {
	return "enter export  esc cancel  .flac for lossless"
}

package ui

import (
	"fmt"
	"strings"
)

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

// joinEnds places left and right on one line of width w, right-aligned.
func joinEnds(left, right string, leftLen, rightLen, w int) string {
	gap := max(w-leftLen-rightLen, 2)
	return left + spaces(gap) + right
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}

func indentBlock(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

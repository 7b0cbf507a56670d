package render

import (
	"strings"
	"testing"
)

func TestPenSkipsRepeatedColor(t *testing.T) {
	p := Pen{mode: colorTrue}
	var sb strings.Builder
	red := RGB{R: 255}
	p.Set(&sb, red)
	p.Set(&sb, red)
	p.Set(&sb, RGB{G: 255})
	p.Reset(&sb)
	p.Reset(&sb)

	want := "\x1b[38;2;255;0;0m\x1b[38;2;0;255;0m" + ansiReset
	if got := sb.String(); got != want {
		t.Fatalf("pen output = %q, want %q", got, want)
	}
}

func TestPenWritesNothingWithoutColor(t *testing.T) {
	p := Pen{mode: colorOff}
	var sb strings.Builder
	p.Set(&sb, RGB{R: 10, G: 20, B: 30})
	p.Reset(&sb)
	if sb.Len() != 0 {
		t.Fatalf("pen wrote %q with colors off", sb.String())
	}
}

func TestPenANSI16UsesForegroundRange(t *testing.T) {
	p := Pen{mode: colorANSI16}
	var sb strings.Builder
	p.Set(&sb, RGB{R: 205, G: 49, B: 49})
	if got := sb.String(); got != "\x1b[31m" {
		t.Fatalf("ansi16 red = %q, want \\x1b[31m", got)
	}
}

func TestRGBLerpEnds(t *testing.T) {
	a, b := RGB{R: 0, G: 100, B: 200}, RGB{R: 200, G: 100, B: 0}
	if a.Lerp(b, 0) != a || a.Lerp(b, 1) != b {
		t.Fatal("Lerp should return the endpoints at 0 and 1")
	}
	if got := a.Lerp(b, 0.5); got != (RGB{R: 100, G: 100, B: 100}) {
		t.Fatalf("Lerp(0.5) = %+v", got)
	}
}

package render

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// ASCII brightness ramp from darkest to brightest.
const asciiRamp = " .:-=+*#%@"

// colorMode describes how colors are rendered.
type colorMode uint8

const (
	colorOff     colorMode = iota // NO_COLOR or dumb terminal
	colorANSI16                   // basic 16-color
	colorANSI256                  // 256-color
	colorTrue                     // 24-bit truecolor
)

var (
	detectOnce sync.Once
	termColor  colorMode
)

// detectColorMode checks terminal capabilities once.
func detectColorMode() colorMode {
	detectOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			termColor = colorOff
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		ct := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
			termColor = colorTrue
		case strings.Contains(term, "256color"):
			termColor = colorANSI256
		case term == "dumb":
			termColor = colorOff
		case term == "" && runtime.GOOS == "windows":
			termColor = colorANSI16
		case term == "":
			termColor = colorOff
		default:
			termColor = colorANSI16
		}
	})
	return termColor
}

type rgb struct{ r, g, b uint8 }

// brightness is the plain channel mean, the same measure the transcoder
// turns into sample values.
func (c rgb) brightness() uint8 {
	return uint8((int(c.r) + int(c.g) + int(c.b)) / 3)
}

func (c rgb) blend(o rgb, t float64) rgb {
	mix := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t) }
	return rgb{mix(c.r, o.r), mix(c.g, o.g), mix(c.b, o.b)}
}

// brightnessChar maps a 0-255 brightness to an ASCII character.
func brightnessChar(v uint8) byte {
	return asciiRamp[int(v)*(len(asciiRamp)-1)/255]
}

// colorSeq returns the escape selecting c as foreground (base 38) or
// background (base 48). Returns "" when colors are off.
func colorSeq(mode colorMode, base int, c rgb) string {
	switch mode {
	case colorTrue:
		return fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", base, c.r, c.g, c.b)
	case colorANSI256:
		idx := 16 + 36*(int(c.r)*5/255) + 6*(int(c.g)*5/255) + int(c.b)*5/255
		return fmt.Sprintf("\x1b[%d;5;%dm", base, idx)
	case colorANSI16:
		best := nearestANSI16(c)
		// 30/40 for the normal range, 90/100 for the bright range.
		code := base - 8 + best
		if best >= 8 {
			code = base + 52 + best - 8
		}
		return fmt.Sprintf("\x1b[%dm", code)
	default:
		return ""
	}
}

func nearestANSI16(c rgb) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, p := range ansi16Palette {
		dr := int(c.r) - int(p.r)
		dg := int(c.g) - int(p.g)
		db := int(c.b) - int(p.b)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

const ansiReset = "\x1b[0m"

var ansi16Palette = [16]rgb{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}

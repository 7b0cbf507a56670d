package util

import (
	"fmt"
	"time"
)

// FormatClock renders a duration as m:ss.cc. Generated buffers are often
// shorter than a second, so hundredths are always shown.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, cs/100%60, cs%100)
}

// FormatRate renders a sample rate in Hz, or kHz when it divides evenly.
func FormatRate(hz int) string {
	if hz >= 1000 && hz%1000 == 0 {
		return fmt.Sprintf("%d kHz", hz/1000)
	}
	return fmt.Sprintf("%d Hz", hz)
}

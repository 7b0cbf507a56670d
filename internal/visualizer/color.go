package visualizer

import "github.com/olivier-w/ynok/internal/render"

var (
	markerColor = render.RGB{R: 255, G: 252, B: 210}
	axisColor   = render.RGB{R: 70, G: 74, B: 90}
)

// heatStops run blue, cyan, green, yellow and red.
var heatStops = [...]render.RGB{
	{R: 16, G: 25, B: 70},
	{R: 0, G: 174, B: 255},
	{R: 20, G: 255, B: 161},
	{R: 255, G: 230, B: 92},
	{R: 255, G: 80, B: 60},
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}

// heatColor maps a level in [0, 1] onto the heat stops.
func heatColor(t float64) render.RGB {
	t = clamp01(t) * float64(len(heatStops)-1)
	i := int(t)
	if i >= len(heatStops)-1 {
		return heatStops[len(heatStops)-1]
	}
	return heatStops[i].Lerp(heatStops[i+1], t-float64(i))
}

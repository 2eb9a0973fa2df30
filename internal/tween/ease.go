package tween

import "math"

// Ease maps normalized time t in [0,1] to interpolation progress.
type Ease func(t float64) float64

// Linear progresses at constant speed.
func Linear(t float64) float64 {
	return t
}

// InOutQuad accelerates for the first half and decelerates for the second.
func InOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

// OutCubic starts fast and decelerates.
func OutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// ByName resolves an easing by its config name. Unknown names return Linear
// and false.
func ByName(name string) (Ease, bool) {
	switch name {
	case "", "linear":
		return Linear, true
	case "in_out_quad":
		return InOutQuad, true
	case "out_cubic":
		return OutCubic, true
	default:
		return Linear, false
	}
}

package vision

import "math"

// rgbToLab converts sRGB to CIE L*a*b* (D65) and returns perceptual
// lightness L and the red-green axis a. Relative Lab thresholds tolerate
// uneven illumination far better than raw RGB ones.
func rgbToLab(r8, g8, b8 uint8) (l, a float64) {
	r := srgbToLinear(float64(r8) / 255)
	g := srgbToLinear(float64(g8) / 255)
	b := srgbToLinear(float64(b8) / 255)

	x := (r*0.4124564 + g*0.3575761 + b*0.1804375) / 0.95047
	y := r*0.2126729 + g*0.7151522 + b*0.0721750
	z := (r*0.0193339 + g*0.1191920 + b*0.9503041) / 1.08883

	fx := labF(x)
	fy := labF(y)

	l = 116*fy - 16
	a = 500 * (fx - fy)
	_ = z
	return l, a
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

// lumaOf is the Rec.601 luma used by the brightness-band heuristics.
func lumaOf(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

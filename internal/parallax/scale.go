package parallax

import "math"

// Scale maps an item's displacement below the shrink line to a scale factor.
//
// Items at or above the line (displacement <= 0) are full size. Between the
// line and normalHeight below it the scale falls linearly to minScale, and
// anything further down stays at minScale.
func Scale(displacement, normalHeight int, minScale float64) float64 {
	switch {
	case displacement > normalHeight:
		return minScale
	case displacement > 0:
		delta := float64(normalHeight-displacement) / float64(normalHeight)
		return minScale + delta*(1-minScale)
	default:
		return 1
	}
}

// OverlayAlpha returns the darkening alpha for an item drawn at scale.
// A fully shrunk item gets maxAlpha; the value reaches zero before the item
// is fully expanded and is clamped there.
func OverlayAlpha(scale, minScale float64, maxAlpha int) int {
	if minScale <= 0 {
		return 0
	}
	ceiling := float64(maxAlpha)
	alpha := int(math.Round(ceiling - ceiling/minScale*(scale-minScale)))
	if alpha < 0 {
		return 0
	}
	if alpha > maxAlpha {
		return maxAlpha
	}
	return alpha
}

package parallax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScale(t *testing.T) {
	tests := []struct {
		name         string
		displacement int
		normalHeight int
		minScale     float64
		want         float64
	}{
		{"above shrink line", -300, 600, 0.5, 1},
		{"at shrink line", 0, 600, 0.5, 1},
		{"halfway down", 300, 600, 0.5, 0.75},
		{"at normal height", 600, 600, 0.5, 0.5},
		{"past normal height", 900, 600, 0.5, 0.5},
		{"zero normal height", 10, 0, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Scale(tt.displacement, tt.normalHeight, tt.minScale), 1e-9)
		})
	}
}

func TestScaleMonotonicAndBounded(t *testing.T) {
	for _, minScale := range []float64{0.1, 0.5, 0.9} {
		prev := Scale(-1000, 600, minScale)
		for d := -1000; d <= 2000; d += 7 {
			got := Scale(d, 600, minScale)
			assert.LessOrEqual(t, got, prev, "displacement %d", d)
			assert.GreaterOrEqual(t, got, minScale)
			assert.LessOrEqual(t, got, 1.0)
			prev = got
		}
	}
}

func TestOverlayAlpha(t *testing.T) {
	assert.Equal(t, 150, OverlayAlpha(0.5, 0.5, 150))
	assert.Equal(t, 0, OverlayAlpha(1, 0.5, 150))
	assert.Equal(t, 75, OverlayAlpha(0.75, 0.5, 150))
	assert.Equal(t, 0, OverlayAlpha(0.9, 0.3, 150), "negative alpha clamps to zero")
	assert.Equal(t, 0, OverlayAlpha(0.5, 0, 150))
}

func TestOverlayAlphaBounded(t *testing.T) {
	for _, minScale := range []float64{0.2, 0.5, 0.8} {
		for d := -100; d <= 800; d += 5 {
			alpha := OverlayAlpha(Scale(d, 600, minScale), minScale, 150)
			assert.GreaterOrEqual(t, alpha, 0)
			assert.LessOrEqual(t, alpha, 150)
		}
	}
}

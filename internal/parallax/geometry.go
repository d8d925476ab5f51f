package parallax

// Geometry holds the viewport height and the item sizes derived from it.
type Geometry struct {
	ViewportHeight int
	MaxItemHeight  int
	MinItemHeight  int
	SentinelHeight int
	MinScaleFactor float64

	fullFraction      float64
	collapsedFraction float64
}

// NewGeometry returns an unestablished geometry using the given fractions.
func NewGeometry(fullFraction, collapsedFraction float64) Geometry {
	return Geometry{fullFraction: fullFraction, collapsedFraction: collapsedFraction}
}

// Establish derives item sizes from height. Measurements that are not
// positive or not larger than the current height are ignored, so partial
// measurements taken while the host settles never shrink the geometry.
// It reports whether the geometry changed.
func (g *Geometry) Establish(height int) bool {
	if height <= 0 || height <= g.ViewportHeight {
		return false
	}

	g.ViewportHeight = height
	g.MaxItemHeight = int(float64(height) * g.fullFraction)
	g.MinItemHeight = int(float64(height) * g.collapsedFraction)
	g.SentinelHeight = height - g.MaxItemHeight
	if g.MaxItemHeight > 0 {
		g.MinScaleFactor = float64(g.MinItemHeight) / float64(g.MaxItemHeight)
	} else {
		g.MinScaleFactor = 0
	}
	return true
}

// Valid reports whether layout can run. Heights so small that an item
// rounds down to zero pixels count as invalid.
func (g Geometry) Valid() bool {
	return g.ViewportHeight > 0 && g.MaxItemHeight > 0 && g.MinItemHeight > 0
}

package parallax

import "fmt"

// Options tunes the geometry and the window heuristics of a Layout.
type Options struct {
	// FullViewFraction is the share of the viewport a fully expanded item takes.
	FullViewFraction float64
	// CollapsedViewFraction is the share of the viewport a fully shrunk item takes.
	CollapsedViewFraction float64
	// OverlayMaxAlpha is the darkening ceiling applied to a fully shrunk item.
	OverlayMaxAlpha int
	// BottomSlack is the number of extra items kept below the estimated
	// visible count before trailing items are evicted.
	BottomSlack int
}

// DefaultOptions returns the stock 0.6/0.3 split with a 150 alpha ceiling.
func DefaultOptions() Options {
	return Options{
		FullViewFraction:      0.6,
		CollapsedViewFraction: 0.3,
		OverlayMaxAlpha:       150,
		BottomSlack:           2,
	}
}

// Validate reports whether the options describe a usable layout.
func (o Options) Validate() error {
	if o.FullViewFraction <= 0 || o.FullViewFraction > 1 {
		return fmt.Errorf("full view fraction %v out of range (0, 1]", o.FullViewFraction)
	}
	if o.CollapsedViewFraction <= 0 || o.CollapsedViewFraction > o.FullViewFraction {
		return fmt.Errorf("collapsed view fraction %v out of range (0, %v]", o.CollapsedViewFraction, o.FullViewFraction)
	}
	if o.OverlayMaxAlpha < 0 || o.OverlayMaxAlpha > 255 {
		return fmt.Errorf("overlay max alpha %d out of range [0, 255]", o.OverlayMaxAlpha)
	}
	if o.BottomSlack < 0 {
		return fmt.Errorf("bottom slack %d must not be negative", o.BottomSlack)
	}
	return nil
}

package tui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/plx/internal/parallax"
)

// scrollAnim eases the offset from one value to another over a fixed
// number of frames.
type scrollAnim struct {
	from   int
	to     int
	frame  int
	frames int
}

// at returns the offset for the current frame with a cubic ease-out.
func (s *scrollAnim) at() int {
	if s.frame >= s.frames {
		return s.to
	}
	t := float64(s.frame) / float64(s.frames)
	eased := 1 - math.Pow(1-t, 3)
	return s.from + int(math.Round(float64(s.to-s.from)*eased))
}

// ScrollTo jumps without animation. The layout calls it while replacing
// its dataset, so it only records the offset.
func (a *App) ScrollTo(offset int) {
	a.cancelAnimation()
	a.offset = max(offset, 0)
}

// SmoothScrollTo starts an animation toward offset. Frames are driven by
// tea.Tick; see tapSentinel.
func (a *App) SmoothScrollTo(offset int) {
	target := a.clamp(offset)
	a.animSeq++
	if target == a.offset {
		a.anim = nil
		return
	}
	a.anim = &scrollAnim{
		from:   a.offset,
		to:     target,
		frames: max(a.config.Layout.SmoothScrollFrames, 1),
	}
}

func (a *App) cancelAnimation() {
	if a.anim != nil {
		a.anim = nil
		a.animSeq++
	}
}

// clamp bounds offset to the scrollable range once the geometry is known.
// Before that any non-negative offset is kept so a restored position
// survives until the first measurement.
func (a *App) clamp(offset int) int {
	offset = max(offset, 0)
	if !a.layout.Geometry().Valid() {
		return offset
	}
	return min(offset, a.layout.MaxScrollOffset())
}

// scrollTo moves to offset and recomputes the visible placements.
func (a *App) scrollTo(offset int) {
	a.offset = a.clamp(offset)
	a.placements = a.layout.OnScrollOffsetChanged(a.offset)
}

// scrollBy is a user scroll; it interrupts any animation.
func (a *App) scrollBy(delta int) {
	a.cancelAnimation()
	a.scrollTo(a.offset + delta)
}

func (a *App) tapSentinel() tea.Cmd {
	a.layout.TapSentinel()
	if a.anim == nil {
		return nil
	}
	return a.nextFrame()
}

func (a *App) nextFrame() tea.Cmd {
	seq := a.animSeq
	interval := a.config.Layout.FrameInterval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return scrollFrameMsg{seq: seq} })
}

func (a *App) advanceAnimation(seq int) tea.Cmd {
	if a.anim == nil || seq != a.animSeq {
		return nil
	}
	a.anim.frame++
	a.scrollTo(a.anim.at())
	if a.anim.frame >= a.anim.frames {
		a.anim = nil
		return nil
	}
	return a.nextFrame()
}

// focused is the first item whose card still reaches into the viewport.
func (a *App) focused() (parallax.Placement, bool) {
	for _, p := range a.placements {
		if p.Kind == parallax.KindOrdinary && p.Bottom() > a.offset {
			return p, true
		}
	}
	return parallax.Placement{}, false
}

func (a *App) sentinelVisible() bool {
	bottom := a.offset + a.viewportPixels()
	for _, p := range a.placements {
		if p.Kind == parallax.KindSentinel && p.Top < bottom && p.Bottom() > a.offset {
			return true
		}
	}
	return false
}

// sentinelAtRow reports whether body row holds the sentinel.
func (a *App) sentinelAtRow(row int) bool {
	cell := a.cellHeight()
	for _, p := range a.placements {
		if p.Kind != parallax.KindSentinel {
			continue
		}
		top := pixelRow(p.Top, a.offset, cell)
		bottom := max(pixelRow(p.Bottom(), a.offset, cell), top+1)
		return row >= top && row < bottom
	}
	return false
}

package parallax

import (
	"fmt"
	"math"
	"slices"

	"github.com/pders01/plx/internal/debuglog"
)

// Host receives scroll requests from the layout.
type Host interface {
	// ScrollTo jumps to offset without animation.
	ScrollTo(offset int)
	// SmoothScrollTo animates toward offset.
	SmoothScrollTo(offset int)
}

type nopHost struct{}

func (nopHost) ScrollTo(int)       {}
func (nopHost) SmoothScrollTo(int) {}

// Layout is the windowed parallax list engine.
type Layout struct {
	opts Options
	geo  Geometry
	host Host

	items  []ContentDescriptor
	total  int
	offset int

	restoreOffset int
	hasRestore    bool

	first    int
	window   []*Handle
	pool     *Pool
	sentinel *Handle
}

// New returns a layout with an empty dataset. A nil host ignores scroll
// requests.
func New(opts Options, host Host) *Layout {
	if host == nil {
		host = nopHost{}
	}
	return &Layout{
		opts:  opts,
		geo:   NewGeometry(opts.FullViewFraction, opts.CollapsedViewFraction),
		host:  host,
		total: 1,
		first: -1,
		pool:  NewPool(),
	}
}

// SetDataset replaces the items and rebuilds the window. Active handles
// go back to the pool. With resetScroll the list returns to the top;
// otherwise a pending RestoreScrollOffset hint wins over the current offset.
func (l *Layout) SetDataset(items []ContentDescriptor, resetScroll bool) {
	l.clearWindow()
	l.items = items
	l.total = len(items) + 1

	switch {
	case resetScroll:
		if l.offset != 0 {
			l.offset = 0
			l.host.ScrollTo(0)
		}
	case l.hasRestore:
		l.offset = l.restoreOffset
		l.host.ScrollTo(l.offset)
	}
	l.hasRestore = false

	debuglog.WithFields(map[string]interface{}{
		"items":  len(items),
		"offset": l.offset,
		"reset":  resetScroll,
	}).Debugf("dataset replaced")

	l.refresh()
}

// RestoreScrollOffset stores an offset consumed by the next SetDataset.
func (l *Layout) RestoreScrollOffset(offset int) {
	l.restoreOffset = offset
	l.hasRestore = true
}

// OnViewportMeasured feeds a viewport measurement into the geometry and
// relays out when the geometry grew.
func (l *Layout) OnViewportMeasured(height int) {
	if !l.geo.Establish(height) {
		return
	}
	debuglog.Debugf("geometry established: viewport=%d max=%d min=%d sentinel=%d",
		l.geo.ViewportHeight, l.geo.MaxItemHeight, l.geo.MinItemHeight, l.geo.SentinelHeight)
	l.refresh()
}

// OnScrollOffsetChanged updates the window for offset and returns the
// resulting placements.
func (l *Layout) OnScrollOffsetChanged(offset int) []Placement {
	l.UpdateWindow(offset)
	return l.ComputeLayout()
}

// TapSentinel asks the host to animate back to the top.
func (l *Layout) TapSentinel() {
	l.host.SmoothScrollTo(0)
}

// ComputeLayout positions every instantiated item for the current offset.
// It returns nil while the geometry is invalid.
func (l *Layout) ComputeLayout() []Placement {
	if !l.geo.Valid() || len(l.window) == 0 {
		return nil
	}
	l.commit()

	placements := make([]Placement, 0, len(l.window))
	for _, h := range l.window {
		placements = append(placements, Placement{
			Index:    h.index,
			HandleID: h.id,
			Kind:     h.kind,
			Content:  h.content,
			Top:      h.top,
			Height:   h.bottom - h.top,
			Scale:    h.scale,
			Alpha:    h.alpha,
		})
	}
	return placements
}

// ContentHeight is the scrollable height reported to the host. The
// sentinel adds room only when the items alone overflow the viewport.
func (l *Layout) ContentHeight() int {
	if !l.geo.Valid() {
		return 0
	}
	height := len(l.items) * l.geo.MaxItemHeight
	if height > l.geo.ViewportHeight {
		height += l.geo.SentinelHeight
	}
	return height
}

// MaxScrollOffset is the largest offset a host should scroll to.
func (l *Layout) MaxScrollOffset() int {
	return max(0, l.ContentHeight()-l.geo.ViewportHeight)
}

func (l *Layout) Geometry() Geometry         { return l.geo }
func (l *Layout) Options() Options           { return l.opts }
func (l *Layout) ScrollOffset() int          { return l.offset }
func (l *Layout) FirstVisible() int          { return l.first }
func (l *Layout) TotalElements() int         { return l.total }
func (l *Layout) Items() []ContentDescriptor { return l.items }
func (l *Layout) PoolStats() PoolStats       { return l.pool.Stats() }

// Handles returns the instantiated handles in index order.
func (l *Layout) Handles() []*Handle {
	return slices.Clone(l.window)
}

// Indices returns the dataset index of every instantiated handle.
func (l *Layout) Indices() []int {
	indices := make([]int, len(l.window))
	for i, h := range l.window {
		indices[i] = h.index
	}
	return indices
}

func (l *Layout) refresh() {
	if l.geo.Valid() {
		l.UpdateWindow(l.offset)
	}
}

func (l *Layout) clearWindow() {
	for i, h := range l.window {
		l.pool.Release(h)
		l.window[i] = nil
	}
	l.window = l.window[:0]
	l.first = -1
}

// commit lays out the window at the current offset and stores the bounds
// on each handle. Eviction reads those bounds.
func (l *Layout) commit() {
	maxHeight := l.geo.MaxItemHeight
	minScale := l.geo.MinScaleFactor
	maxAlpha := l.opts.OverlayMaxAlpha

	top := l.first * maxHeight
	for i, h := range l.window {
		if l.first+i < l.total-1 {
			scale := Scale(top-l.offset, maxHeight, minScale)
			height := int(math.Round(float64(maxHeight) * scale))
			h.place(top, top+height, scale, OverlayAlpha(scale, minScale, maxAlpha))
			top += height
			continue
		}
		// The sentinel starts shrinking only once the slot above it has
		// scrolled past.
		scale := Scale(top-l.offset-maxHeight, l.geo.SentinelHeight, minScale)
		h.place(top, top+l.geo.SentinelHeight, scale, OverlayAlpha(scale, minScale, maxAlpha))
	}
}

func (l *Layout) acquire(index int) *Handle {
	if index == l.total-1 {
		if l.sentinel == nil {
			l.sentinel = &Handle{kind: KindSentinel}
		}
		l.sentinel.bind(index, ContentDescriptor{})
		return l.sentinel
	}
	if index < 0 || index >= len(l.items) {
		panic(fmt.Sprintf("parallax: item index %d out of range [0, %d)", index, len(l.items)))
	}
	h := l.pool.Acquire()
	h.bind(index, l.items[index])
	return h
}

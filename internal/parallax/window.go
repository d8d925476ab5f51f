package parallax

import (
	"math"
	"slices"
)

// settlePasses bounds how often UpdateWindow repeats evict/grow. Two passes
// settle every window; the rest is margin.
const settlePasses = 4

// UpdateWindow moves the visible window to offset: it evicts items that
// left the viewport, then instantiates items that entered it. Growth uses
// MinItemHeight as the spacing estimate so the window never runs short of
// items. Items the estimate over-provisions above the viewport are evicted
// by a further pass, so repeated calls with the same offset are no-ops.
func (l *Layout) UpdateWindow(offset int) {
	l.offset = offset
	if !l.geo.Valid() || l.total == 0 {
		return
	}

	for range settlePasses {
		first, n := l.first, len(l.window)
		l.step()
		if l.first == first && len(l.window) == n {
			return
		}
	}
}

func (l *Layout) step() {
	l.commit()
	l.evictTop()
	l.evictBottom()
	if len(l.window) == 0 {
		l.first = -1
	}
	l.grow()
	l.commit()
}

func (l *Layout) evictTop() {
	for len(l.window) > 0 && l.window[0].bottom < l.offset {
		l.pool.Release(l.window[0])
		l.window = slices.Delete(l.window, 0, 1)
		l.first++
	}
}

func (l *Layout) evictBottom() {
	if len(l.window) == 0 {
		return
	}

	viewportBottom := l.offset + l.geo.ViewportHeight
	span := float64(viewportBottom-l.window[0].bottom) / float64(l.geo.MinItemHeight)
	desired := int(math.Ceil(span)) + l.opts.BottomSlack

	for len(l.window) > 0 && len(l.window) > desired {
		last := len(l.window) - 1
		if l.window[last].top <= viewportBottom {
			return
		}
		l.pool.Release(l.window[last])
		l.window[last] = nil
		l.window = l.window[:last]
	}
}

func (l *Layout) grow() {
	maxHeight := l.geo.MaxItemHeight
	minHeight := l.geo.MinItemHeight
	viewportBottom := l.offset + l.geo.ViewportHeight

	if len(l.window) == 0 {
		l.first = min(max(l.offset/maxHeight, 0), l.total-1)
		l.window = append(l.window, l.acquire(l.first))
	}

	top := l.first * maxHeight
	bottom := top + maxHeight + minHeight*(len(l.window)-1)

	for top > l.offset && l.first > 0 {
		l.first--
		l.window = slices.Insert(l.window, 0, l.acquire(l.first))
		top -= minHeight
	}

	last := l.first + len(l.window) - 1
	for bottom < viewportBottom && last < l.total-1 {
		last++
		l.window = append(l.window, l.acquire(last))
		bottom += minHeight
	}
}

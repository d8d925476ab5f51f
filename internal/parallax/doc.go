// Package parallax implements a windowed, parallax-scrolling list layout.
//
// A Layout keeps only the items that intersect the viewport instantiated as
// Handles. Items scrolled out of view are released into a LIFO Pool and
// reused for items that scroll in, so memory follows the number of visible
// items instead of the dataset size.
//
// Every item is allotted MaxItemHeight pixels. Items below the viewport top
// shrink toward MinItemHeight as they move further down, and a darkening
// overlay grows as they shrink. The list always ends with a sentinel entry
// whose height fills the remainder of the viewport, which lets the last real
// item scroll to the top and expand fully. Tapping the sentinel asks the host
// to scroll back to the top.
//
// The engine is synchronous and not safe for concurrent use. Hosts call
// OnViewportMeasured and OnScrollOffsetChanged from a single goroutine and
// paint the returned Placements.
package parallax

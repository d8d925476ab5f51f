package tui

import (
	"github.com/pders01/plx/internal/storage"
)

type View int

const (
	ViewGallery View = iota
	ViewSearch
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewGallery:
		return "gallery"
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	default:
		return "unknown"
	}
}

type galleryLoadedMsg struct {
	gallery *storage.Gallery
	items   []*storage.Item
	offset  int
	// offsetErr is set when a saved offset exists but could not be read.
	offsetErr error
}

type filterAppliedMsg struct {
	query string
	items []*storage.Item
}

type detailRenderedMsg struct {
	content string
}

// scrollFrameMsg advances the smooth scroll started with the given seq.
type scrollFrameMsg struct {
	seq int
}

type statusMsg struct {
	text string
	kind StatusKind
}

type statusClearMsg struct {
	seq int
}

type errorMsg struct {
	err error
}

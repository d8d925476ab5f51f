package search

// Filterer narrows a gallery to the items matching a free-text query.
type Filterer interface {
	Filter(galleryID, query string, limit int) ([]string, error)
}

// DebugStatser reports index size for the status line.
type DebugStatser interface {
	DocCount() (uint64, error)
}

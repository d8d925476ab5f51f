package storage

import (
	"time"

	"github.com/pders01/plx/internal/parallax"
)

// Gallery is a named, ordered collection of items, seeded from the
// built-in samples or from a feed.
type Gallery struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	Description  string    `json:"description"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	LastFetched  time.Time `json:"last_fetched"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Item struct {
	ID        string    `json:"id"`
	GalleryID string    `json:"gallery_id"`
	Position  int       `json:"position"`
	Title     string    `json:"title"`
	ImageRef  string    `json:"image_ref"`
	Caption   string    `json:"caption"`
	Body      string    `json:"body,omitempty"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
}

// Descriptor returns the payload the layout binds to this item.
func (i *Item) Descriptor() parallax.ContentDescriptor {
	return parallax.ContentDescriptor{
		ID:       i.ID,
		Title:    i.Title,
		ImageRef: i.ImageRef,
		Caption:  i.Caption,
	}
}

// Descriptors converts items in order.
func Descriptors(items []*Item) []parallax.ContentDescriptor {
	out := make([]parallax.ContentDescriptor, len(items))
	for i, item := range items {
		out[i] = item.Descriptor()
	}
	return out
}

// ViewState is the per-gallery state restored when a gallery reopens.
type ViewState struct {
	GalleryID    string    `json:"gallery_id"`
	ScrollOffset int       `json:"scroll_offset"`
	SavedAt      time.Time `json:"saved_at"`
}

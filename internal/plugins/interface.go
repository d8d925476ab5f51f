package plugins

import (
	"context"
	"net/http"
	"slices"
	"time"
)

// SourceInfo is what a plugin learned about a URL a user wants to add
// as a gallery.
type SourceInfo struct {
	// PageURL is the URL as given.
	PageURL string
	// FeedURL is the RSS or Atom document to import.
	FeedURL string
	// Title names the gallery, e.g. "r/earthporn" instead of the feed's own title.
	Title       string
	Description string
	Metadata    map[string]string
}

// Plugin maps the pages of one site onto the feeds they publish.
type Plugin interface {
	Name() string

	// CanHandle returns true if this plugin understands url.
	CanHandle(url string) bool

	// Resolve returns the feed behind url. It may use client to look at
	// the page itself.
	Resolve(ctx context.Context, url string, client *http.Client) (*SourceInfo, error)

	// Priority breaks ties between plugins that can handle the same URL;
	// higher wins.
	Priority() int
}

// Registry keeps plugins ordered by descending priority, so the first
// plugin that can handle a URL is the one to use. Plugins of equal
// priority keep their registration order.
type Registry struct {
	byPriority []Plugin
	client     *http.Client
}

// NewRegistry returns an empty registry whose plugins fetch pages with the
// given timeout.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{client: &http.Client{Timeout: timeout}}
}

// Register inserts plugin after every plugin of the same or higher
// priority.
func (r *Registry) Register(plugin Plugin) {
	at, _ := slices.BinarySearchFunc(r.byPriority, plugin.Priority(), func(p Plugin, prio int) int {
		if p.Priority() >= prio {
			return -1
		}
		return 1
	})
	r.byPriority = slices.Insert(r.byPriority, at, plugin)
}

// FindPlugin returns the highest priority plugin that can handle url, or
// nil.
func (r *Registry) FindPlugin(url string) Plugin {
	for _, p := range r.byPriority {
		if p.CanHandle(url) {
			return p
		}
	}
	return nil
}

// Resolve runs the best plugin for url. Without one the URL is taken to be
// a feed already.
func (r *Registry) Resolve(ctx context.Context, url string) (*SourceInfo, error) {
	plugin := r.FindPlugin(url)
	if plugin == nil {
		return &SourceInfo{
			PageURL:  url,
			FeedURL:  url,
			Metadata: make(map[string]string),
		}, nil
	}

	return plugin.Resolve(ctx, url, r.client)
}

// ListPlugins returns a copy of the registered plugins in the order
// FindPlugin tries them.
func (r *Registry) ListPlugins() []Plugin {
	return slices.Clone(r.byPriority)
}

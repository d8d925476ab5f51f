// Package sites holds the plugins that know how individual websites
// publish their image feeds.
package sites

import "github.com/pders01/plx/internal/plugins"

// Register adds every site plugin to r.
func Register(r *plugins.Registry) {
	r.Register(NewRedditPlugin())
	r.Register(NewMastodonPlugin())
	r.Register(NewDiscoveryPlugin())
}

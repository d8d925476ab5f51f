package tui

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/plx/internal/config"
	"github.com/pders01/plx/internal/feed"
	"github.com/pders01/plx/internal/plugins"
	"github.com/pders01/plx/internal/plugins/sites"
	"github.com/pders01/plx/internal/search"
	"github.com/pders01/plx/internal/storage"
)

var harbourTitles = []string{
	"Harbour at dawn", "Fog over the pier", "Boats", "Harbour lights",
	"Gulls", "Nets drying", "Rain", "Lighthouse",
}

func harbourRSS() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Harbour Photos</title>`)
	for i, title := range harbourTitles {
		fmt.Fprintf(&b, `<item><title>%s</title><guid>h%d</guid>`+
			`<enclosure url="https://photos.org/h%d.jpg" type="image/jpeg" length="1"/></item>`, title, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

const harbourAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Harbour Sketches</title>
  <id>urn:sketches</id>
  <updated>2024-05-01T00:00:00Z</updated>
  <entry>
    <title>Crane</title><id>urn:s1</id><updated>2024-05-01T00:00:00Z</updated>
    <link rel="enclosure" type="image/png" href="https://photos.org/s1.png"/>
  </entry>
  <entry>
    <title>Dock</title><id>urn:s2</id><updated>2024-05-02T00:00:00Z</updated>
    <content type="html">&lt;p&gt;&lt;img src="/s2.png"&gt;&lt;/p&gt;</content>
    <link rel="alternate" href="https://photos.org/posts/2"/>
  </entry>
</feed>`

// harbourSite serves a blog page that advertises its feed, the feed
// itself, an Atom feed and a rate limited endpoint.
func harbourSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Harbour blog</title>
<link rel="alternate" type="application/rss+xml" href="/photos.xml"></head></html>`)
	})
	mux.HandleFunc("/photos.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, harbourRSS())
	})
	mux.HandleFunc("/sketches.atom", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, harbourAtom)
	})
	mux.HandleFunc("/busy.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type integrationEnv struct {
	store   *storage.Store
	index   *search.Index
	manager *feed.Manager
}

func setupIntegration(t *testing.T) *integrationEnv {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "plx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ix, err := search.NewMemIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	registry := plugins.NewRegistry(5 * time.Second)
	sites.Register(registry)

	m := feed.NewManager(store, config.TestConfig())
	m.SetPermissiveValidation(true)
	m.SetIndexer(ix)
	m.SetResolver(registry)
	return &integrationEnv{store: store, index: ix, manager: m}
}

func TestIntegration_DiscoveredFeedToFilteredGallery(t *testing.T) {
	env := setupIntegration(t)
	server := harbourSite(t)

	g, err := env.manager.AddGallery(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/photos.xml", g.Source)
	assert.Equal(t, "Harbour blog", g.Title)

	app := newTestAppFor(t, env.store, g.ID, WithFilterer(env.index))
	require.Len(t, app.shown, len(harbourTitles))
	assert.Contains(t, app.View(), "Harbour at dawn")

	press(app, "G")
	bottom := app.ScrollOffset()
	assert.Equal(t, app.layout.MaxScrollOffset(), bottom)

	press(app, "/")
	assert.Contains(t, app.View(), "8 items indexed")
	press(app, "harbour")
	for _, msg := range runCmd(press(app, "enter")) {
		app.Update(msg)
	}
	require.Len(t, app.shown, 2)
	assert.Equal(t, "Harbour at dawn", app.shown[0].Title)
	assert.Equal(t, "Harbour lights", app.shown[1].Title)
	assert.Equal(t, 0, app.ScrollOffset())
	assert.Contains(t, app.headerView(), `filter "harbour"`)

	press(app, "esc")
	assert.Len(t, app.shown, len(harbourTitles))
	assert.Equal(t, bottom, app.ScrollOffset())

	// the position survives a restart
	runCmd(app.saveScrollOffset())
	again := newTestAppFor(t, env.store, g.ID, WithFilterer(env.index))
	assert.Equal(t, bottom, again.ScrollOffset())
}

func TestIntegration_AtomFeed(t *testing.T) {
	env := setupIntegration(t)
	server := harbourSite(t)

	g, err := env.manager.AddGallery(context.Background(), server.URL+"/sketches.atom")
	require.NoError(t, err)
	assert.Equal(t, "Harbour Sketches", g.Title)

	items, err := env.store.GetItems(g.ID, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://photos.org/s1.png", items[0].ImageRef)
	assert.Equal(t, "https://photos.org/s2.png", items[1].ImageRef, "inline images resolve against the entry link")

	// two 360px items overflow the 600px viewport, so the 240px sentinel
	// is scrollable too
	app := newTestAppFor(t, env.store, g.ID)
	assert.Equal(t, 2*360+240, app.layout.ContentHeight())
	assert.Equal(t, 360, app.layout.MaxScrollOffset())
	press(app, "j")
	assert.Equal(t, 48, app.ScrollOffset())
	press(app, "G")
	assert.Equal(t, 360, app.ScrollOffset())
	assert.True(t, app.sentinelVisible())
}

func TestIntegration_RateLimitedFeed(t *testing.T) {
	env := setupIntegration(t)
	server := harbourSite(t)

	_, err := env.manager.AddGallery(context.Background(), server.URL+"/busy.xml")
	require.ErrorIs(t, err, feed.ErrHTTPStatus)

	galleries, err := env.store.GetAllGalleries()
	require.NoError(t, err)
	assert.Empty(t, galleries)
}

func newTestAppFor(t *testing.T, store *storage.Store, galleryID string, opts ...Option) *App {
	t.Helper()
	app := NewApp(store, config.TestConfig(), galleryID, opts...)
	app.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	for _, msg := range runCmd(app.Init()) {
		app.Update(msg)
	}
	require.True(t, app.loaded)
	return app
}

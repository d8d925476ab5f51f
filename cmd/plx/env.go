package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pders01/plx/internal/config"
	"github.com/pders01/plx/internal/debuglog"
	"github.com/pders01/plx/internal/feed"
	"github.com/pders01/plx/internal/plugins"
	"github.com/pders01/plx/internal/plugins/sites"
	"github.com/pders01/plx/internal/samples"
	"github.com/pders01/plx/internal/search"
	"github.com/pders01/plx/internal/storage"
	"github.com/pders01/plx/internal/tui"
	"github.com/pders01/plx/internal/validation"
)

var errAmbiguous = errors.New("ambiguous gallery name")

// env is what every command works with: the configuration, the database
// and, when it can be opened, the search index.
type env struct {
	cfg   *config.Config
	store *storage.Store
	index *search.Index
}

func openEnv() (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
		cfg.Database.SearchIndex = dbPath + ".index"
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	tui.ApplyColors(cfg.UI.Colors)

	path, err := validation.EnsureFileDir(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	store, err := storage.NewStoreWithTimeout(path, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, store: store}
	if cfg.Database.SearchIndex != "" {
		if ix, err := openIndex(cfg.Database.SearchIndex); err != nil {
			debuglog.Warnf("plx: search disabled: %v", err)
			fmt.Fprintf(os.Stderr, "search disabled: %v\n", err)
		} else {
			e.index = ix
		}
	}
	return e, nil
}

func openIndex(raw string) (*search.Index, error) {
	path, err := validation.EnsureFileDir(raw)
	if err != nil {
		return nil, err
	}
	return search.Open(path)
}

func (e *env) Close() {
	if e.index != nil {
		if err := e.index.Close(); err != nil {
			debuglog.Warnf("plx: closing index: %v", err)
		}
	}
	if err := e.store.Close(); err != nil {
		debuglog.Warnf("plx: closing store: %v", err)
	}
	_ = debuglog.Close()
}

func (e *env) manager() *feed.Manager {
	m := feed.NewManager(e.store, e.cfg)
	if e.index != nil {
		m.SetIndexer(e.index)
	}
	registry := plugins.NewRegistry(e.cfg.Feed.HTTPTimeout)
	sites.Register(registry)
	m.SetResolver(registry)
	return m
}

// seedSample stores the named built-in gallery, replacing an earlier copy
// but keeping its saved scroll position.
func (e *env) seedSample(name string) (*storage.Gallery, int, error) {
	s, err := samples.Load(name)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now()
	s.Gallery.CreatedAt, s.Gallery.UpdatedAt = now, now
	if existing, err := e.store.GetGallery(s.Gallery.ID); err == nil {
		s.Gallery.CreatedAt = existing.CreatedAt
	}
	if err := e.store.SaveGallery(s.Gallery); err != nil {
		return nil, 0, fmt.Errorf("saving gallery: %w", err)
	}
	if err := e.store.ReplaceItems(s.Gallery.ID, s.Items); err != nil {
		return nil, 0, fmt.Errorf("saving items: %w", err)
	}
	if e.index != nil {
		if err := e.index.IndexGallery(s.Gallery.ID, s.Items); err != nil {
			debuglog.Warnf("plx: indexing %s: %v", s.Gallery.ID, err)
		}
	}
	return s.Gallery, len(s.Items), nil
}

// findGallery looks name up as an ID, then as a title or ID prefix.
func findGallery(store *storage.Store, name string) (*storage.Gallery, error) {
	g, err := store.GetGallery(name)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	galleries, err := store.GetAllGalleries()
	if err != nil {
		return nil, err
	}
	var matches []*storage.Gallery
	for _, g := range galleries {
		if strings.EqualFold(g.Title, name) || strings.HasPrefix(g.ID, name) {
			matches = append(matches, g)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("gallery %q: %w", name, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, g := range matches {
			ids[i] = g.ID
		}
		return nil, fmt.Errorf("%w %q: matches %s", errAmbiguous, name, strings.Join(ids, ", "))
	}
}

// latestGallery is the most recently updated gallery, or nil when there
// are none.
func latestGallery(store *storage.Store) (*storage.Gallery, error) {
	galleries, err := store.GetAllGalleries()
	if err != nil {
		return nil, err
	}
	var latest *storage.Gallery
	for _, g := range galleries {
		if latest == nil || g.UpdatedAt.After(latest.UpdatedAt) {
			latest = g
		}
	}
	return latest, nil
}

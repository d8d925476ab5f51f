package feed

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pders01/plx/internal/config"
	"github.com/pders01/plx/internal/debuglog"
	"github.com/pders01/plx/internal/plugins"
	"github.com/pders01/plx/internal/samples"
	"github.com/pders01/plx/internal/storage"
	"github.com/pders01/plx/internal/validation"
)

const maxConcurrentRefresh = 5

// ErrNoImages is returned when a feed has no entry with an image.
var ErrNoImages = errors.New("feed has no entries with images")

// Indexer receives a gallery's items whenever they are replaced.
type Indexer interface {
	IndexGallery(galleryID string, items []*storage.Item) error
}

// Resolver finds the feed behind a page URL.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*plugins.SourceInfo, error)
}

// Manager imports feeds as galleries and keeps them fresh.
type Manager struct {
	store        *storage.Store
	fetcher      *Fetcher
	parser       *Parser
	indexer      Indexer
	resolver     Resolver
	urlValidator *validation.SourceURLValidator
	// mu serializes the store and index writes of concurrent pulls.
	mu sync.Mutex
}

func NewManager(store *storage.Store, cfg *config.Config) *Manager {
	maxItems := 0
	if cfg != nil {
		maxItems = cfg.Feed.MaxItems
	}
	return &Manager{
		store:        store,
		fetcher:      NewFetcher(cfg),
		parser:       NewParser(maxItems),
		urlValidator: validation.NewSourceURLValidator(),
	}
}

// SetIndexer registers the search index to update after each import.
func (m *Manager) SetIndexer(ix Indexer) {
	m.indexer = ix
}

// SetResolver registers the plugins consulted when a gallery is added.
func (m *Manager) SetResolver(r Resolver) {
	m.resolver = r
}

// SetForceRefresh configures the manager to ignore ETag/Last-Modified headers
func (m *Manager) SetForceRefresh(force bool) {
	m.fetcher.SetIgnoreCache(force)
}

// SetPermissiveValidation allows localhost and private addresses.
func (m *Manager) SetPermissiveValidation(permissive bool) {
	if permissive {
		m.urlValidator = validation.NewPermissiveSourceURLValidator()
	} else {
		m.urlValidator = validation.NewSourceURLValidator()
	}
}

// AddGallery validates rawURL, fetches and parses the feed and stores it as
// a gallery. Adding a URL twice replaces the earlier import.
func (m *Manager) AddGallery(ctx context.Context, rawURL string) (*storage.Gallery, error) {
	source, err := m.urlValidator.ValidateAndNormalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}

	var title, description string
	if m.resolver != nil {
		info, err := m.resolver.Resolve(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", source, err)
		}
		if info.FeedURL != source {
			// The page may point anywhere, so its feed is checked again.
			if source, err = m.urlValidator.ValidateAndNormalize(info.FeedURL); err != nil {
				return nil, fmt.Errorf("invalid feed URL: %w", err)
			}
			debuglog.Debugf("feed: %s resolved to %s", rawURL, source)
		}
		title, description = info.Title, info.Description
	}

	now := time.Now()
	g := &storage.Gallery{
		ID:          GalleryID(source),
		Source:      source,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing, err := m.store.GetGallery(g.ID); err == nil {
		g.CreatedAt = existing.CreatedAt
	}

	// Conditional headers are empty on a fresh gallery, so the import
	// always gets a body unless the server misbehaves.
	updated, err := m.pull(ctx, g)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("fetching %s: no content", source)
	}
	return g, nil
}

// RefreshGallery refetches a feed gallery. It reports whether the items
// changed. Built-in sample galleries are never refreshed.
func (m *Manager) RefreshGallery(ctx context.Context, id string) (bool, error) {
	g, err := m.store.GetGallery(id)
	if err != nil {
		return false, fmt.Errorf("getting gallery: %w", err)
	}
	if strings.HasPrefix(g.Source, samples.SourcePrefix) {
		return false, nil
	}

	updated, err := m.pull(ctx, g)
	if err != nil {
		return false, err
	}
	if !updated {
		g.LastFetched = time.Now()
		if err := m.store.SaveGallery(g); err != nil {
			return false, fmt.Errorf("saving gallery metadata: %w", err)
		}
	}
	return updated, nil
}

// RefreshAll refreshes every feed gallery with a bounded worker pool and
// joins the failures.
func (m *Manager) RefreshAll(ctx context.Context) error {
	galleries, err := m.store.GetAllGalleries()
	if err != nil {
		return fmt.Errorf("getting galleries: %w", err)
	}
	if len(galleries) == 0 {
		return nil
	}

	jobs := make(chan *storage.Gallery, len(galleries))
	errCh := make(chan error, len(galleries))

	var wg sync.WaitGroup
	for i := 0; i < maxConcurrentRefresh && i < len(galleries); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range jobs {
				if ctx.Err() != nil {
					errCh <- ctx.Err()
					continue
				}
				if _, err := m.RefreshGallery(ctx, g.ID); err != nil {
					errCh <- fmt.Errorf("%s: %w", g.ID, err)
				}
			}
		}()
	}

	for _, g := range galleries {
		jobs <- g
	}
	close(jobs)

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// pull fetches, parses and stores g and its items. It reports false when
// the server answered 304.
func (m *Manager) pull(ctx context.Context, g *storage.Gallery) (bool, error) {
	resp, updated, err := m.fetcher.Fetch(ctx, g)
	if err != nil {
		return false, err
	}
	if !updated {
		debuglog.Debugf("feed: %s not modified", g.Source)
		return false, nil
	}
	defer resp.Body.Close()

	parsed, err := m.parser.Parse(resp.Body, g.ID)
	if err != nil {
		return false, err
	}
	if len(parsed.Items) == 0 {
		return false, fmt.Errorf("%s: %w", g.Source, ErrNoImages)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A title given by a plugin or an earlier import is kept.
	if g.Title == "" {
		g.Title = parsed.Title
	}
	if g.Title == "" {
		g.Title = hostOf(g.Source)
	}
	if g.Description == "" {
		g.Description = parsed.Description
	}
	g.UpdatedAt = time.Now()
	m.fetcher.UpdateMetadata(g, resp)

	if err := m.store.SaveGallery(g); err != nil {
		return false, fmt.Errorf("saving gallery: %w", err)
	}
	if err := m.store.ReplaceItems(g.ID, parsed.Items); err != nil {
		return false, fmt.Errorf("saving items: %w", err)
	}
	if m.indexer != nil {
		if err := m.indexer.IndexGallery(g.ID, parsed.Items); err != nil {
			debuglog.Warnf("feed: indexing %s failed: %v", g.ID, err)
		}
	}

	debuglog.WithFields(map[string]interface{}{
		"gallery": g.ID,
		"items":   len(parsed.Items),
		"skipped": parsed.Skipped,
	}).Infof("feed: imported %s", g.Source)
	return true, nil
}

// GalleryID derives a short stable ID from a normalized source URL.
func GalleryID(source string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(source)))[:12]
}

func hostOf(source string) string {
	if u, err := url.Parse(source); err == nil && u.Host != "" {
		return u.Host
	}
	return "Untitled gallery"
}

package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pders01/plx/internal/config"
	"github.com/pders01/plx/internal/storage"
)

const (
	defaultUserAgent = "plx/1.0"
	defaultTimeout   = 30 * time.Second
)

// ErrHTTPStatus is wrapped by Fetch for responses with status >= 400.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

type Fetcher struct {
	client      *http.Client
	userAgent   string
	ignoreCache bool
}

func NewFetcher(cfg *config.Config) *Fetcher {
	timeout, ua := defaultTimeout, defaultUserAgent
	if cfg != nil {
		if cfg.Feed.HTTPTimeout > 0 {
			timeout = cfg.Feed.HTTPTimeout
		}
		if cfg.Feed.UserAgent != "" {
			ua = cfg.Feed.UserAgent
		}
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: ua,
	}
}

// SetIgnoreCache makes Fetch skip the conditional request headers.
func (f *Fetcher) SetIgnoreCache(ignore bool) {
	f.ignoreCache = ignore
}

// Fetch requests the gallery source. It returns (nil, false, nil) when the
// server reports the feed unchanged. The caller closes the response body.
func (f *Fetcher) Fetch(ctx context.Context, g *storage.Gallery) (*http.Response, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Source, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml, text/xml")

	if !f.ignoreCache {
		if g.ETag != "" {
			req.Header.Set("If-None-Match", g.ETag)
		}
		if g.LastModified != "" {
			req.Header.Set("If-Modified-Since", g.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetching %s: %w", g.Source, err)
	}

	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil, false, nil
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, false, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	return resp, true, nil
}

// UpdateMetadata records the cache validators of resp on the gallery.
func (f *Fetcher) UpdateMetadata(g *storage.Gallery, resp *http.Response) {
	if etag := resp.Header.Get("ETag"); etag != "" {
		g.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		g.LastModified = lastMod
	}
	g.LastFetched = time.Now()
}

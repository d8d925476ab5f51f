package sites

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pders01/plx/internal/plugins"
)

var feedTypes = map[string]bool{
	"application/rss+xml":  true,
	"application/atom+xml": true,
	"application/xml":      true,
	"text/xml":             true,
}

// DiscoveryPlugin handles any web page: it fetches it and follows the
// first <link rel="alternate"> that points to a feed. It runs last, after
// the site specific plugins.
type DiscoveryPlugin struct{}

func NewDiscoveryPlugin() *DiscoveryPlugin {
	return &DiscoveryPlugin{}
}

func (p *DiscoveryPlugin) Name() string {
	return "discovery"
}

// CanHandle skips URLs that already look like feeds.
func (p *DiscoveryPlugin) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".xml", ".rss", ".atom", ".rdf":
		return false
	}
	switch strings.ToLower(path.Base(u.Path)) {
	case "feed", "rss", "atom":
		return false
	}
	return true
}

func (p *DiscoveryPlugin) Priority() int {
	return 0
}

func (p *DiscoveryPlugin) Resolve(ctx context.Context, rawURL string, client *http.Client) (*plugins.SourceInfo, error) {
	info := &plugins.SourceInfo{
		PageURL:  rawURL,
		FeedURL:  rawURL,
		Metadata: map[string]string{"plugin": "discovery"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html, application/rss+xml, application/atom+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %s: HTTP %d", rawURL, resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "text/html" && mediaType != "application/xhtml+xml" {
		// Not a page; let the feed parser decide.
		return info, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	base := resp.Request.URL
	doc.Find(`link[rel~="alternate"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ, _ := s.Attr("type")
		href, ok := s.Attr("href")
		if !ok || !feedTypes[strings.ToLower(strings.TrimSpace(typ))] {
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		info.FeedURL = base.ResolveReference(ref).String()
		info.Title = strings.TrimSpace(s.AttrOr("title", ""))
		return false
	})

	if info.Title == "" {
		info.Title = strings.TrimSpace(doc.Find("head title").First().Text())
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		info.Description = strings.TrimSpace(desc)
	}
	info.Metadata["discovered"] = fmt.Sprint(info.FeedURL != rawURL)
	return info, nil
}

package feed

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/pders01/plx/internal/storage"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".avif": true, ".bmp": true, ".svg": true,
}

// Parsed is a feed reduced to the entries that carry an image.
type Parsed struct {
	Title       string
	Description string
	Items       []*storage.Item
	// Skipped counts entries dropped for having no image.
	Skipped int
}

type Parser struct {
	parser   *gofeed.Parser
	maxItems int
}

// NewParser keeps at most maxItems entries per feed; zero means no limit.
func NewParser(maxItems int) *Parser {
	return &Parser{
		parser:   gofeed.NewParser(),
		maxItems: maxItems,
	}
}

func (p *Parser) Parse(reader io.Reader, galleryID string) (*Parsed, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	out := &Parsed{
		Title:       strings.TrimSpace(feed.Title),
		Description: plainText(feed.Description),
		Items:       make([]*storage.Item, 0, len(feed.Items)),
	}

	for _, entry := range feed.Items {
		if p.maxItems > 0 && len(out.Items) >= p.maxItems {
			break
		}
		image := imageRef(entry)
		if image == "" {
			out.Skipped++
			continue
		}

		item := &storage.Item{
			ID:        itemID(galleryID, entry),
			GalleryID: galleryID,
			Position:  len(out.Items),
			Title:     strings.TrimSpace(entry.Title),
			ImageRef:  image,
			Caption:   caption(entry),
			Body:      markdownBody(entry),
			Link:      entry.Link,
		}
		if item.Title == "" {
			item.Title = "Untitled"
		}
		if entry.PublishedParsed != nil {
			item.Published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.Published = *entry.UpdatedParsed
		}
		out.Items = append(out.Items, item)
	}

	return out, nil
}

// imageRef picks the first image of an entry: image enclosures, the item
// image, Media RSS content and thumbnails, then the first <img> in the body.
func imageRef(entry *gofeed.Item) string {
	for _, enc := range entry.Enclosures {
		if enc.URL != "" && (strings.HasPrefix(enc.Type, "image/") || hasImageExt(enc.URL)) {
			return resolve(entry.Link, enc.URL)
		}
	}

	if entry.Image != nil && entry.Image.URL != "" {
		return resolve(entry.Link, entry.Image.URL)
	}

	if ref := mediaImage(entry.Extensions); ref != "" {
		return resolve(entry.Link, ref)
	}

	for _, body := range []string{entry.Content, entry.Description} {
		if src := firstImage(body); src != "" {
			return resolve(entry.Link, src)
		}
	}

	return ""
}

func mediaImage(exts ext.Extensions) string {
	media, ok := exts["media"]
	if !ok {
		return ""
	}

	var candidates []ext.Extension
	candidates = append(candidates, media["content"]...)
	for _, group := range media["group"] {
		candidates = append(candidates, group.Children["content"]...)
	}
	for _, c := range candidates {
		u := c.Attrs["url"]
		if u == "" {
			continue
		}
		if c.Attrs["medium"] == "image" || strings.HasPrefix(c.Attrs["type"], "image/") || hasImageExt(u) {
			return u
		}
	}

	for _, thumb := range media["thumbnail"] {
		if u := thumb.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}

func hasImageExt(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return imageExts[strings.ToLower(path.Ext(u.Path))]
}

// resolve makes ref absolute against the entry link when it is relative.
func resolve(base, ref string) string {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	if r.IsAbs() || base == "" {
		return r.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return r.String()
	}
	return b.ResolveReference(r).String()
}

func caption(entry *gofeed.Item) string {
	if text := plainText(entry.Description); text != "" {
		return text
	}
	return plainText(entry.Content)
}

func parseHTML(s string) *goquery.Document {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil
	}
	return doc
}

func firstImage(body string) string {
	doc := parseHTML(body)
	if doc == nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

// plainText flattens an HTML fragment to single spaced text.
func plainText(s string) string {
	doc := parseHTML(s)
	if doc == nil {
		return ""
	}
	doc.Find("script, style").Remove()
	var words []string
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				words = append(words, strings.Fields(c.Text())...)
				return
			}
			walk(c)
		})
	}
	walk(doc.Find("body"))
	return strings.Join(words, " ")
}

// markdownBody converts the longest HTML body of an entry for the detail
// view.
func markdownBody(entry *gofeed.Item) string {
	body := entry.Content
	if len(entry.Description) > len(body) {
		body = entry.Description
	}
	if strings.TrimSpace(body) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return plainText(body)
	}
	return strings.TrimSpace(md)
}

func itemID(galleryID string, entry *gofeed.Item) string {
	key := entry.GUID
	if key == "" {
		key = entry.Link
	}
	if key == "" {
		sum := sha256.Sum256([]byte(entry.Title + "\x00" + entry.Published))
		key = fmt.Sprintf("%x", sum[:8])
	}
	return galleryID + ":" + key
}

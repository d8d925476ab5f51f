package search

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/plx/internal/debuglog"
	"github.com/pders01/plx/internal/storage"
)

const (
	fieldGallery = "gallery_id"
	fieldTitle   = "title"
	fieldCaption = "caption"
	fieldLink    = "link"

	deletePageSize = 500
	defaultLimit   = 10000
)

// Index is a bleve full-text index over gallery items. Document IDs are item
// IDs; every document carries its gallery ID so queries stay inside one
// gallery.
type Index struct {
	idx bleve.Index
}

var (
	_ Filterer     = (*Index)(nil)
	_ DebugStatser = (*Index)(nil)
)

// Open opens the index at path, creating it when it does not exist yet.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening search index %s: %w", path, err)
	}
	return &Index{idx: idx}, nil
}

// NewMemIndex returns an index that lives only in memory.
func NewMemIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating memory index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func (x *Index) Close() error {
	return x.idx.Close()
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	gallery := bleve.NewTextFieldMapping()
	gallery.Analyzer = keyword.Name
	gallery.Store = false

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	caption := bleve.NewTextFieldMapping()
	caption.Analyzer = standard.Name
	caption.Store = false

	link := bleve.NewTextFieldMapping()
	link.Analyzer = standard.Name
	link.Store = false

	dm.AddFieldMappingsAt(fieldGallery, gallery)
	dm.AddFieldMappingsAt(fieldTitle, title)
	dm.AddFieldMappingsAt(fieldCaption, caption)
	dm.AddFieldMappingsAt(fieldLink, link)

	im.DefaultMapping = dm
	return im
}

// IndexGallery replaces every document of the gallery with items.
func (x *Index) IndexGallery(galleryID string, items []*storage.Item) error {
	if err := x.RemoveGallery(galleryID); err != nil {
		return err
	}

	batch := x.idx.NewBatch()
	for _, item := range items {
		err := batch.Index(item.ID, map[string]any{
			fieldGallery: galleryID,
			fieldTitle:   item.Title,
			fieldCaption: item.Caption,
			fieldLink:    item.Link,
		})
		if err != nil {
			return fmt.Errorf("indexing item %s: %w", item.ID, err)
		}
	}
	if err := x.idx.Batch(batch); err != nil {
		return fmt.Errorf("indexing gallery %s: %w", galleryID, err)
	}

	debuglog.WithFields(map[string]interface{}{
		"gallery": galleryID,
		"items":   len(items),
	}).Debugf("search: gallery indexed")
	return nil
}

// RemoveGallery deletes all documents belonging to the gallery.
func (x *Index) RemoveGallery(galleryID string) error {
	q := galleryQuery(galleryID)
	for {
		req := bleve.NewSearchRequestOptions(q, deletePageSize, 0, false)
		res, err := x.idx.Search(req)
		if err != nil {
			return fmt.Errorf("listing gallery %s documents: %w", galleryID, err)
		}
		if len(res.Hits) == 0 {
			return nil
		}

		batch := x.idx.NewBatch()
		for _, h := range res.Hits {
			batch.Delete(h.ID)
		}
		if err := x.idx.Batch(batch); err != nil {
			return fmt.Errorf("removing gallery %s documents: %w", galleryID, err)
		}
		if len(res.Hits) < deletePageSize {
			return nil
		}
	}
}

// Filter returns the IDs of the gallery's items matching query, best match
// first. A blank query matches nothing.
func (x *Index) Filter(galleryID, query string, limit int) ([]string, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	var should []bleveQuery.Query
	for _, tok := range tokens {
		should = append(should,
			fieldMatch(fieldTitle, tok, 4.0),
			fieldPrefix(fieldTitle, tok, 3.5),
			fieldMatch(fieldCaption, tok, 2.0),
			fieldPrefix(fieldCaption, tok, 1.8),
			fieldMatch(fieldLink, tok, 0.5),
		)
	}

	q := bleve.NewConjunctionQuery(galleryQuery(galleryID), bleve.NewDisjunctionQuery(should...))
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching gallery %s: %w", galleryID, err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// DocCount reports the total number of indexed items.
func (x *Index) DocCount() (uint64, error) {
	return x.idx.DocCount()
}

// Select keeps the items whose IDs are in ids, preserving gallery order.
func Select(items []*storage.Item, ids []string) []*storage.Item {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := make([]*storage.Item, 0, len(ids))
	for _, item := range items {
		if _, ok := keep[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

func galleryQuery(galleryID string) bleveQuery.Query {
	q := bleve.NewTermQuery(galleryID)
	q.SetField(fieldGallery)
	return q
}

func fieldMatch(field, tok string, boost float64) bleveQuery.Query {
	q := bleve.NewMatchQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func fieldPrefix(field, tok string, boost float64) bleveQuery.Query {
	q := bleve.NewPrefixQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Package samples provides the built-in demo galleries.
package samples

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/pders01/plx/internal/storage"
)

//go:embed samples.toml
var samplesTOML []byte

// SourcePrefix marks galleries seeded from the built-in samples.
const SourcePrefix = "samples:"

type image struct {
	Title   string `toml:"title"`
	Ref     string `toml:"ref"`
	Caption string `toml:"caption"`
}

type gallery struct {
	Title       string  `toml:"title"`
	Description string  `toml:"description"`
	Repeat      int     `toml:"repeat"`
	Images      []image `toml:"images"`
}

type file struct {
	Galleries map[string]gallery `toml:"galleries"`
}

// Sample is a demo gallery with its expanded items.
type Sample struct {
	Gallery *storage.Gallery
	Items   []*storage.Item
}

// Names lists the built-in gallery names in sorted order.
func Names() ([]string, error) {
	f, err := parse(samplesTOML)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Galleries))
	for name := range f.Galleries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load expands the named built-in gallery.
func Load(name string) (*Sample, error) {
	f, err := parse(samplesTOML)
	if err != nil {
		return nil, err
	}
	return expand(f, name)
}

func parse(data []byte) (*file, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing samples.toml: %w", err)
	}
	return &f, nil
}

func expand(f *file, name string) (*Sample, error) {
	g, ok := f.Galleries[name]
	if !ok {
		return nil, fmt.Errorf("sample gallery %q: %w", name, storage.ErrNotFound)
	}

	repeat := max(g.Repeat, 1)
	items := make([]*storage.Item, 0, repeat*len(g.Images))
	for r := 0; r < repeat; r++ {
		for i, img := range g.Images {
			items = append(items, &storage.Item{
				ID:       fmt.Sprintf("%s-%d-%d", name, r, i),
				Title:    img.Title,
				ImageRef: img.Ref,
				Caption:  img.Caption,
			})
		}
	}

	return &Sample{
		Gallery: &storage.Gallery{
			ID:          name,
			Title:       g.Title,
			Source:      SourcePrefix + name,
			Description: g.Description,
		},
		Items: items,
	}, nil
}

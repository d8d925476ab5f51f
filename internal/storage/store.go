package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	galleriesBucket = []byte("galleries")
	itemsBucket     = []byte("items")
	stateBucket     = []byte("view_state")
)

// ErrNotFound is returned when a gallery or view state does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout opens the database, waiting up to timeout for the
// file lock held by another process.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{galleriesBucket, itemsBucket, stateBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// itemKey orders items by position inside a gallery's key prefix.
func itemKey(galleryID string, position int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", galleryID, position))
}

func itemPrefix(galleryID string) []byte {
	return []byte(galleryID + "/")
}

func (s *Store) SaveGallery(g *Gallery) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(galleriesBucket)
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		return b.Put([]byte(g.ID), data)
	})
}

func (s *Store) GetGallery(id string) (*Gallery, error) {
	var g Gallery
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(galleriesBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("gallery %q: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &g)
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetAllGalleries returns galleries sorted by title, falling back to ID.
func (s *Store) GetAllGalleries() ([]*Gallery, error) {
	var galleries []*Gallery
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(galleriesBucket).ForEach(func(_ []byte, v []byte) error {
			var g Gallery
			if err := json.Unmarshal(v, &g); err != nil {
				return err
			}
			galleries = append(galleries, &g)
			return nil
		})
	})
	sort.Slice(galleries, func(i, j int) bool {
		ti, tj := galleries[i].Title, galleries[j].Title
		if ti == "" {
			ti = galleries[i].ID
		}
		if tj == "" {
			tj = galleries[j].ID
		}
		return strings.ToLower(ti) < strings.ToLower(tj)
	})
	return galleries, err
}

// ReplaceItems swaps a gallery's items for items, renumbering positions
// in slice order.
func (s *Store) ReplaceItems(galleryID string, items []*Item) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(itemsBucket)
		if err := deletePrefix(b, itemPrefix(galleryID)); err != nil {
			return err
		}
		for i, item := range items {
			item.GalleryID = galleryID
			item.Position = i
			data, err := json.Marshal(item)
			if err != nil {
				return err
			}
			if err := b.Put(itemKey(galleryID, i), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetItems returns up to limit items of a gallery in position order.
// A limit of zero or less returns all of them.
func (s *Store) GetItems(galleryID string, limit int) ([]*Item, error) {
	var items []*Item
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(itemsBucket).Cursor()
		prefix := itemPrefix(galleryID)
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			items = append(items, &item)
			if limit > 0 && len(items) >= limit {
				break
			}
		}
		return nil
	})
	return items, err
}

func (s *Store) CountItems(galleryID string) (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(itemsBucket).Cursor()
		prefix := itemPrefix(galleryID)
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (s *Store) SaveScrollOffset(galleryID string, offset int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(ViewState{
			GalleryID:    galleryID,
			ScrollOffset: offset,
			SavedAt:      time.Now(),
		})
		if err != nil {
			return err
		}
		return tx.Bucket(stateBucket).Put([]byte(galleryID), data)
	})
}

// LoadScrollOffset returns the saved offset for a gallery, or ErrNotFound.
func (s *Store) LoadScrollOffset(galleryID string) (int, error) {
	var state ViewState
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(stateBucket).Get([]byte(galleryID))
		if data == nil {
			return fmt.Errorf("view state %q: %w", galleryID, ErrNotFound)
		}
		return json.Unmarshal(data, &state)
	})
	if err != nil {
		return 0, err
	}
	return state.ScrollOffset, nil
}

func (s *Store) DeleteGallery(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(galleriesBucket).Delete([]byte(id)); err != nil {
			return err
		}
		if err := tx.Bucket(stateBucket).Delete([]byte(id)); err != nil {
			return err
		}
		return deletePrefix(tx.Bucket(itemsBucket), itemPrefix(id))
	})
}

func deletePrefix(b *bolt.Bucket, prefix []byte) error {
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); {
		if err := c.Delete(); err != nil {
			return err
		}
		// Deleting under a cursor can skip keys; seek again instead of Next.
		k, _ = c.Seek(prefix)
	}
	return nil
}

// Package bbolt implements the ports.DictionaryStore interface using bbolt
// (embedded B+ tree). Every dictionary gets its own sub-bucket under the
// top-level "dictionaries" bucket, holding JSON metadata and a binary keyword
// list. Writes are transactional: a crash mid-write cannot corrupt previously
// committed data.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/ahotrie/internal/domain/dictionary"
)

// Bucket keys
var (
	bucketDictionaries = []byte("dictionaries")
	keyMeta            = []byte("meta")
	keyKeywords        = []byte("keywords")
)

// Store implements ports.DictionaryStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// metaJSON is everything but the keyword list.
type metaJSON struct {
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	Replacements map[string]string  `json:"replacements,omitempty"`
	Options      dictionary.Options `json:"options"`
	UpdatedAt    int64              `json:"updated_at"`
}

// SaveDictionary persists d, replacing any prior version with the same name.
func (s *Store) SaveDictionary(d *dictionary.Dictionary) error {
	if d == nil {
		return fmt.Errorf("nil dictionary")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	meta, err := json.Marshal(metaJSON{
		Name:         d.Name,
		Description:  d.Description,
		Replacements: d.Replacements,
		Options:      d.Options,
		UpdatedAt:    time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal dictionary %s: %w", d.Name, err)
	}
	keywords, err := encodeKeywords(d.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords of %s: %w", d.Name, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketDictionaries)
		if err != nil {
			return err
		}
		b, err := root.CreateBucketIfNotExists([]byte(d.Name))
		if err != nil {
			return err
		}
		if err := b.Put(keyMeta, meta); err != nil {
			return err
		}
		return b.Put(keyKeywords, keywords)
	})
}

// LoadDictionary retrieves a dictionary by name.
// Returns nil, nil if it does not exist.
func (s *Store) LoadDictionary(name string) (*dictionary.Dictionary, error) {
	var metaData, keywordData []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketDictionaries)
		if root == nil {
			return nil
		}
		b := root.Bucket([]byte(name))
		if b == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := b.Get(keyMeta); v != nil {
			metaData = append([]byte(nil), v...)
		}
		if v := b.Get(keyKeywords); v != nil {
			keywordData = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if metaData == nil {
		return nil, nil
	}

	var meta metaJSON
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal dictionary %s: %w", name, err)
	}
	d := &dictionary.Dictionary{
		Name:         meta.Name,
		Description:  meta.Description,
		Replacements: meta.Replacements,
		Options:      meta.Options,
	}
	if keywordData != nil {
		keywords, err := decodeKeywords(keywordData)
		if err != nil {
			return nil, fmt.Errorf("decode keywords of %s: %w", name, err)
		}
		d.Add(keywords...)
	}
	return d, nil
}

// ListDictionaries returns the stored dictionary names in byte order.
func (s *Store) ListDictionaries() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketDictionaries)
		if root == nil {
			return nil
		}
		return root.ForEachBucket(func(k []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// DeleteDictionary removes a dictionary.
// Idempotent: deleting a nonexistent dictionary is not an error.
func (s *Store) DeleteDictionary(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketDictionaries)
		if root == nil {
			return nil
		}
		if err := root.DeleteBucket([]byte(name)); errors.Is(err, bolt.ErrBucketNotFound) {
			return nil // idempotent
		} else {
			return err
		}
	})
}

// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "github.com/corey/ahotrie/internal/domain/dictionary"

// DictionaryStore persists named dictionaries to durable storage.
// Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: SaveDictionary must be transactional. A crash mid-write must
// not corrupt previously committed dictionaries.
type DictionaryStore interface {
	// SaveDictionary persists d under d.Name, replacing any prior version.
	SaveDictionary(d *dictionary.Dictionary) error

	// LoadDictionary retrieves a dictionary by name.
	// Returns nil, nil if no dictionary has that name.
	LoadDictionary(name string) (*dictionary.Dictionary, error)

	// ListDictionaries returns the stored dictionary names in sorted order.
	ListDictionaries() ([]string, error)

	// DeleteDictionary removes a dictionary.
	// Idempotent: deleting a nonexistent dictionary is not an error.
	DeleteDictionary(name string) error
}

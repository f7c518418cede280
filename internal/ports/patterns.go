package ports

import "github.com/corey/ahotrie/internal/domain/trie"

// Matcher finds every keyword occurrence in a text in a single pass.
// Both the native trie and the reference engine implement it so their
// results can be compared.
type Matcher interface {
	// Match returns all raw (overlapping, unfiltered) emits of text with rune
	// offsets. Order is unspecified; callers that compare results sort them.
	Match(text string) []trie.Emit
}

// Extractor turns a document's raw bytes into the plain text that gets
// scanned. Implementations exist per document format.
type Extractor interface {
	// Extract decodes data and returns its text content as valid UTF-8.
	Extract(data []byte) (string, error)
}

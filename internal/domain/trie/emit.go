package trie

import (
	"fmt"

	"github.com/corey/ahotrie/internal/domain/interval"
)

// Emit is one keyword occurrence: the closed rune span [Start, End] of the
// scanned text plus the keyword that matched it. With IgnoreCase the keyword
// is the case-folded form.
type Emit struct {
	interval.Interval
	Keyword string `json:"keyword"`
}

// NewEmit creates an Emit for the closed span [start, end].
func NewEmit(start, end int, keyword string) Emit {
	return Emit{Interval: interval.Interval{Start: start, End: end}, Keyword: keyword}
}

func (e Emit) String() string {
	return fmt.Sprintf("%d:%d=%s", e.Start, e.End, e.Keyword)
}

// Token is one piece of a tokenized text: either a keyword match or the
// unmatched text between matches. Concatenating the fragments of a
// tokenization reproduces the input.
type Token interface {
	// Fragment is the slice of the input text this token covers.
	Fragment() string
	// Match returns the emit behind a match token; ok is false for fragments.
	Match() (emit Emit, ok bool)
}

// MatchToken is a matched keyword occurrence.
type MatchToken struct {
	fragment string
	emit     Emit
}

// NewMatchToken creates a token for the text matched by emit.
func NewMatchToken(fragment string, emit Emit) MatchToken {
	return MatchToken{fragment: fragment, emit: emit}
}

func (t MatchToken) Fragment() string { return t.fragment }
func (t MatchToken) Match() (Emit, bool) { return t.emit, true }
func (t MatchToken) Emit() Emit { return t.emit }
func (t MatchToken) String() string { return t.fragment }

// FragmentToken is a run of text no keyword matched.
type FragmentToken struct {
	fragment string
}

// NewFragmentToken creates a token for unmatched text.
func NewFragmentToken(fragment string) FragmentToken {
	return FragmentToken{fragment: fragment}
}

func (t FragmentToken) Fragment() string { return t.fragment }
func (t FragmentToken) Match() (Emit, bool) { return Emit{}, false }
func (t FragmentToken) String() string { return t.fragment }

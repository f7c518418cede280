// Package ahocorasick provides a reference multi-pattern matcher backed by the
// petar-dambovaliev/aho-corasick library. It reports the same raw emits as
// the native trie (rune offsets, closed spans) so the two engines can be
// cross-checked on the same input.
package ahocorasick

import (
	"slices"
	"strings"
	"unicode"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/ahotrie/internal/domain/trie"
)

// Matcher implements ports.Matcher over a DFA-compiled automaton.
type Matcher struct {
	automaton  aho.AhoCorasick
	keywords   []string
	ignoreCase bool
}

// NewMatcher compiles keywords. Empty and duplicate keywords are dropped.
// With ignoreCase, keywords and scanned text are lower-cased rune by rune;
// the library's own case folding only covers ASCII.
func NewMatcher(keywords []string, ignoreCase bool) *Matcher {
	seen := make(map[string]bool, len(keywords))
	var patterns []string
	for _, kw := range keywords {
		if ignoreCase {
			kw = foldCase(kw)
		}
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		patterns = append(patterns, kw)
	}
	slices.Sort(patterns)

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	return &Matcher{
		automaton:  builder.Build(patterns),
		keywords:   patterns,
		ignoreCase: ignoreCase,
	}
}

// Keywords returns the compiled patterns in sorted order.
func (m *Matcher) Keywords() []string {
	return slices.Clone(m.keywords)
}

// Match returns every overlapping occurrence of every keyword in text.
func (m *Matcher) Match(text string) []trie.Emit {
	if len(m.keywords) == 0 || text == "" {
		return nil
	}
	if m.ignoreCase {
		text = foldCase(text)
	}

	runeAt := runeIndex(text)
	iter := m.automaton.IterOverlappingByte([]byte(text))
	var emits []trie.Emit
	for next := iter.Next(); next != nil; next = iter.Next() {
		match := *next
		// Library spans are half-open byte ranges.
		start := runeAt[match.Start()]
		end := runeAt[match.End()] - 1
		emits = append(emits, trie.NewEmit(start, end, m.keywords[match.Pattern()]))
	}
	return emits
}

// runeIndex maps every rune-start byte offset of s, plus len(s), to its rune
// index. Other offsets are left at zero; matches never land on them.
func runeIndex(s string) []int {
	idx := make([]int, len(s)+1)
	n := 0
	for i := range s {
		idx[i] = n
		n++
	}
	idx[len(s)] = n
	return idx
}

func foldCase(s string) string {
	return strings.Map(unicode.ToLower, s)
}

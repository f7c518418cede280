// Package trie implements an Aho-Corasick automaton: a keyword trie with
// failure links that scans a text once, in time linear in the text length,
// and reports every occurrence of every keyword.
//
// Positions are rune offsets into the scanned text; spans are closed. A Trie
// is immutable once built and safe for concurrent use.
package trie

import (
	"iter"
	"slices"
	"strings"
	"unicode"

	"github.com/corey/ahotrie/internal/domain/interval"
)

// Trie is a sealed Aho-Corasick automaton produced by Builder.Build.
type Trie struct {
	config   Config
	states   arena
	keywords []string
}

// Config returns the matching options the trie was built with.
func (t *Trie) Config() Config {
	return t.config
}

// Keywords returns the distinct non-empty keywords, case-folded when
// IgnoreCase is set, in lexicographic order.
func (t *Trie) Keywords() []string {
	return slices.Clone(t.keywords)
}

// NumStates returns the number of trie states, root included.
func (t *Trie) NumStates() int {
	return len(t.states)
}

// Root returns the root state.
func (t *Trie) Root() State {
	return t.states[RootState]
}

// State returns the state behind id.
func (t *Trie) State(id StateID) State {
	return t.states[id]
}

// States iterates over every state in creation order: the root first, then
// each state after the one it was grown from.
func (t *Trie) States() iter.Seq2[StateID, State] {
	return func(yield func(StateID, State) bool) {
		for i, s := range t.states {
			if !yield(StateID(i), s) {
				return
			}
		}
	}
}

// nextState is the goto function: follow failure links until some state has
// a transition for r. The root always has one.
func (t *Trie) nextState(current StateID, r rune) StateID {
	if t.config.IgnoreCase {
		r = unicode.ToLower(r)
	}
	for {
		if next, ok := t.states[current].NextState(r); ok {
			return next
		}
		current = t.states[current].failure
	}
}

// scan feeds text through the automaton and calls visit for every keyword of
// every state reached, in scan order. visit returns false to stop.
func (t *Trie) scan(text string, visit func(Emit) bool) {
	current := RootState
	pos := 0
	for _, r := range text {
		current = t.nextState(current, r)
		for _, o := range t.states[current].emits {
			if !visit(NewEmit(pos-o.length+1, pos, o.keyword)) {
				return
			}
		}
		pos++
	}
}

// RunParseText scans text and hands every raw emit to handler. No whole-word
// or overlap filtering is applied. With StopOnHit the scan ends at the first
// emit handler accepts.
func (t *Trie) RunParseText(text string, handler EmitHandler) {
	t.scan(text, func(e Emit) bool {
		accepted := handler.Emit(e)
		return !(accepted && t.config.StopOnHit)
	})
}

// Emits returns a single-pass iterator over the raw emits of text in scan
// order. Iteration stops when the consumer stops pulling or, with StopOnHit,
// after the first emit.
func (t *Trie) Emits(text string) iter.Seq[Emit] {
	return func(yield func(Emit) bool) {
		t.scan(text, func(e Emit) bool {
			return yield(e) && !t.config.StopOnHit
		})
	}
}

// ParseText returns every emit of text after the configured filters:
// whole-word checks first, then overlap removal.
//
//	t := trie.NewBuilder().AddKeywords("NYC", "APPL", "java_2e", "PM").Build()
//	t.ParseText("I am a PM for a java_2e platform working from APPL, NYC")
//	// [7:8=PM 16:22=java_2e 46:49=APPL 52:54=NYC]
func (t *Trie) ParseText(text string) []Emit {
	return t.ParseTextWith(text, NewDefaultEmitHandler())
}

// ParseTextWith is ParseText with a caller supplied handler. The filters run
// on a copy of the handler's emits; the handler's own list is left as
// collected.
func (t *Trie) ParseTextWith(text string, handler StatefulEmitHandler) []Emit {
	t.RunParseText(text, handler)
	return t.filter(text, handler.Emits())
}

func (t *Trie) filter(text string, collected []Emit) []Emit {
	emits := slices.Clone(collected)
	if len(emits) == 0 {
		return emits
	}

	switch {
	case t.config.OnlyWholeWords:
		runes := []rune(text)
		emits = slices.DeleteFunc(emits, func(e Emit) bool {
			return isPartialMatch(runes, e)
		})
	case t.config.OnlyWholeWordsWhiteSpaceSeparated:
		runes := []rune(text)
		emits = slices.DeleteFunc(emits, func(e Emit) bool {
			return !isWhiteSpaceSeparated(runes, e)
		})
	}

	if !t.config.AllowOverlaps {
		emits = interval.RemoveOverlaps(emits)
	}
	return emits
}

// FirstMatch returns the first match of text. Without overlaps it is the
// first emit of ParseText. With overlaps the scan stops at the first emit
// that passes the letter boundary check of OnlyWholeWords; the whitespace
// variant is not applied on this path.
func (t *Trie) FirstMatch(text string) (Emit, bool) {
	if !t.config.AllowOverlaps {
		emits := t.ParseText(text)
		if len(emits) == 0 {
			return Emit{}, false
		}
		return emits[0], true
	}

	var runes []rune
	if t.config.OnlyWholeWords {
		runes = []rune(text)
	}

	var (
		first Emit
		found bool
	)
	t.scan(text, func(e Emit) bool {
		if t.config.OnlyWholeWords && isPartialMatch(runes, e) {
			return true
		}
		first, found = e, true
		return false
	})
	return first, found
}

// ContainsMatch reports whether text has at least one match.
func (t *Trie) ContainsMatch(text string) bool {
	_, ok := t.FirstMatch(text)
	return ok
}

// Tokenize splits text into match and fragment tokens. Emits starting inside
// text already covered by an earlier token are skipped, so the fragments
// always concatenate back to text. Empty text yields no tokens.
func (t *Trie) Tokenize(text string) []Token {
	return t.TokenizeInto(text, nil)
}

// TokenizeInto appends the tokens of text to dst and returns the result.
func (t *Trie) TokenizeInto(text string, dst []Token) []Token {
	if text == "" {
		return dst
	}

	runes := []rune(text)
	last := -1
	for _, e := range t.ParseText(text) {
		if e.Start <= last {
			continue
		}
		if e.Start-last > 1 {
			dst = append(dst, NewFragmentToken(string(runes[last+1:e.Start])))
		}
		dst = append(dst, NewMatchToken(string(runes[e.Start:e.End+1]), e))
		last = e.End
	}
	if len(runes)-last > 1 {
		dst = append(dst, NewFragmentToken(string(runes[last+1:])))
	}
	return dst
}

// Replace substitutes replacements[keyword] for every matched keyword that
// has an entry; everything else is copied through. With IgnoreCase the map
// is keyed by the case-folded keyword.
func (t *Trie) Replace(text string, replacements map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, tok := range t.Tokenize(text) {
		if e, ok := tok.Match(); ok {
			if replacement, ok := replacements[e.Keyword]; ok {
				sb.WriteString(replacement)
				continue
			}
		}
		sb.WriteString(tok.Fragment())
	}
	return sb.String()
}

// isPartialMatch reports whether an alphabetic rune touches either end of e.
func isPartialMatch(runes []rune, e Emit) bool {
	if e.Start > 0 && isAlphabetic(runes[e.Start-1]) {
		return true
	}
	return e.End+1 < len(runes) && isAlphabetic(runes[e.End+1])
}

// isAlphabetic covers letters, letter numbers and the marks Unicode counts
// as alphabetic, such as Indic vowel signs.
func isAlphabetic(r rune) bool {
	return unicode.In(r, unicode.L, unicode.Nl, unicode.Other_Alphabetic)
}

// isWhiteSpaceSeparated reports whether e is bounded by whitespace or the
// text edge on both sides.
func isWhiteSpaceSeparated(runes []rune, e Emit) bool {
	if e.Start > 0 && !unicode.IsSpace(runes[e.Start-1]) {
		return false
	}
	return e.End+1 >= len(runes) || unicode.IsSpace(runes[e.End+1])
}

package ahocorasick

import (
	"cmp"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/ahotrie/internal/domain/trie"
	"github.com/corey/ahotrie/internal/ports"
)

var _ ports.Matcher = (*Matcher)(nil)

func sorted(emits []trie.Emit) []trie.Emit {
	out := slices.Clone(emits)
	slices.SortFunc(out, func(a, b trie.Emit) int {
		return cmp.Or(
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(a.End, b.End),
			strings.Compare(a.Keyword, b.Keyword),
		)
	})
	return out
}

// =============================================================================
// Reference matcher: raw emits with rune offsets
// =============================================================================

func TestMatcher_SingleKeyword(t *testing.T) {
	m := NewMatcher([]string{"login"}, false)
	assert.Equal(t, []trie.Emit{trie.NewEmit(5, 9, "login")}, m.Match("user login flow"))
}

func TestMatcher_Overlapping(t *testing.T) {
	m := NewMatcher([]string{"hers", "his", "she", "he"}, false)

	got := sorted(m.Match("ushers"))
	assert.Equal(t, []trie.Emit{
		trie.NewEmit(1, 3, "she"),
		trie.NewEmit(2, 3, "he"),
		trie.NewEmit(2, 5, "hers"),
	}, got)
}

func TestMatcher_NoMatch(t *testing.T) {
	m := NewMatcher([]string{"auth"}, false)
	assert.Empty(t, m.Match("hello world"))
	assert.Empty(t, m.Match(""))
}

func TestMatcher_NoKeywords(t *testing.T) {
	m := NewMatcher([]string{"", ""}, false)
	assert.Empty(t, m.Keywords())
	assert.Empty(t, m.Match("anything"))
}

func TestMatcher_DuplicatesDropped(t *testing.T) {
	m := NewMatcher([]string{"b", "a", "b"}, false)
	assert.Equal(t, []string{"a", "b"}, m.Keywords())
	assert.Len(t, m.Match("b"), 1)
}

func TestMatcher_CaseSensitiveByDefault(t *testing.T) {
	m := NewMatcher([]string{"login"}, false)
	assert.Empty(t, m.Match("Login"))
}

func TestMatcher_UnicodeOffsetsAreRunes(t *testing.T) {
	m := NewMatcher([]string{"börkü", "this"}, true)

	got := sorted(m.Match("LİKE THIS BÖRKÜ"))
	assert.Equal(t, []trie.Emit{
		trie.NewEmit(5, 8, "this"),
		trie.NewEmit(10, 14, "börkü"),
	}, got)
}

// =============================================================================
// Cross-check against the native trie
// =============================================================================

func TestMatcher_AgreesWithTrie(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	letters := []rune("abcÄäö ")

	randomString := func(maxLen int) string {
		n := rng.Intn(maxLen + 1)
		rs := make([]rune, n)
		for i := range rs {
			rs[i] = letters[rng.Intn(len(letters))]
		}
		return string(rs)
	}

	for range 300 {
		var keywords []string
		for range 1 + rng.Intn(6) {
			keywords = append(keywords, randomString(4))
		}
		text := randomString(40)
		ignoreCase := rng.Intn(2) == 0

		b := trie.NewBuilder().AddKeywords(keywords...)
		if ignoreCase {
			b.IgnoreCase()
		}
		var native []trie.Emit
		for e := range b.Build().Emits(text) {
			native = append(native, e)
		}

		reference := NewMatcher(keywords, ignoreCase).Match(text)
		require.Equal(t, sorted(native), sorted(reference),
			"keywords=%q text=%q ignoreCase=%v", keywords, text, ignoreCase)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func benchmarkInput() ([]string, string) {
	rng := rand.New(rand.NewSource(1))
	keywords := make([]string, 500)
	for i := range keywords {
		var sb strings.Builder
		for range 3 + rng.Intn(6) {
			sb.WriteByte(byte('a' + rng.Intn(26)))
		}
		keywords[i] = sb.String()
	}
	var sb strings.Builder
	for sb.Len() < 1024 {
		sb.WriteString(keywords[rng.Intn(len(keywords))])
		sb.WriteByte(' ')
	}
	return keywords, sb.String()
}

func BenchmarkReferenceMatch(b *testing.B) {
	keywords, text := benchmarkInput()
	m := NewMatcher(keywords, false)

	b.ResetTimer()
	for range b.N {
		_ = m.Match(text)
	}
}

func BenchmarkNativeMatch(b *testing.B) {
	keywords, text := benchmarkInput()
	tr := trie.NewBuilder().AddKeywords(keywords...).Build()

	b.ResetTimer()
	for range b.N {
		for e := range tr.Emits(text) {
			_ = e
		}
	}
}

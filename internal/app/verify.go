package app

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/corey/ahotrie/internal/adapters/ahocorasick"
	"github.com/corey/ahotrie/internal/domain/dictionary"
	"github.com/corey/ahotrie/internal/domain/trie"
	"github.com/corey/ahotrie/internal/ports"
)

// VerifyReport compares the raw emits of two matchers on the same text.
type VerifyReport struct {
	Native    int           // emits reported by the native trie
	Reference int           // emits reported by the reference matcher
	Missing   []trie.Emit   // reported by the reference only
	Extra     []trie.Emit   // reported by the native trie only
	NativeT   time.Duration // native scan time
	RefT      time.Duration // reference scan time
}

// OK reports whether both matchers agreed exactly.
func (r VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0
}

// Verify scans text with the native trie and the reference Aho-Corasick
// implementation built from the same keywords, and diffs their raw emits.
// Only IgnoreCase applies; the post-processing flags are the trie's own
// layer on top of raw matching and have no reference counterpart.
func Verify(d *dictionary.Dictionary, text string) VerifyReport {
	native := trie.NewBuilder().AddKeywords(d.Keywords...)
	if d.Options.IgnoreCase {
		native.IgnoreCase()
	}
	tr := native.Build()
	ref := ahocorasick.NewMatcher(d.Keywords, d.Options.IgnoreCase)

	nativeEmits, nativeT := timedMatch(trieMatcher{tr}, text)
	refEmits, refT := timedMatch(ref, text)

	report := VerifyReport{
		Native:    len(nativeEmits),
		Reference: len(refEmits),
		NativeT:   nativeT,
		RefT:      refT,
	}
	report.Missing, report.Extra = diffEmits(refEmits, nativeEmits)
	return report
}

// trieMatcher adapts a trie to ports.Matcher.
type trieMatcher struct{ t *trie.Trie }

func (m trieMatcher) Match(text string) []trie.Emit {
	var emits []trie.Emit
	for e := range m.t.Emits(text) {
		emits = append(emits, e)
	}
	return emits
}

func timedMatch(m ports.Matcher, text string) ([]trie.Emit, time.Duration) {
	start := time.Now()
	emits := m.Match(text)
	return emits, time.Since(start)
}

func compareEmits(a, b trie.Emit) int {
	return cmp.Or(
		cmp.Compare(a.Start, b.Start),
		cmp.Compare(a.End, b.End),
		strings.Compare(a.Keyword, b.Keyword),
	)
}

// diffEmits returns the multiset differences want-got and got-want, sorted.
func diffEmits(want, got []trie.Emit) (missing, extra []trie.Emit) {
	want = slices.Clone(want)
	got = slices.Clone(got)
	slices.SortFunc(want, compareEmits)
	slices.SortFunc(got, compareEmits)

	i, j := 0, 0
	for i < len(want) && j < len(got) {
		switch c := compareEmits(want[i], got[j]); {
		case c == 0:
			i++
			j++
		case c < 0:
			missing = append(missing, want[i])
			i++
		default:
			extra = append(extra, got[j])
			j++
		}
	}
	missing = append(missing, want[i:]...)
	extra = append(extra, got[j:]...)
	return missing, extra
}

package trie

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Degenerate inputs
// =============================================================================

func TestEdge_ZeroLengthKeyword(t *testing.T) {
	tr := NewBuilder().
		IgnoreCase().
		IgnoreOverlaps().
		OnlyWholeWords().
		AddKeyword("").
		Build()

	text := "Try a natural lip and subtle bronzer to keep all the focus on those big bright eyes"
	tokens := tr.Tokenize(text)
	require.Len(t, tokens, 1)
	_, isMatch := tokens[0].Match()
	assert.False(t, isMatch)
	assert.Equal(t, text, tokens[0].Fragment())
	assert.Empty(t, tr.Keywords())
	assert.Equal(t, 1, tr.NumStates())
}

func TestEdge_EmptyText(t *testing.T) {
	tr := NewBuilder().AddKeywords("test", "hello").Build()

	assert.Empty(t, tr.ParseText(""))
	assert.Empty(t, tr.Tokenize(""))
	assert.Equal(t, "", tr.Replace("", map[string]string{"test": "x"}))
	assert.False(t, tr.ContainsMatch(""))
	_, ok := tr.FirstMatch("")
	assert.False(t, ok)
}

func TestEdge_NoKeywords(t *testing.T) {
	tr := NewBuilder().Build()

	assert.Empty(t, tr.ParseText("anything at all"))
	tokens := tr.Tokenize("anything at all")
	require.Len(t, tokens, 1)
	assert.Equal(t, NewFragmentToken("anything at all"), tokens[0])
}

func TestEdge_SingleCharacterKeywords(t *testing.T) {
	tr := NewBuilder().AddKeywords("a", "b", "c").Build()

	assert.Len(t, tr.ParseText("abc"), 3)
	assert.Len(t, tr.ParseText("aaa"), 3)
}

func TestEdge_DuplicateKeywords(t *testing.T) {
	tr := NewBuilder().AddKeywords("test", "test", "test").Build()

	emits := tr.ParseText("test")
	require.Len(t, emits, 1)
	assert.Equal(t, NewEmit(0, 3, "test"), emits[0])
	assert.Equal(t, []string{"test"}, tr.Keywords())
}

func TestEdge_DuplicateKeywordsIgnoreCase(t *testing.T) {
	tr := NewBuilder().IgnoreCase().AddKeywords("Test", "TEST", "test").Build()

	assert.Len(t, tr.ParseText("tEsT"), 1)
	assert.Equal(t, []string{"test"}, tr.Keywords())
}

func TestEdge_KeywordIsPrefixOfAnother(t *testing.T) {
	tr := NewBuilder().AddKeywords("test", "testing").Build()

	emits := tr.ParseText("testing")
	assert.Equal(t, []Emit{NewEmit(0, 3, "test"), NewEmit(0, 6, "testing")}, emits)
}

func TestEdge_KeywordIsSuffixOfAnother(t *testing.T) {
	tr := NewBuilder().AddKeywords("ing", "testing").Build()

	emits := tr.ParseText("testing")
	assert.Equal(t, []Emit{NewEmit(4, 6, "ing"), NewEmit(0, 6, "testing")}, emits)
}

func TestEdge_OverlappingRepeats(t *testing.T) {
	tr := NewBuilder().AddKeywords("aa", "aaa").Build()

	emits := tr.ParseText("aaaa")
	assert.Equal(t, []Emit{
		NewEmit(0, 1, "aa"),
		NewEmit(1, 2, "aa"),
		NewEmit(0, 2, "aaa"),
		NewEmit(2, 3, "aa"),
		NewEmit(1, 3, "aaa"),
	}, emits)
}

func TestEdge_KeywordsWithWhitespace(t *testing.T) {
	tr := NewBuilder().AddKeywords("hello world", "   ").Build()

	assert.Equal(t, []Emit{NewEmit(0, 10, "hello world")}, tr.ParseText("hello world"))
	assert.Equal(t, []Emit{NewEmit(5, 7, "   ")}, tr.ParseText("Hello   world"))
}

func TestEdge_NewlinesAndTabs(t *testing.T) {
	tr := NewBuilder().AddKeywords("line", "tab").Build()

	emits := tr.ParseText("line1\nline2\ttab\there")
	assert.Equal(t, []Emit{
		NewEmit(0, 3, "line"),
		NewEmit(6, 9, "line"),
		NewEmit(12, 14, "tab"),
	}, emits)
}

func TestEdge_SpecialCharacters(t *testing.T) {
	tr := NewBuilder().AddKeywords("@#$", "!!!", "C++", "C#").Build()

	emits := tr.ParseText("Hello @#$ world!!! C++ and C#")
	assert.Equal(t, []Emit{
		NewEmit(6, 8, "@#$"),
		NewEmit(15, 17, "!!!"),
		NewEmit(19, 21, "C++"),
		NewEmit(27, 28, "C#"),
	}, emits)
}

func TestEdge_NumericKeywords(t *testing.T) {
	tr := NewBuilder().AddKeywords("123", "456", "789").Build()

	emits := tr.ParseText("Call 123-456-7890")
	assert.Equal(t, []Emit{
		NewEmit(5, 7, "123"),
		NewEmit(9, 11, "456"),
		NewEmit(13, 15, "789"),
	}, emits)
}

func TestEdge_InvalidUTF8(t *testing.T) {
	tr := NewBuilder().AddKeyword("ab").Build()

	// Each invalid byte decodes to one rune, so offsets stay rune offsets.
	emits := tr.ParseText("\xff\xfeab")
	assert.Equal(t, []Emit{NewEmit(2, 3, "ab")}, emits)

	var sb strings.Builder
	for _, tok := range tr.Tokenize("\xffab") {
		sb.WriteString(tok.Fragment())
	}
	assert.Equal(t, "\uFFFDab", sb.String())
}

// =============================================================================
// Option combinations
// =============================================================================

func TestEdge_IgnoreCaseWholeWords(t *testing.T) {
	tr := NewBuilder().IgnoreCase().OnlyWholeWords().AddKeyword("test").Build()

	emits := tr.ParseText("TEST testing TESTER test")
	assert.Equal(t, []Emit{NewEmit(0, 3, "test"), NewEmit(20, 23, "test")}, emits)
}

func TestEdge_StopOnHitWithIgnoreOverlaps(t *testing.T) {
	tr := NewBuilder().StopOnHit().IgnoreOverlaps().AddKeywords("ab", "abc").Build()

	emits := tr.ParseText("abc abc")
	assert.Equal(t, []Emit{NewEmit(0, 1, "ab")}, emits)
}

func TestEdge_BothWholeWordFlags(t *testing.T) {
	tr := NewBuilder().
		OnlyWholeWords().
		OnlyWholeWordsWhiteSpaceSeparated().
		AddKeyword("word").
		Build()

	// The letter test applies; "(word)" passes because parentheses are not letters.
	emits := tr.ParseText("(word) words")
	assert.Equal(t, []Emit{NewEmit(1, 4, "word")}, emits)
}

func TestEdge_BothWholeWordFlagsFirstMatch(t *testing.T) {
	tr := NewBuilder().
		OnlyWholeWords().
		OnlyWholeWordsWhiteSpaceSeparated().
		AddKeyword("a").
		Build()

	// Digits are not letters, so "a1" passes the letter test and the
	// whitespace test is not applied.
	assert.Equal(t, []Emit{NewEmit(0, 0, "a")}, tr.ParseText("a1"))
	e, ok := tr.FirstMatch("a1")
	require.True(t, ok)
	assert.Equal(t, NewEmit(0, 0, "a"), e)
	assert.True(t, tr.ContainsMatch("a1"))

	_, ok = tr.FirstMatch("ab")
	assert.False(t, ok)
	assert.False(t, tr.ContainsMatch("ab"))
}

func TestEdge_WhiteSpaceSeparatedFirstMatchUnfiltered(t *testing.T) {
	tr := NewBuilder().
		OnlyWholeWordsWhiteSpaceSeparated().
		AddKeyword("a").
		Build()

	// ParseText filters, the short-circuiting FirstMatch does not.
	assert.Empty(t, tr.ParseText("xa"))
	e, ok := tr.FirstMatch("xa")
	require.True(t, ok)
	assert.Equal(t, NewEmit(1, 1, "a"), e)
	assert.True(t, tr.ContainsMatch("xa"))

	// Without overlaps FirstMatch goes through ParseText.
	strict := NewBuilder().
		OnlyWholeWordsWhiteSpaceSeparated().
		IgnoreOverlaps().
		AddKeyword("a").
		Build()
	_, ok = strict.FirstMatch("xa")
	assert.False(t, ok)
}

func TestEdge_WholeWordsAlphabeticNeighbours(t *testing.T) {
	tr := NewBuilder().OnlyWholeWords().AddKeyword("ab").Build()

	assert.Empty(t, tr.ParseText("\u216Bab"), "letter number before the match")
	assert.Empty(t, tr.ParseText("ab\u093E"), "alphabetic vowel sign after the match")
	assert.Equal(t, []Emit{NewEmit(1, 2, "ab")}, tr.ParseText("1ab."))
}

func TestEdge_WithConfig(t *testing.T) {
	cfg := Config{IgnoreCase: true, OnlyWholeWords: true}
	tr := NewBuilder().WithConfig(cfg).AddKeyword("Abc").Build()

	assert.Equal(t, cfg, tr.Config())
	assert.False(t, tr.Config().AllowOverlaps)
	assert.Equal(t, []Emit{NewEmit(0, 2, "abc")}, tr.ParseText("ABC abcd"))
}

// =============================================================================
// Replace
// =============================================================================

func TestReplace_NoMatches(t *testing.T) {
	tr := NewBuilder().AddKeyword("xyz").Build()

	assert.Equal(t, "hello world", tr.Replace("hello world", map[string]string{"xyz": "abc"}))
}

func TestReplace_MissingReplacementKeepsText(t *testing.T) {
	tr := NewBuilder().AddKeywords("hello", "world").Build()

	got := tr.Replace("hello world", map[string]string{"hello": "hi"})
	assert.Equal(t, "hi world", got)
}

func TestReplace_EmptyReplacement(t *testing.T) {
	tr := NewBuilder().AddKeyword("remove").Build()

	assert.Equal(t, "please  this", tr.Replace("please remove this", map[string]string{"remove": ""}))
}

func TestReplace_IgnoreCaseUsesFoldedKey(t *testing.T) {
	tr := NewBuilder().IgnoreCase().AddKeyword("Hello").Build()

	got := tr.Replace("HELLO there, hello", map[string]string{"hello": "bye"})
	assert.Equal(t, "bye there, bye", got)
}

func TestReplace_NonOverlapping(t *testing.T) {
	tr := NewBuilder().IgnoreOverlaps().AddKeywords("ab", "cba", "ababc").Build()

	got := tr.Replace("ababcbab", map[string]string{"ababc": "X", "ab": "Y", "cba": "Z"})
	assert.Equal(t, "XbY", got)
}

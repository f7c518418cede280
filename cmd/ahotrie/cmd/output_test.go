package cmd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/ahotrie/internal/adapters/socket"
	"github.com/corey/ahotrie/internal/app"
	"github.com/corey/ahotrie/internal/domain/trie"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"no match", errNoMatch, 1},
		{"wrapped no match", fmt.Errorf("scan: %w", errNoMatch), 1},
		{"plain error", errors.New("boom"), 2},
		{"explicit code", exitError{code: 3, err: errors.New("x")}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
	assert.Equal(t, "no match", errNoMatch.Error())
}

func TestStoreError_LockDiagnostics(t *testing.T) {
	err := storeError(t.TempDir(), errors.New("bbolt open: timeout"))
	assert.Contains(t, err.Error(), "database is locked")

	plain := errors.New("permission denied")
	assert.Equal(t, plain, storeError(t.TempDir(), plain))
}

func TestParseReplacements(t *testing.T) {
	got, err := parseReplacements([]string{"he=they", "km=kilometres", "x="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"he": "they", "km": "kilometres", "x": ""}, got)

	got, err = parseReplacements(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"novalue", "=they"} {
		_, err := parseReplacements([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestMatchFlags_Source(t *testing.T) {
	m := matchFlags{
		dictFiles:  []string{"a.yaml"},
		builtins:   []string{"greek"},
		keywords:   []string{"he"},
		ignoreCase: true,
		noOverlaps: true,
	}
	src := m.source()
	assert.Equal(t, []string{"a.yaml"}, src.Files)
	assert.Equal(t, []string{"greek"}, src.Builtins)
	assert.Equal(t, []string{"he"}, src.Keywords)
	assert.True(t, src.Options.IgnoreCase)
	assert.True(t, src.Options.IgnoreOverlaps)
	assert.False(t, src.Options.OnlyWholeWords)

	assert.True(t, (&matchFlags{}).source().Empty())
}

func TestFormatScan(t *testing.T) {
	results := []scanResult{
		{Input: "a.txt", Emits: []trie.Emit{trie.NewEmit(0, 1, "he")}},
		{Input: "b.txt", Emits: []trie.Emit{}},
	}
	got := formatScan(results, 1500*time.Nanosecond, false)
	assert.Equal(t, "⚡ 1 emits │ 2 inputs │ 2µs\n  a.txt:0-1: he\n", got)

	colored := formatScan(results, time.Microsecond, true)
	assert.Contains(t, colored, colorBold+"⚡ 1 emits"+colorReset)
	assert.Contains(t, colored, colorMagenta+"he"+colorReset)
}

func TestFormatTokens(t *testing.T) {
	tokens := []trie.Token{
		trie.NewMatchToken("He", trie.NewEmit(0, 1, "he")),
		trie.NewFragmentToken(" said"),
	}
	assert.Equal(t, "[He] said", formatTokens(tokens, false))
	assert.Equal(t, colorBold+colorMagenta+"He"+colorReset+" said", formatTokens(tokens, true))
	assert.Empty(t, formatTokens(nil, false))
}

func TestFormatConfig(t *testing.T) {
	assert.Equal(t, "defaults", formatConfig(trie.Config{AllowOverlaps: true}))
	assert.Equal(t, "ignore-case, whole-words, no-overlaps",
		formatConfig(trie.Config{IgnoreCase: true, OnlyWholeWords: true}))
}

func TestFormatHealth(t *testing.T) {
	got := formatHealth(&socket.HealthResult{
		Status: "ok",
		Uptime: "3m0s",
		Dictionary: socket.DictionaryInfo{
			Name: "pronouns", Keywords: 6, States: 13, Reloads: 2,
			Config: trie.Config{AllowOverlaps: true, OnlyWholeWords: true},
		},
	}, false)
	assert.Contains(t, got, "⚡ daemon ok │ 3m0s")
	assert.Contains(t, got, "dictionary  pronouns")
	assert.Contains(t, got, "keywords    6")
	assert.Contains(t, got, "options     whole-words")
	assert.Contains(t, got, "reloads     2")
}

func TestFormatDictList(t *testing.T) {
	assert.Equal(t, "no dictionaries\n", formatDictList(nil, false))

	got := formatDictList([]dictEntry{
		{Name: "greek", Origin: "builtin", Keywords: 8, Description: "letters"},
		{Name: "brands", Origin: "stored", Keywords: 120},
	}, false)
	assert.Equal(t,
		"  greek   builtin      8 keywords  letters\n"+
			"  brands  stored     120 keywords\n", got)
}

func TestFormatVerify(t *testing.T) {
	ok := formatVerify(app.VerifyReport{Native: 3, Reference: 3}, false)
	assert.Contains(t, ok, "⚡ engines agree │ 3 emits")

	bad := formatVerify(app.VerifyReport{
		Native: 1, Reference: 2,
		Missing: []trie.Emit{trie.NewEmit(2, 3, "he")},
	}, false)
	assert.Contains(t, bad, "⚡ engines disagree │ native 1 │ reference 2")
	assert.Contains(t, bad, "missing 2:3=he")
}

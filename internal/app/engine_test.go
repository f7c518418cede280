package app

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/ahotrie/internal/domain/dictionary"
	"github.com/corey/ahotrie/internal/domain/trie"
	"github.com/corey/ahotrie/internal/ports"
)

var _ ports.Matcher = (*Engine)(nil)

func pronounDict() *dictionary.Dictionary {
	d := dictionary.New("pronouns", "he", "she", "his", "hers")
	d.SetReplacement("he", "they")
	d.SetReplacement("she", "they")
	d.Options.OnlyWholeWords = true
	return d
}

// =============================================================================
// Queries
// =============================================================================

func TestEngine_NoDictionary(t *testing.T) {
	e := NewEngine()

	_, err := e.ParseText("he")
	assert.ErrorIs(t, err, ErrNoDictionary)
	_, err = e.Tokenize("he")
	assert.ErrorIs(t, err, ErrNoDictionary)
	_, err = e.Replace("he", nil)
	assert.ErrorIs(t, err, ErrNoDictionary)
	_, _, err = e.FirstMatch("he")
	assert.ErrorIs(t, err, ErrNoDictionary)
	_, err = e.ContainsMatch("he")
	assert.ErrorIs(t, err, ErrNoDictionary)

	assert.Nil(t, e.Match("he"))
	assert.Nil(t, e.Dictionary())
	assert.Nil(t, e.Trie())
	assert.Equal(t, 0, e.Loads())
}

func TestEngine_Queries(t *testing.T) {
	e := NewEngine()
	stats := e.Load(pronounDict())
	assert.Equal(t, "pronouns", stats.Name)
	assert.Equal(t, 4, stats.Keywords)
	assert.Equal(t, 10, stats.States)

	emits, err := e.ParseText("ushers: she and his")
	require.NoError(t, err)
	assert.Equal(t, []trie.Emit{
		trie.NewEmit(8, 10, "she"),
		trie.NewEmit(16, 18, "his"),
	}, emits)

	first, ok, err := e.FirstMatch("ushers: she and his")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, trie.NewEmit(8, 10, "she"), first)

	found, err := e.ContainsMatch("ushers")
	require.NoError(t, err)
	assert.False(t, found)

	tokens, err := e.Tokenize("so he did")
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "he", tokens[1].Fragment())
}

func TestEngine_Replace(t *testing.T) {
	e := NewEngine()
	e.Load(pronounDict())

	got, err := e.Replace("he said she would", nil)
	require.NoError(t, err)
	assert.Equal(t, "they said they would", got)

	got, err = e.Replace("he said she would", map[string]string{"she": "I"})
	require.NoError(t, err)
	assert.Equal(t, "he said I would", got)
}

func TestEngine_ReplaceIgnoreCase(t *testing.T) {
	d := dictionary.New("greek")
	d.SetReplacement("Alpha", "α")
	d.Options.IgnoreCase = true

	e := NewEngine()
	e.Load(d)

	got, err := e.Replace("ALPHA alpha", nil)
	require.NoError(t, err)
	assert.Equal(t, "α α", got)
}

func TestEngine_MatchIsRaw(t *testing.T) {
	e := NewEngine()
	e.Load(pronounDict())

	// Whole-word filtering drops everything in "ushers"; raw matching does not.
	emits, err := e.ParseText("ushers")
	require.NoError(t, err)
	assert.Empty(t, emits)
	assert.Len(t, e.Match("ushers"), 3)
}

func TestEngine_LoadKeepsCopy(t *testing.T) {
	d := pronounDict()
	e := NewEngine()
	e.Load(d)

	d.Add("they")
	d.Options.OnlyWholeWords = false

	assert.NotContains(t, e.Dictionary().Keywords, "they")
	found, err := e.ContainsMatch("they")
	require.NoError(t, err)
	assert.False(t, found)
}

// =============================================================================
// Reload under load
// =============================================================================

func TestEngine_ConcurrentReload(t *testing.T) {
	a := dictionary.New("a", "alpha")
	b := dictionary.New("b", "beta")

	e := NewEngine()
	e.Load(a)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 8)

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				emits, err := e.ParseText("alpha beta")
				if err != nil || len(emits) != 1 {
					errs <- "query saw a half-applied reload"
					return
				}
			}
		}()
	}

	for i := range 200 {
		if i%2 == 0 {
			e.Load(b)
		} else {
			e.Load(a)
		}
	}
	close(stop)
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
	assert.Equal(t, 201, e.Loads())
}

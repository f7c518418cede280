package app

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/corey/ahotrie/internal/domain/dictionary"
	"github.com/corey/ahotrie/internal/domain/trie"
	"github.com/corey/ahotrie/internal/logger"
)

// ErrNoDictionary is returned by queries before any dictionary is loaded.
var ErrNoDictionary = errors.New("no dictionary loaded")

// snapshot is one immutable dictionary + trie pair. Queries load the current
// snapshot once and never observe a half-applied reload.
type snapshot struct {
	dict         *dictionary.Dictionary
	trie         *trie.Trie
	replacements map[string]string
	built        time.Duration
}

// Engine answers matching queries against the active dictionary. Load swaps
// the dictionary atomically; queries in flight keep the trie they started
// with. Safe for concurrent use.
type Engine struct {
	current atomic.Pointer[snapshot]
	loads   atomic.Int64
}

// NewEngine returns an engine with no dictionary loaded.
func NewEngine() *Engine {
	return &Engine{}
}

// BuildStats describes a completed Load.
type BuildStats struct {
	Name     string
	Keywords int
	States   int
	Elapsed  time.Duration
}

// Load builds d and makes it the active dictionary. The engine keeps its own
// copy, so the caller may go on mutating d.
func (e *Engine) Load(d *dictionary.Dictionary) BuildStats {
	d = d.Clone()
	start := time.Now()
	tr := d.Build()
	snap := &snapshot{
		dict:         d,
		trie:         tr,
		replacements: d.ReplacementMap(),
		built:        time.Since(start),
	}
	e.current.Store(snap)
	e.loads.Add(1)

	stats := BuildStats{
		Name:     d.Name,
		Keywords: len(d.Keywords),
		States:   tr.NumStates(),
		Elapsed:  snap.built,
	}
	logger.DebugLogger.Printf("loaded dictionary %s: %d keywords, %d states in %v",
		stats.Name, stats.Keywords, stats.States, stats.Elapsed)
	return stats
}

// Loads counts how many dictionaries have been loaded, the first included.
func (e *Engine) Loads() int {
	return int(e.loads.Load())
}

// Current returns the active dictionary and its trie from the same load, or
// nils. Callers must not modify the dictionary.
func (e *Engine) Current() (*dictionary.Dictionary, *trie.Trie) {
	if snap := e.current.Load(); snap != nil {
		return snap.dict, snap.trie
	}
	return nil, nil
}

// Dictionary returns the active dictionary, or nil. Callers must not modify it.
func (e *Engine) Dictionary() *dictionary.Dictionary {
	if snap := e.current.Load(); snap != nil {
		return snap.dict
	}
	return nil
}

// Trie returns the active trie, or nil.
func (e *Engine) Trie() *trie.Trie {
	if snap := e.current.Load(); snap != nil {
		return snap.trie
	}
	return nil
}

func (e *Engine) snapshot() (*snapshot, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNoDictionary
	}
	return snap, nil
}

// ParseText returns the post-processed emits of text.
func (e *Engine) ParseText(text string) ([]trie.Emit, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.trie.ParseText(text), nil
}

// Tokenize splits text into fragment and match tokens.
func (e *Engine) Tokenize(text string) ([]trie.Token, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.trie.Tokenize(text), nil
}

// Replace substitutes matches in text. An empty replacements map means the
// active dictionary's own replacements.
func (e *Engine) Replace(text string, replacements map[string]string) (string, error) {
	snap, err := e.snapshot()
	if err != nil {
		return "", err
	}
	if len(replacements) == 0 {
		replacements = snap.replacements
	}
	return snap.trie.Replace(text, replacements), nil
}

// FirstMatch returns the leftmost emit of text.
func (e *Engine) FirstMatch(text string) (trie.Emit, bool, error) {
	snap, err := e.snapshot()
	if err != nil {
		return trie.Emit{}, false, err
	}
	emit, ok := snap.trie.FirstMatch(text)
	return emit, ok, nil
}

// ContainsMatch reports whether text has any emit.
func (e *Engine) ContainsMatch(text string) (bool, error) {
	snap, err := e.snapshot()
	if err != nil {
		return false, err
	}
	return snap.trie.ContainsMatch(text), nil
}

// Match returns the raw overlapping emits of text, before any filtering.
// It lets the engine stand in wherever a ports.Matcher is expected.
func (e *Engine) Match(text string) []trie.Emit {
	snap := e.current.Load()
	if snap == nil {
		return nil
	}
	return trieMatcher{snap.trie}.Match(text)
}

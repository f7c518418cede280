package trie

import "slices"

// Builder collects keywords and options for a Trie. Builders are not safe
// for concurrent use; the Tries they build are.
//
//	t := trie.NewBuilder().
//		IgnoreCase().
//		OnlyWholeWords().
//		AddKeywords("NYC", "APPL", "java_2e", "PM").
//		Build()
type Builder struct {
	config   Config
	keywords []string
}

// NewBuilder returns a Builder with DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// AddKeyword adds one keyword. Empty keywords are ignored at build time.
func (b *Builder) AddKeyword(keyword string) *Builder {
	b.keywords = append(b.keywords, keyword)
	return b
}

// AddKeywords adds several keywords.
func (b *Builder) AddKeywords(keywords ...string) *Builder {
	b.keywords = append(b.keywords, keywords...)
	return b
}

// IgnoreCase matches regardless of letter case.
func (b *Builder) IgnoreCase() *Builder {
	b.config.IgnoreCase = true
	return b
}

// IgnoreOverlaps suppresses overlapping emits.
func (b *Builder) IgnoreOverlaps() *Builder {
	b.config.AllowOverlaps = false
	return b
}

// OnlyWholeWords rejects matches adjacent to a letter.
func (b *Builder) OnlyWholeWords() *Builder {
	b.config.OnlyWholeWords = true
	return b
}

// OnlyWholeWordsWhiteSpaceSeparated rejects matches not bounded by
// whitespace or the text edge.
func (b *Builder) OnlyWholeWordsWhiteSpaceSeparated() *Builder {
	b.config.OnlyWholeWordsWhiteSpaceSeparated = true
	return b
}

// StopOnHit stops scanning at the first accepted match.
func (b *Builder) StopOnHit() *Builder {
	b.config.StopOnHit = true
	return b
}

// WithConfig replaces every option at once.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// Config returns the options the next Build will use.
func (b *Builder) Config() Config {
	return b.config
}

// Build inserts every keyword into a fresh trie, links failure states and
// returns the sealed automaton. The Builder can keep being used; later
// changes do not affect Tries already built.
func (b *Builder) Build() *Trie {
	t := &Trie{
		config: b.config,
		states: arena{newState(0)},
	}

	seen := make(map[string]struct{}, len(b.keywords))
	for _, keyword := range b.keywords {
		if keyword == "" {
			continue
		}
		if t.config.IgnoreCase {
			keyword = foldCase(keyword)
		}
		terminal := t.states.addPath(RootState, keyword)
		t.states[terminal].addEmit(keyword)
		if _, ok := seen[keyword]; !ok {
			seen[keyword] = struct{}{}
			t.keywords = append(t.keywords, keyword)
		}
	}
	slices.Sort(t.keywords)

	t.states.constructFailureStates()
	return t
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/corey/ahotrie/internal/app"
	"github.com/corey/ahotrie/internal/domain/dictionary"
)

// matchFlags selects the dictionary and matching options of a command.
type matchFlags struct {
	dictFiles []string
	stored    []string
	builtins  []string
	keywords  []string

	ignoreCase      bool
	wholeWords      bool
	whitespaceWords bool
	noOverlaps      bool
	stopOnHit       bool
}

func (m *matchFlags) register(f *pflag.FlagSet) {
	f.StringArrayVar(&m.dictFiles, "dict-file", nil, "YAML dictionary file or directory (repeatable)")
	f.StringArrayVarP(&m.stored, "dict", "d", nil, "Stored dictionary name (repeatable)")
	f.StringArrayVar(&m.builtins, "builtin", nil, "Embedded dictionary name (repeatable)")
	f.StringArrayVarP(&m.keywords, "keyword", "k", nil, "Keyword (repeatable)")
	m.registerOptions(f)
}

func (m *matchFlags) registerOptions(f *pflag.FlagSet) {
	f.BoolVarP(&m.ignoreCase, "ignore-case", "i", false, "Case insensitive")
	f.BoolVarP(&m.wholeWords, "word-regexp", "w", false, "Only matches not touching a letter")
	f.BoolVar(&m.whitespaceWords, "whitespace-words", false, "Only matches bounded by whitespace")
	f.BoolVar(&m.noOverlaps, "no-overlaps", false, "Drop overlapping matches (longest, then leftmost, wins)")
	f.BoolVar(&m.stopOnHit, "stop-on-hit", false, "Stop at the first match")
}

func (m *matchFlags) options() dictionary.Options {
	return dictionary.Options{
		IgnoreCase:               m.ignoreCase,
		OnlyWholeWords:           m.wholeWords,
		OnlyWholeWordsWhiteSpace: m.whitespaceWords,
		IgnoreOverlaps:           m.noOverlaps,
		StopOnHit:                m.stopOnHit,
	}
}

func (m *matchFlags) source() app.Source {
	return app.Source{
		Files:    m.dictFiles,
		Stored:   m.stored,
		Builtins: m.builtins,
		Keywords: m.keywords,
		Options:  m.options(),
	}
}

// load resolves the flags into one dictionary.
func (m *matchFlags) load() (*dictionary.Dictionary, error) {
	src := m.source()
	if src.Empty() {
		return nil, fmt.Errorf("no keywords: use -k, --dict-file, --dict or --builtin")
	}
	d, err := src.Load(dbPath())
	if err != nil {
		return nil, storeError(projectRoot(), err)
	}
	return d, nil
}

// parseReplacements parses keyword=replacement pairs.
func parseReplacements(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid replacement %q: want keyword=replacement", p)
		}
		out[k] = v
	}
	return out, nil
}

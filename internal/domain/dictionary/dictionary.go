// Package dictionary defines named keyword sets: the keywords a trie is built
// from, optional replacement text per keyword and the matching options to
// build with. Dictionaries are stored as YAML files or in the bbolt store.
//
// A dictionary file looks like:
//
//	name: pronouns
//	description: English personal pronouns
//	keywords: [he, she, his, hers]
//	replacements:
//	  he: they
//	options:
//	  ignore_case: true
//	  only_whole_words: true
package dictionary

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/corey/ahotrie/internal/domain/trie"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid dictionary")

// Options are the matching flags a dictionary is built with.
type Options struct {
	IgnoreCase               bool `yaml:"ignore_case,omitempty" json:"ignore_case,omitempty"`
	OnlyWholeWords           bool `yaml:"only_whole_words,omitempty" json:"only_whole_words,omitempty"`
	OnlyWholeWordsWhiteSpace bool `yaml:"only_whole_words_whitespace,omitempty" json:"only_whole_words_whitespace,omitempty"`
	IgnoreOverlaps           bool `yaml:"ignore_overlaps,omitempty" json:"ignore_overlaps,omitempty"`
	StopOnHit                bool `yaml:"stop_on_hit,omitempty" json:"stop_on_hit,omitempty"`
}

// TrieConfig converts o to a trie.Config.
func (o Options) TrieConfig() trie.Config {
	return trie.Config{
		AllowOverlaps:                     !o.IgnoreOverlaps,
		OnlyWholeWords:                    o.OnlyWholeWords,
		OnlyWholeWordsWhiteSpaceSeparated: o.OnlyWholeWordsWhiteSpace,
		IgnoreCase:                        o.IgnoreCase,
		StopOnHit:                         o.StopOnHit,
	}
}

// Merge returns o with every flag set in other also set.
func (o Options) Merge(other Options) Options {
	o.IgnoreCase = o.IgnoreCase || other.IgnoreCase
	o.OnlyWholeWords = o.OnlyWholeWords || other.OnlyWholeWords
	o.OnlyWholeWordsWhiteSpace = o.OnlyWholeWordsWhiteSpace || other.OnlyWholeWordsWhiteSpace
	o.IgnoreOverlaps = o.IgnoreOverlaps || other.IgnoreOverlaps
	o.StopOnHit = o.StopOnHit || other.StopOnHit
	return o
}

// Dictionary is a named keyword set. Keywords is kept sorted and unique.
type Dictionary struct {
	Name         string            `yaml:"name" json:"name"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	Keywords     []string          `yaml:"keywords" json:"keywords"`
	Replacements map[string]string `yaml:"replacements,omitempty" json:"replacements,omitempty"`
	Options      Options           `yaml:"options,omitempty" json:"options"`
}

// New returns a dictionary called name holding keywords.
func New(name string, keywords ...string) *Dictionary {
	d := &Dictionary{Name: name}
	d.Add(keywords...)
	return d
}

// Parse decodes one YAML dictionary, normalizes it and validates it.
func Parse(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	d.normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads and parses the dictionary at path.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Marshal encodes d as YAML.
func (d *Dictionary) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Validate checks the name and that every replacement key is a keyword.
func (d *Dictionary) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if strings.ContainsFunc(d.Name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/' || r == '\\'
	}) {
		return fmt.Errorf("%w: name %q contains whitespace or a path separator", ErrInvalid, d.Name)
	}
	for _, k := range slices.Sorted(maps.Keys(d.Replacements)) {
		if k == "" {
			return fmt.Errorf("%w: %s: empty replacement key", ErrInvalid, d.Name)
		}
		if _, found := slices.BinarySearch(d.Keywords, k); !found {
			return fmt.Errorf("%w: %s: replacement for unknown keyword %q", ErrInvalid, d.Name, k)
		}
	}
	return nil
}

// normalize drops empty keywords, adds replacement keys as keywords and
// sorts.
func (d *Dictionary) normalize() {
	keywords := d.Keywords
	d.Keywords = nil
	d.Add(keywords...)
	for k := range d.Replacements {
		if k != "" {
			d.Add(k)
		}
	}
}

// Add inserts keywords, skipping empty and already present ones, and returns
// how many were added.
func (d *Dictionary) Add(keywords ...string) int {
	added := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		i, found := slices.BinarySearch(d.Keywords, kw)
		if found {
			continue
		}
		d.Keywords = slices.Insert(d.Keywords, i, kw)
		added++
	}
	return added
}

// Remove deletes keywords and their replacements and returns how many
// keywords were removed.
func (d *Dictionary) Remove(keywords ...string) int {
	removed := 0
	for _, kw := range keywords {
		i, found := slices.BinarySearch(d.Keywords, kw)
		if !found {
			continue
		}
		d.Keywords = slices.Delete(d.Keywords, i, i+1)
		delete(d.Replacements, kw)
		removed++
	}
	return removed
}

// SetReplacement maps keyword to replacement, adding keyword if needed.
func (d *Dictionary) SetReplacement(keyword, replacement string) {
	if keyword == "" {
		return
	}
	d.Add(keyword)
	if d.Replacements == nil {
		d.Replacements = make(map[string]string)
	}
	d.Replacements[keyword] = replacement
}

// ReplacementMap returns the replacements keyed the way the built trie
// reports keywords: case-folded when IgnoreCase is set. When two keys fold to
// the same form the lexicographically smaller original key wins.
func (d *Dictionary) ReplacementMap() map[string]string {
	out := make(map[string]string, len(d.Replacements))
	for _, k := range slices.Sorted(maps.Keys(d.Replacements)) {
		key := k
		if d.Options.IgnoreCase {
			key = strings.Map(unicode.ToLower, k)
		}
		if _, ok := out[key]; !ok {
			out[key] = d.Replacements[k]
		}
	}
	return out
}

// Builder returns a trie.Builder loaded with d's keywords and options.
func (d *Dictionary) Builder() *trie.Builder {
	return trie.NewBuilder().
		WithConfig(d.Options.TrieConfig()).
		AddKeywords(d.Keywords...)
}

// Build builds the trie for d.
func (d *Dictionary) Build() *trie.Trie {
	return d.Builder().Build()
}

// Clone returns a deep copy of d.
func (d *Dictionary) Clone() *Dictionary {
	c := *d
	c.Keywords = slices.Clone(d.Keywords)
	c.Replacements = maps.Clone(d.Replacements)
	return &c
}

// Combine merges dicts into one dictionary called name. Keywords are the
// union, options are ORed, and on conflicting replacements the later
// dictionary wins.
func Combine(name string, dicts ...*Dictionary) *Dictionary {
	out := New(name)
	var descriptions []string
	for _, d := range dicts {
		if d == nil {
			continue
		}
		out.Add(d.Keywords...)
		for k, v := range d.Replacements {
			out.SetReplacement(k, v)
		}
		out.Options = out.Options.Merge(d.Options)
		if d.Description != "" {
			descriptions = append(descriptions, d.Description)
		}
	}
	out.Description = strings.Join(descriptions, "; ")
	return out
}

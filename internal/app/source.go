package app

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/corey/ahotrie/dictionaries"
	"github.com/corey/ahotrie/internal/adapters/bbolt"
	"github.com/corey/ahotrie/internal/domain/dictionary"
)

// Source says where the active dictionary comes from. Every part is
// optional; whatever is named is combined into one dictionary, and Options
// are ORed on top.
type Source struct {
	Files    []string           // YAML dictionary files or directories of them
	Stored   []string           // dictionary names in the bbolt store
	Builtins []string           // embedded dictionary names
	Keywords []string           // inline keywords
	Options  dictionary.Options // flag overrides
}

// Empty reports whether s names no dictionary at all.
func (s Source) Empty() bool {
	return len(s.Files) == 0 && len(s.Stored) == 0 && len(s.Builtins) == 0 && len(s.Keywords) == 0
}

// Name is a label for the combined dictionary.
func (s Source) Name() string {
	var parts []string
	parts = append(parts, s.Builtins...)
	parts = append(parts, s.Stored...)
	for _, f := range s.Files {
		parts = append(parts, baseName(f))
	}
	if len(s.Keywords) > 0 {
		parts = append(parts, "inline")
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, "+")
}

// Load reads every part of s and combines them. dbPath is only opened when
// stored dictionaries are named, and is closed again before returning so the
// CLI and a running daemon can share it.
func (s Source) Load(dbPath string) (*dictionary.Dictionary, error) {
	var dicts []*dictionary.Dictionary

	if len(s.Builtins) > 0 {
		builtins, err := Builtins()
		if err != nil {
			return nil, err
		}
		for _, name := range s.Builtins {
			i := slices.IndexFunc(builtins, func(d *dictionary.Dictionary) bool { return d.Name == name })
			if i < 0 {
				return nil, fmt.Errorf("unknown builtin dictionary %q", name)
			}
			dicts = append(dicts, builtins[i])
		}
	}

	if len(s.Stored) > 0 {
		stored, err := loadStored(dbPath, s.Stored)
		if err != nil {
			return nil, err
		}
		dicts = append(dicts, stored...)
	}

	for _, path := range s.Files {
		loaded, err := LoadPath(path)
		if err != nil {
			return nil, err
		}
		dicts = append(dicts, loaded...)
	}

	if len(s.Keywords) > 0 {
		dicts = append(dicts, dictionary.New("inline", s.Keywords...))
	}

	if len(dicts) == 1 {
		d := dicts[0].Clone()
		d.Options = d.Options.Merge(s.Options)
		return d, nil
	}
	d := dictionary.Combine(s.Name(), dicts...)
	d.Options = d.Options.Merge(s.Options)
	return d, nil
}

// LoadPath loads one dictionary file, or every dictionary file in a directory.
func LoadPath(path string) ([]*dictionary.Dictionary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	if !info.IsDir() {
		d, err := dictionary.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return []*dictionary.Dictionary{d}, nil
	}
	dicts, err := dictionary.LoadFromFS(os.DirFS(path), ".")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(dicts) == 0 {
		return nil, fmt.Errorf("no dictionary files in %s", path)
	}
	return dicts, nil
}

func loadStored(dbPath string, names []string) ([]*dictionary.Dictionary, error) {
	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	var dicts []*dictionary.Dictionary
	for _, name := range names {
		d, err := store.LoadDictionary(name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		if d == nil {
			return nil, fmt.Errorf("dictionary %q not found in %s", name, dbPath)
		}
		dicts = append(dicts, d)
	}
	return dicts, nil
}

// Builtins returns the dictionaries embedded in the binary, sorted by file name.
func Builtins() ([]*dictionary.Dictionary, error) {
	dicts, err := dictionary.LoadFromFS(dictionaries.FS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("load builtin dictionaries: %w", err)
	}
	return dicts, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

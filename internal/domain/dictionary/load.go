package dictionary

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// LoadFromFS parses every .yaml or .yml file in dir, one dictionary per
// file, in file name order. Dictionary names must be unique across files.
func LoadFromFS(fsys fs.FS, dir string) ([]*Dictionary, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dictionary dir %q: %w", dir, err)
	}

	// Sort for deterministic load order
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var dicts []*Dictionary
	seen := make(map[string]string) // name → source file

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		d, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}

		if prev, ok := seen[d.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate name %q (first in %s, again in %s)", ErrInvalid, d.Name, prev, entry.Name())
		}
		seen[d.Name] = entry.Name()

		dicts = append(dicts, d)
	}

	return dicts, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Package dictionaries embeds the built-in YAML dictionaries shipped with the
// binary. It has no imports so any package can depend on it.
//
// Usage:
//
//	dictionary.LoadFromFS(dictionaries.FS, "builtin")
package dictionaries

import "embed"

//go:embed builtin/*.yaml
var FS embed.FS

// ahotrie finds every occurrence of a set of keywords in text in one pass,
// using an Aho-Corasick trie. Dictionaries come from YAML files, the
// embedded builtins or the project's bbolt store.
package main

import (
	"fmt"
	"os"

	"github.com/corey/ahotrie/cmd/ahotrie/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		code := cmd.ExitCode(err)
		if msg := err.Error(); code != 1 && msg != "" {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
		os.Exit(code)
	}
}

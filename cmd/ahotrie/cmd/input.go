package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/adapters/extract"
)

// input is one text to scan, named for output.
type input struct {
	Name string
	Text string
}

// readInputs collects the texts a query command scans: --text, each file
// argument, or stdin when neither is given.
func readInputs(cmd *cobra.Command, text string, files []string) ([]input, error) {
	var inputs []input
	if cmd.Flags().Changed("text") {
		inputs = append(inputs, input{Name: "(text)", Text: text})
	}
	for _, path := range files {
		t, err := extract.File(path)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input{Name: path, Text: t})
	}
	if len(inputs) > 0 {
		return inputs, nil
	}

	if stdinIsTerminal(cmd) {
		return nil, fmt.Errorf("no input: pass files, --text, or pipe text on stdin")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	t, err := extract.Plain{}.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("decode stdin: %w", err)
	}
	return []input{{Name: "(stdin)", Text: t}}, nil
}

// stdinIsTerminal reports whether the command reads from an interactive
// terminal. Tests set their own input with SetIn and never block here.
func stdinIsTerminal(cmd *cobra.Command) bool {
	if f, ok := cmd.InOrStdin().(interface{ Fd() uintptr }); ok && f.Fd() == 0 {
		return isStdinTTY()
	}
	return false
}

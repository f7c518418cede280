package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/domain/trie"
)

var firstFlags queryFlags

var firstCmd = &cobra.Command{
	Use:   "first [flags] [file...]",
	Short: "Print the first keyword match of each input",
	Long: "Prints the first match in scan order: the one whose end comes first.\n" +
		"Exits 1 when no input matched.",
	RunE: runFirst,
}

var containsFlags queryFlags

var containsCmd = &cobra.Command{
	Use:   "contains [flags] [file...]",
	Short: "List the inputs that contain a keyword",
	Long:  "Prints the name of each input with at least one match, like grep -l.\nExits 1 when no input matched.",
	RunE:  runContains,
}

func init() {
	firstFlags.register(firstCmd.Flags())
	containsFlags.register(containsCmd.Flags())
}

type firstOutput struct {
	Input string     `json:"input"`
	Found bool       `json:"found"`
	Emit  *trie.Emit `json:"emit,omitempty"`
}

func runFirst(cmd *cobra.Command, args []string) error {
	q, err := firstFlags.querier()
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, firstFlags.text, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := resolveColor(rootColor)
	var outputs []firstOutput
	found := 0
	for _, in := range inputs {
		e, ok, err := q.FirstMatch(in.Text)
		if err != nil {
			return fmt.Errorf("first %s: %w", in.Name, err)
		}
		o := firstOutput{Input: in.Name, Found: ok}
		if ok {
			o.Emit = &e
			found++
			if !firstFlags.jsonMode {
				fmt.Fprintln(out, formatEmit(in.Name, e, color))
			}
		}
		outputs = append(outputs, o)
	}

	if firstFlags.jsonMode {
		if err := writeJSON(out, outputs); err != nil {
			return err
		}
	}
	if found == 0 {
		return errNoMatch
	}
	return nil
}

func runContains(cmd *cobra.Command, args []string) error {
	q, err := containsFlags.querier()
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, containsFlags.text, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var matched []string
	for _, in := range inputs {
		_, ok, err := q.FirstMatch(in.Text)
		if err != nil {
			return fmt.Errorf("contains %s: %w", in.Name, err)
		}
		if ok {
			matched = append(matched, in.Name)
		}
	}

	if containsFlags.jsonMode {
		if matched == nil {
			matched = []string{}
		}
		if err := writeJSON(out, matched); err != nil {
			return err
		}
	} else {
		for _, name := range matched {
			fmt.Fprintln(out, name)
		}
	}
	if len(matched) == 0 {
		return errNoMatch
	}
	return nil
}

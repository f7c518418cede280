package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

var (
	replaceFlags queryFlags
	replaceWith  []string
)

var replaceCmd = &cobra.Command{
	Use:   "replace [flags] [file...]",
	Short: "Substitute keyword matches",
	Long: "Replaces every match with its replacement text. Replacements come from\n" +
		"--with keyword=replacement pairs, or from the dictionary's own\n" +
		"replacements when no --with is given. Matches without a replacement are\n" +
		"kept as they are.",
	Example: "  ahotrie replace -k he --with he=they -t 'he said'\n" +
		"  ahotrie replace --builtin greek -i notes.txt",
	RunE: runReplace,
}

func init() {
	f := replaceCmd.Flags()
	replaceFlags.register(f)
	f.StringArrayVar(&replaceWith, "with", nil, "keyword=replacement (repeatable)")
}

type replaceOutput struct {
	Input string `json:"input"`
	Text  string `json:"text"`
}

func runReplace(cmd *cobra.Command, args []string) error {
	replacements, err := parseReplacements(replaceWith)
	if err != nil {
		return err
	}
	// Keywords named only through --with still have to be matched.
	qf := replaceFlags
	if !qf.daemon {
		qf.keywords = append(slices.Clone(qf.keywords), slices.Sorted(maps.Keys(replacements))...)
	}

	q, err := qf.querier()
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, replaceFlags.text, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var outputs []replaceOutput
	for _, in := range inputs {
		text, err := q.Replace(in.Text, replacements)
		if err != nil {
			return fmt.Errorf("replace %s: %w", in.Name, err)
		}
		if replaceFlags.jsonMode {
			outputs = append(outputs, replaceOutput{Input: in.Name, Text: text})
			continue
		}
		fmt.Fprintln(out, text)
	}

	if replaceFlags.jsonMode {
		return writeJSON(out, outputs)
	}
	return nil
}

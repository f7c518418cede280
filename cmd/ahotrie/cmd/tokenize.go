package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/adapters/socket"
)

var tokenizeFlags queryFlags

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] [file...]",
	Short: "Print the text with keyword matches marked",
	Long: "Splits the text into matched keywords and the fragments between them.\n" +
		"Matches are highlighted on a color terminal and bracketed otherwise.",
	Example: "  ahotrie tokenize -k sugar -w -t 'sugar, sugarcane'\n" +
		"  ahotrie tokenize --builtin units --json report.txt",
	RunE: runTokenize,
}

func init() {
	tokenizeFlags.register(tokenizeCmd.Flags())
}

type tokenizeOutput struct {
	Input string `json:"input"`
	socket.TokenizeResult
}

func runTokenize(cmd *cobra.Command, args []string) error {
	q, err := tokenizeFlags.querier()
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, tokenizeFlags.text, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := resolveColor(rootColor)
	var outputs []tokenizeOutput
	matches := 0
	for _, in := range inputs {
		tokens, err := q.Tokenize(in.Text)
		if err != nil {
			return fmt.Errorf("tokenize %s: %w", in.Name, err)
		}
		result := socket.NewTokenizeResult(tokens)
		matches += result.Matches

		if tokenizeFlags.jsonMode {
			outputs = append(outputs, tokenizeOutput{Input: in.Name, TokenizeResult: result})
			continue
		}
		if len(inputs) > 1 {
			fmt.Fprintln(out, palette(color).paint(colorCyan, "==> "+in.Name+" <=="))
		}
		fmt.Fprintln(out, formatTokens(tokens, color))
	}

	if tokenizeFlags.jsonMode {
		if err := writeJSON(out, outputs); err != nil {
			return err
		}
	}
	if matches == 0 {
		return errNoMatch
	}
	return nil
}

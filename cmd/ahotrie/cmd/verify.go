package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/app"
)

var verifyFlags queryFlags

var verifyCmd = &cobra.Command{
	Use:   "verify [flags] [file...]",
	Short: "Cross-check the trie against a reference Aho-Corasick engine",
	Long: "Scans the input with both the native trie and an independent\n" +
		"Aho-Corasick implementation and reports any raw match that only one of\n" +
		"them found. Only --ignore-case applies; the other matching options\n" +
		"filter results after the scan. Exits 1 when the engines disagree.",
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	verifyFlags.matchFlags.register(f)
	f.StringVarP(&verifyFlags.text, "text", "t", "", "Text to scan instead of files or stdin")
	f.BoolVar(&verifyFlags.jsonMode, "json", false, "Output as JSON")
}

type verifyOutput struct {
	Input     string   `json:"input"`
	OK        bool     `json:"ok"`
	Native    int      `json:"native"`
	Reference int      `json:"reference"`
	Missing   []string `json:"missing,omitempty"`
	Extra     []string `json:"extra,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	d, err := verifyFlags.load()
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, verifyFlags.text, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := resolveColor(rootColor)
	var outputs []verifyOutput
	failed := 0
	for _, in := range inputs {
		report := app.Verify(d, in.Text)
		if !report.OK() {
			failed++
		}
		if verifyFlags.jsonMode {
			o := verifyOutput{Input: in.Name, OK: report.OK(), Native: report.Native, Reference: report.Reference}
			for _, e := range report.Missing {
				o.Missing = append(o.Missing, e.String())
			}
			for _, e := range report.Extra {
				o.Extra = append(o.Extra, e.String())
			}
			outputs = append(outputs, o)
			continue
		}
		if len(inputs) > 1 {
			fmt.Fprintf(out, "%s ", palette(color).paint(colorCyan, in.Name))
		}
		fmt.Fprint(out, formatVerify(report, color))
	}

	if verifyFlags.jsonMode {
		if err := writeJSON(out, outputs); err != nil {
			return err
		}
	}
	if failed > 0 {
		return exitError{code: 1, err: fmt.Errorf("engines disagree on %d of %d inputs", failed, len(inputs))}
	}
	return nil
}

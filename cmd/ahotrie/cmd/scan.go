package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/domain/trie"
)

var (
	scanFlags queryFlags
	scanCount bool
	scanQuiet bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [file...]",
	Short: "Report every keyword occurrence",
	Long: "Scans files, --text or stdin and reports each keyword match as\n" +
		"input:start-end: keyword, with rune offsets. Exits 1 when nothing matched.",
	Example: "  ahotrie scan -k he -k she -k his -k hers -t ushers\n" +
		"  ahotrie scan --builtin pronouns -i -w notes.md\n" +
		"  cat page.html | ahotrie scan --dict-file brands.yaml",
	RunE: runScan,
}

func init() {
	f := scanCmd.Flags()
	scanFlags.register(f)
	f.BoolVarP(&scanCount, "count", "c", false, "Only print the number of emits")
	f.BoolVarP(&scanQuiet, "quiet", "q", false, "Print nothing; exit status only")
}

func runScan(cmd *cobra.Command, args []string) error {
	q, err := scanFlags.querier()
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, scanFlags.text, args)
	if err != nil {
		return err
	}

	start := time.Now()
	results := make([]scanResult, 0, len(inputs))
	total := 0
	for _, in := range inputs {
		emits, err := q.ParseText(in.Text)
		if err != nil {
			return fmt.Errorf("scan %s: %w", in.Name, err)
		}
		if emits == nil {
			emits = []trie.Emit{}
		}
		results = append(results, scanResult{Input: in.Name, Emits: emits})
		total += len(emits)
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	color := resolveColor(rootColor)
	switch {
	case scanQuiet:
	case scanFlags.jsonMode:
		if err := writeJSON(out, results); err != nil {
			return err
		}
	case scanCount:
		fmt.Fprintln(out, formatCount(total, elapsed, color))
	default:
		fmt.Fprint(out, formatScan(results, elapsed, color))
	}

	if total == 0 {
		return errNoMatch
	}
	return nil
}

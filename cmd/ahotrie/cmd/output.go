package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/ahotrie/internal/adapters/socket"
	"github.com/corey/ahotrie/internal/app"
	"github.com/corey/ahotrie/internal/domain/dictionary"
	"github.com/corey/ahotrie/internal/domain/trie"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorRed     = "\033[31m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// palette applies ANSI codes only when color output is on.
type palette bool

func (p palette) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + colorReset
}

// scanResult is the emits of one input.
type scanResult struct {
	Input string      `json:"input"`
	Emits []trie.Emit `json:"emits"`
}

// formatScan renders scan results grep-style:
//
//	⚡ 3 emits │ 2 inputs │ 41µs
//	  notes.txt:2-3: he
//	  notes.txt:1-3: she
func formatScan(results []scanResult, elapsed time.Duration, color bool) string {
	p := palette(color)
	total := 0
	for _, r := range results {
		total += len(r.Emits)
	}

	var sb strings.Builder
	sb.WriteString(p.paint(colorBold, fmt.Sprintf("⚡ %d emits", total)))
	if len(results) > 1 {
		fmt.Fprintf(&sb, " │ %d inputs", len(results))
	}
	fmt.Fprintf(&sb, " │ %s\n", elapsed.Round(time.Microsecond))

	for _, r := range results {
		for _, e := range r.Emits {
			sb.WriteString(formatEmit(r.Input, e, color))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// formatEmit renders one emit as "  input:start-end: keyword".
func formatEmit(input string, e trie.Emit, color bool) string {
	p := palette(color)
	return fmt.Sprintf("  %s:%s: %s",
		p.paint(colorCyan, input),
		p.paint(colorGray, fmt.Sprintf("%d-%d", e.Start, e.End)),
		p.paint(colorMagenta, e.Keyword))
}

// formatCount renders the --count summary line.
func formatCount(total int, elapsed time.Duration, color bool) string {
	return fmt.Sprintf("%s │ %s",
		palette(color).paint(colorBold, fmt.Sprintf("⚡ %d emits", total)),
		elapsed.Round(time.Microsecond))
}

// formatTokens rebuilds the text with matches highlighted, or bracketed
// when color is off.
func formatTokens(tokens []trie.Token, color bool) string {
	var sb strings.Builder
	for _, tok := range tokens {
		if _, ok := tok.Match(); !ok {
			sb.WriteString(tok.Fragment())
			continue
		}
		if color {
			sb.WriteString(colorBold + colorMagenta + tok.Fragment() + colorReset)
		} else {
			sb.WriteString("[" + tok.Fragment() + "]")
		}
	}
	return sb.String()
}

// formatConfig renders the trie flags that are switched on.
func formatConfig(c trie.Config) string {
	var on []string
	if c.IgnoreCase {
		on = append(on, "ignore-case")
	}
	if c.OnlyWholeWords {
		on = append(on, "whole-words")
	}
	if c.OnlyWholeWordsWhiteSpaceSeparated {
		on = append(on, "whitespace-words")
	}
	if !c.AllowOverlaps {
		on = append(on, "no-overlaps")
	}
	if c.StopOnHit {
		on = append(on, "stop-on-hit")
	}
	if len(on) == 0 {
		return "defaults"
	}
	return strings.Join(on, ", ")
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult, color bool) string {
	p := palette(color)
	d := h.Dictionary
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s │ %s\n", p.paint(colorGreen, "⚡ daemon "+h.Status), h.Uptime)
	fmt.Fprintf(&sb, "  dictionary  %s\n", p.paint(colorCyan, d.Name))
	fmt.Fprintf(&sb, "  keywords    %d\n", d.Keywords)
	fmt.Fprintf(&sb, "  states      %d\n", d.States)
	fmt.Fprintf(&sb, "  options     %s\n", formatConfig(d.Config))
	fmt.Fprintf(&sb, "  reloads     %d\n", d.Reloads)
	return sb.String()
}

// dictEntry is one line of `dict list`.
type dictEntry struct {
	Name        string `json:"name"`
	Origin      string `json:"origin"` // "builtin" or "stored"
	Keywords    int    `json:"keywords"`
	Description string `json:"description,omitempty"`
}

func formatDictList(entries []dictEntry, color bool) string {
	p := palette(color)
	if len(entries) == 0 {
		return "no dictionaries\n"
	}
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name))
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "  %s  %s  %5d keywords",
			p.paint(colorCyan, fmt.Sprintf("%-*s", width, e.Name)),
			p.paint(colorGray, fmt.Sprintf("%-7s", e.Origin)),
			e.Keywords)
		if e.Description != "" {
			fmt.Fprintf(&sb, "  %s", e.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatStats renders the outcome of a dictionary build.
func formatStats(d *dictionary.Dictionary, stats app.BuildStats, color bool) string {
	return fmt.Sprintf("%s │ %d keywords │ %d states │ %s │ %s\n",
		palette(color).paint(colorBold, "⚡ "+stats.Name),
		stats.Keywords, stats.States, formatConfig(d.Options.TrieConfig()),
		stats.Elapsed.Round(time.Microsecond))
}

// formatVerify renders a verify report.
func formatVerify(r app.VerifyReport, color bool) string {
	p := palette(color)
	var sb strings.Builder
	if r.OK() {
		fmt.Fprintf(&sb, "%s │ %d emits │ native %s │ reference %s\n",
			p.paint(colorGreen, "⚡ engines agree"), r.Native,
			r.NativeT.Round(time.Microsecond), r.RefT.Round(time.Microsecond))
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s │ native %d │ reference %d\n",
		p.paint(colorRed, "⚡ engines disagree"), r.Native, r.Reference)
	for _, e := range r.Missing {
		fmt.Fprintf(&sb, "  %s %s\n", p.paint(colorYellow, "missing"), e)
	}
	for _, e := range r.Extra {
		fmt.Fprintf(&sb, "  %s %s\n", p.paint(colorYellow, "extra  "), e)
	}
	return sb.String()
}

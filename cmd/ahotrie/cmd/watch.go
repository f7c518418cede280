package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/adapters/extract"
	fsw "github.com/corey/ahotrie/internal/adapters/fsnotify"
	"github.com/corey/ahotrie/internal/app"
	"github.com/corey/ahotrie/internal/logger"
)

var (
	watchFlags matchFlags
	watchExts  []string
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] PATH",
	Short: "Rescan files as they change",
	Long: "Watches a file, or a directory recursively, and prints the matches of\n" +
		"each file when it is written. Dictionary files given with --dict-file\n" +
		"are watched too and rebuild the trie on change. Runs until interrupted.",
	Example: "  ahotrie watch --builtin pronouns -w notes/\n" +
		"  ahotrie watch --dict-file brands.yaml --ext .md --ext .txt docs/",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	watchFlags.register(f)
	f.StringSliceVar(&watchExts, "ext", nil, "Only watch files with these extensions (e.g. .md,.txt)")
}

// watchSession prints scan results for changed files. Callbacks arrive from
// watcher goroutines, so output is serialized.
type watchSession struct {
	engine *app.Engine
	source app.Source
	color  bool

	mu  sync.Mutex
	out io.Writer
}

func (w *watchSession) printf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

func (w *watchSession) scan(path string) {
	text, err := extract.File(path)
	if err != nil {
		// Removed or renamed away.
		logger.DebugLogger.Printf("watch: skip %s: %v", path, err)
		return
	}
	start := time.Now()
	emits, err := w.engine.ParseText(text)
	if err != nil {
		w.printf("[warning] %s: %v\n", path, err)
		return
	}
	w.printf("%s", formatScan([]scanResult{{Input: displayPath(path), Emits: emits}}, time.Since(start), w.color))
}

func (w *watchSession) reload(path string) {
	d, err := w.source.Load(dbPath())
	if err != nil {
		w.printf("[warning] reload after change to %s: %v (keeping previous dictionary)\n", displayPath(path), err)
		return
	}
	stats := w.engine.Load(d)
	w.printf("%s", formatStats(d, stats, w.color))
}

func runWatch(cmd *cobra.Command, args []string) error {
	target := args[0]
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	d, err := watchFlags.load()
	if err != nil {
		return err
	}
	session := &watchSession{
		engine: app.NewEngine(),
		source: watchFlags.source(),
		color:  resolveColor(rootColor),
		out:    cmd.OutOrStdout(),
	}
	session.printf("%s", formatStats(d, session.engine.Load(d), session.color))

	var exts []string
	for _, e := range watchExts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, strings.ToLower(e))
	}

	textWatcher, err := fsw.NewWatcher(exts...)
	if err != nil {
		return err
	}
	defer textWatcher.Stop()
	if err := textWatcher.Watch(target, session.scan); err != nil {
		return err
	}

	for _, path := range watchFlags.dictFiles {
		dw, err := fsw.NewWatcher()
		if err != nil {
			return err
		}
		defer dw.Stop()
		if err := dw.Watch(path, session.reload); err != nil {
			return err
		}
	}

	if !info.IsDir() {
		session.scan(target)
	}
	session.printf("⚡ watching %s (Ctrl-C to stop)\n", target)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-cmd.Context().Done():
	}
	return nil
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the ahotrie daemon: create, start, stop.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	fsw "github.com/corey/ahotrie/internal/adapters/fsnotify"
	"github.com/corey/ahotrie/internal/adapters/socket"
	"github.com/corey/ahotrie/internal/adapters/web"
	"github.com/corey/ahotrie/internal/domain/trie"
	"github.com/corey/ahotrie/internal/logger"
)

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	Paths       *Paths

	Engine    *Engine
	Server    *socket.Server
	WebServer *web.Server // nil when the HTTP API is disabled

	source   Source
	dbPath   string
	httpPort int

	mu       sync.Mutex // serializes reloads
	watchers []*fsw.Watcher
}

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	Source      Source
	DBPath      string // path to bbolt file (default: .ahotrie/ahotrie.db)
	SocketPath  string // default: computed from project root
	HTTPPort    int    // preferred HTTP port (default: computed from project root)
	NoHTTP      bool   // skip the HTTP API
}

// New creates an App with all dependencies wired and the dictionary loaded.
// Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	paths := NewPaths(cfg.ProjectRoot)
	if cfg.DBPath == "" {
		cfg.DBPath = paths.DB
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = socket.SocketPath(cfg.ProjectRoot)
	}
	if cfg.Source.Empty() {
		return nil, fmt.Errorf("no dictionary source: name a file, a stored or builtin dictionary, or keywords")
	}

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		Paths:       paths,
		Engine:      NewEngine(),
		source:      cfg.Source,
		dbPath:      cfg.DBPath,
		httpPort:    cfg.HTTPPort,
	}
	if _, err := a.Reload(); err != nil {
		return nil, err
	}

	a.Server = socket.NewServer(a, cfg.SocketPath)
	if !cfg.NoHTTP {
		a.WebServer = web.NewServer(a, paths.PortFile)
	}
	return a, nil
}

// Start opens the socket, the HTTP API and the dictionary watchers. Only the
// socket is required; the others degrade to a warning.
func (a *App) Start() error {
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	if a.WebServer != nil {
		httpPort := a.httpPort
		if httpPort == 0 {
			httpPort = web.DefaultPort(a.ProjectRoot)
		}
		if err := os.MkdirAll(filepath.Dir(a.Paths.PortFile), 0755); err != nil {
			logger.Logger.Printf("create run dir: %v", err)
		}
		if err := a.WebServer.Start(httpPort); err != nil {
			fmt.Fprintf(os.Stderr, "[warning] HTTP API unavailable: %v\n", err)
		}
	}

	for _, path := range a.watchPaths() {
		if err := a.watch(path); err != nil {
			fmt.Fprintf(os.Stderr, "[warning] dictionary watcher unavailable for %s: %v\n", path, err)
		}
	}
	return nil
}

// Stop shuts down all services. Safe to call after a failed Start.
func (a *App) Stop() error {
	a.mu.Lock()
	watchers := a.watchers
	a.watchers = nil
	a.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
	if a.WebServer != nil {
		a.WebServer.Stop()
	}
	return a.Server.Stop()
}

// watchPaths lists the files whose changes should trigger a reload.
func (a *App) watchPaths() []string {
	paths := append([]string(nil), a.source.Files...)
	if len(a.source.Stored) > 0 {
		paths = append(paths, a.dbPath)
	}
	return paths
}

func (a *App) watch(path string) error {
	// Dictionary directories only care about dictionary files; a single
	// file (dictionary or bbolt database) is reported whatever its name.
	var extensions []string
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		extensions = []string{".yaml", ".yml"}
	}

	w, err := fsw.NewWatcher(extensions...)
	if err != nil {
		return err
	}
	if err := w.Watch(path, a.onSourceChanged); err != nil {
		w.Stop()
		return err
	}

	a.mu.Lock()
	a.watchers = append(a.watchers, w)
	a.mu.Unlock()
	return nil
}

// onSourceChanged rebuilds the trie after a dictionary source changed. A
// broken edit keeps the previous dictionary active.
func (a *App) onSourceChanged(path string) {
	result, err := a.Reload()
	if err != nil {
		logger.Logger.Printf("reload after change to %s: %v (keeping previous dictionary)", path, err)
		return
	}
	logger.Logger.Printf("reloaded %s after change to %s: %d keywords, %d states",
		result.Dictionary.Name, path, result.Dictionary.Keywords, result.Dictionary.States)
}

// Reload re-reads the dictionary source and swaps in a freshly built trie.
// On error the active dictionary is left untouched.
// Implements socket.AppQueries.
func (a *App) Reload() (socket.ReloadResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	d, err := a.source.Load(a.dbPath)
	if err != nil {
		return socket.ReloadResult{}, fmt.Errorf("load dictionary: %w", err)
	}
	a.Engine.Load(d)

	return socket.ReloadResult{
		Dictionary: a.DictionaryInfo(),
		Elapsed:    time.Since(start).String(),
	}, nil
}

// DictionaryInfo describes the active dictionary.
// Implements socket.AppQueries.
func (a *App) DictionaryInfo() socket.DictionaryInfo {
	info := socket.DictionaryInfo{Reloads: max(a.Engine.Loads()-1, 0)}
	if d, tr := a.Engine.Current(); d != nil {
		info.Name = d.Name
		info.Keywords = len(d.Keywords)
		info.States = tr.NumStates()
		info.Config = tr.Config()
	}
	return info
}

// ParseText implements socket.AppQueries.
func (a *App) ParseText(text string) ([]trie.Emit, error) {
	return a.Engine.ParseText(text)
}

// Tokenize implements socket.AppQueries.
func (a *App) Tokenize(text string) ([]trie.Token, error) {
	return a.Engine.Tokenize(text)
}

// Replace implements socket.AppQueries.
func (a *App) Replace(text string, replacements map[string]string) (string, error) {
	return a.Engine.Replace(text, replacements)
}

// FirstMatch implements socket.AppQueries.
func (a *App) FirstMatch(text string) (trie.Emit, bool, error) {
	return a.Engine.FirstMatch(text)
}

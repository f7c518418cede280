// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches a directory recursively, or a single file through its parent
// directory, filters out editor and VCS noise, and debounces rapid events
// (editors often trigger multiple writes per save). A file is reported once
// its events have gone quiet, so the callback sees the last write.
package fsnotify

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/ahotrie/internal/logger"
)

// Directories to ignore when watching.
var ignoreDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".venv":        true,
	".idea":        true,
	".vscode":      true,
	".ahotrie":     true,
}

// File suffixes to ignore: editor swap and backup files.
var ignoreSuffixes = []string{".DS_Store", ".swp", ".swx", ".tmp", "~"}

const debounceInterval = 30 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw         *fsnotify.Watcher
	extensions []string
	done       chan struct{}
	stopped    bool
	mu         sync.Mutex
}

// NewWatcher creates a new file system watcher. When extensions are given
// (".yaml", ".txt", ...) only files with one of them are reported.
func NewWatcher(extensions ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:         fw,
		extensions: extensions,
		done:       make(chan struct{}),
	}, nil
}

// Watch starts monitoring path. A directory is watched recursively; a file is
// watched through its parent so that atomic saves (write to temp, rename over)
// are still seen. onChange is called with the absolute path of each changed
// file.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	var only string // set when watching a single file
	if info.IsDir() {
		err = w.addTree(absPath)
	} else {
		only = absPath
		err = w.fw.Add(filepath.Dir(absPath))
	}
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	// Trailing-edge debounce: one timer per file, re-armed by every event.
	// Only this goroutine touches the map.
	pending := make(map[string]*time.Timer)

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				name := event.Name

				if only != "" {
					if name != only {
						continue
					}
				} else if event.Has(fsnotify.Create) {
					// New directories join the watch list
					if fi, err := os.Stat(name); err == nil && fi.IsDir() {
						if !shouldIgnoreDir(fi.Name()) {
							if err := w.addTree(name); err != nil {
								logger.Logger.Printf("watch %s: %v", name, err)
							}
						}
						continue
					}
				}

				// Ignore rules apply below the watched root only, so a
				// root inside .ahotrie/ still reports its own files.
				if only == "" {
					rel, err := filepath.Rel(absPath, name)
					if err != nil || w.shouldIgnorePath(rel) {
						continue
					}
				}

				if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
					continue
				}

				if t, ok := pending[name]; ok {
					t.Reset(debounceInterval)
					continue
				}
				pending[name] = time.AfterFunc(debounceInterval, func() {
					w.fire(name, onChange)
				})

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers on its own; keep a trace
				logger.DebugLogger.Printf("watcher error: %v", err)

			case <-w.done:
				for _, t := range pending {
					t.Stop()
				}
				return
			}
		}
	}()

	return nil
}

// fire reports name unless the watcher was stopped while the timer ran.
func (w *Watcher) fire(name string, onChange func(string)) {
	select {
	case <-w.done:
	default:
		onChange(name)
	}
}

// addTree adds root and every non-ignored directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}
		if shouldIgnoreDir(d.Name()) && p != root {
			return filepath.SkipDir
		}
		return w.fw.Add(p)
	})
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// shouldIgnoreDir returns true if the directory name should be skipped.
func shouldIgnoreDir(name string) bool {
	return ignoreDirs[name]
}

// shouldIgnorePath returns true if the file path should not trigger onChange.
func (w *Watcher) shouldIgnorePath(path string) bool {
	base := filepath.Base(path)

	for _, suffix := range ignoreSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	if len(w.extensions) > 0 && !slices.Contains(w.extensions, filepath.Ext(base)) {
		return true
	}

	// Check if any path component is an ignored directory
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}

	return false
}

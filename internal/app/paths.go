package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .ahotrie/ project directory.
type Paths struct {
	Root    string // .ahotrie/
	DB      string // .ahotrie/ahotrie.db
	DictDir string // .ahotrie/dict/

	LogDir    string // .ahotrie/log/
	DaemonLog string // .ahotrie/log/daemon.log

	RunDir   string // .ahotrie/run/
	PIDFile  string // .ahotrie/run/daemon.pid
	PortFile string // .ahotrie/run/http.port
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".ahotrie")
	return &Paths{
		Root:    root,
		DB:      filepath.Join(root, "ahotrie.db"),
		DictDir: filepath.Join(root, "dict"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),
	}
}

// EnsureDirs creates all subdirectories under .ahotrie/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.DictDir, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// migration defines a single file move from the flat layout to a subdirectory.
type migration struct {
	oldName string // relative to .ahotrie/ (flat)
	newPath string // absolute destination path
}

// Migrate moves runtime files left in the flat .ahotrie/ root into their
// subdirectories. Returns the number of files moved. Idempotent: skips if
// the source is missing or the destination already exists.
func (p *Paths) Migrate() (int, error) {
	moves := []migration{
		{"daemon.log", p.DaemonLog},
		{"daemon.pid", p.PIDFile},
		{"http.port", p.PortFile},
	}

	count := 0
	for _, m := range moves {
		oldPath := filepath.Join(p.Root, m.oldName)
		if _, err := os.Stat(oldPath); err != nil {
			continue
		}
		// Don't overwrite existing destination.
		if _, err := os.Stat(m.newPath); err == nil {
			continue
		}
		if err := os.Rename(oldPath, m.newPath); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}

// Package extract turns documents into the plain text the trie scans. Each
// supported format has an Extractor; ForPath picks one by file extension and
// falls back to Plain.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/corey/ahotrie/internal/logger"
	"github.com/corey/ahotrie/internal/ports"
)

var (
	mu       sync.RWMutex
	registry = map[string]ports.Extractor{
		".txt":      Plain{},
		".text":     Plain{},
		".log":      Plain{},
		".csv":      Plain{},
		".md":       Markdown{},
		".markdown": Markdown{},
		".html":     HTML{},
		".htm":      HTML{},
		".xhtml":    HTML{},
	}
)

// Register installs e for ext (with leading dot). An existing registration is
// kept and a warning logged.
func Register(ext string, e ports.Extractor) {
	mu.Lock()
	defer mu.Unlock()

	ext = strings.ToLower(ext)
	if _, exists := registry[ext]; exists {
		logger.Logger.Printf("extractor for %s already registered, ignoring", ext)
		return
	}
	registry[ext] = e
}

// ForPath returns the extractor for path's extension, or Plain.
func ForPath(path string) ports.Extractor {
	mu.RLock()
	defer mu.RUnlock()

	if e, ok := registry[strings.ToLower(filepath.Ext(path))]; ok {
		return e
	}
	return Plain{}
}

// File reads path and extracts its text with ForPath(path).
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text, err := ForPath(path).Extract(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, nil
}

var (
	invisibleCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F\x{200B}-\x{200F}\x{FEFF}]`)
	blankRunRegex       = regexp.MustCompile(`[\t\f\v\x{A0}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000} ]+`)
	newlineRunRegex     = regexp.MustCompile(`\s*\n\s*`)
)

// normalize removes invisible characters, collapses blank runs to one space
// and newline runs to one newline, and trims the ends.
func normalize(text string) string {
	text = invisibleCharsRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = newlineRunRegex.ReplaceAllString(text, "\n")
	text = blankRunRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/ahotrie/internal/adapters/socket"
	"github.com/corey/ahotrie/internal/domain/trie"
	"github.com/corey/ahotrie/internal/logger"
)

// maxBody bounds a request body.
const maxBody = 8 << 20

// Server serves the JSON matching API over HTTP.
type Server struct {
	queries  socket.AppQueries
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .ahotrie/run/http.port
}

// NewServer creates an HTTP server over queries.
// The portFilePath is where the bound port is written for discovery.
func NewServer(queries socket.AppQueries, portFilePath string) *Server {
	return &Server{
		queries:      queries,
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the routed API. Start serves it; tests mount it on httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/parse", s.handleParse)
	mux.HandleFunc("POST /api/tokenize", s.handleTokenize)
	mux.HandleFunc("POST /api/replace", s.handleReplace)
	mux.HandleFunc("POST /api/first", s.handleFirst)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	return mux
}

// Start begins listening on the preferred port (0 picks a free one) and
// writes the bound port to the port file.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.portFilePath != "" {
		if err := os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644); err != nil {
			logger.Logger.Printf("write port file: %v", err)
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Logger.Printf("http serve: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the playground URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, staticFS, "static/index.html")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, socket.HealthResult{
		Status:     "ok",
		Dictionary: s.queries.DictionaryInfo(),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var params socket.TextParams
	if !readJSON(w, r, &params) {
		return
	}

	start := time.Now()
	emits, err := s.queries.ParseText(params.Text)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if emits == nil {
		emits = []trie.Emit{}
	}
	writeJSON(w, http.StatusOK, socket.ParseResult{
		Emits:   emits,
		Count:   len(emits),
		Elapsed: time.Since(start).String(),
	})
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var params socket.TextParams
	if !readJSON(w, r, &params) {
		return
	}

	tokens, err := s.queries.Tokenize(params.Text)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, socket.NewTokenizeResult(tokens))
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	var params socket.ReplaceParams
	if !readJSON(w, r, &params) {
		return
	}

	text, err := s.queries.Replace(params.Text, params.Replacements)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, socket.ReplaceResult{Text: text})
}

func (s *Server) handleFirst(w http.ResponseWriter, r *http.Request) {
	var params socket.TextParams
	if !readJSON(w, r, &params) {
		return
	}

	emit, ok, err := s.queries.FirstMatch(params.Text)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	result := socket.FirstResult{Found: ok}
	if ok {
		result.Emit = &emit
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readJSON decodes the request body into v. On failure it writes a 400 and
// returns false.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

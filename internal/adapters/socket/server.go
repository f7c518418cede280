package socket

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/ahotrie/internal/domain/trie"
	"github.com/corey/ahotrie/internal/logger"
)

// maxMessage bounds a single request line. Texts larger than this must be
// scanned locally.
const maxMessage = 4 * 1024 * 1024

// AppQueries is the matching surface the server dispatches to.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	ParseText(text string) ([]trie.Emit, error)
	Tokenize(text string) ([]trie.Token, error)
	Replace(text string, replacements map[string]string) (string, error)
	FirstMatch(text string) (trie.Emit, bool, error)
	DictionaryInfo() DictionaryInfo
	Reload() (ReloadResult, error)
}

// Server listens on a Unix socket and dispatches requests to the app.
type Server struct {
	queries  AppQueries
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// NewServer creates a daemon server backed by queries.
func NewServer(queries AppQueries, sockPath string) *Server {
	return &Server{
		queries:    queries,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start begins listening on the Unix socket. A socket file nobody answers on
// is treated as stale and removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		logger.DebugLogger.Printf("removing stale socket %s", s.sockPath)
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener and every open connection, waits for their
// handlers and removes the socket file. Safe to call multiple times.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		s.connMu.Lock()
		close(s.done)
		for conn := range s.conns {
			conn.Close()
		}
		s.connMu.Unlock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-s.done:
				return
			default:
			}
			// Transient failure (EMFILE and the like): back off like net/http.
			backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
			logger.DebugLogger.Printf("accept: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// track registers conn so Stop can close it. It reports false once the
// server is stopping.
func (s *Server) track(conn net.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.connMu.Lock()
	delete(s.conns, conn)
	s.connMu.Unlock()
	conn.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessage)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		logger.DebugLogger.Printf("socket read: %v", err)
		s.writeResponse(conn, Response{Error: err.Error()})
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodParse:
		return s.handleParse(req)
	case MethodTokenize:
		return s.handleTokenize(req)
	case MethodReplace:
		return s.handleReplace(req)
	case MethodFirst:
		return s.handleFirst(req)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodReload:
		return s.handleReload(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// decodeParams re-marshals the generic params into a typed struct.
func decodeParams(req Request, v any) error {
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return err
	}
	return json.Unmarshal(paramsJSON, v)
}

func (s *Server) handleParse(req Request) Response {
	var params TextParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid parse params"}
	}

	start := time.Now()
	emits, err := s.queries.ParseText(params.Text)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	if emits == nil {
		emits = []trie.Emit{}
	}

	return Response{
		ID: req.ID,
		Result: ParseResult{
			Emits:   emits,
			Count:   len(emits),
			Elapsed: time.Since(start).String(),
		},
	}
}

func (s *Server) handleTokenize(req Request) Response {
	var params TextParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid tokenize params"}
	}

	tokens, err := s.queries.Tokenize(params.Text)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: NewTokenizeResult(tokens)}
}

func (s *Server) handleReplace(req Request) Response {
	var params ReplaceParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid replace params"}
	}

	text, err := s.queries.Replace(params.Text, params.Replacements)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: ReplaceResult{Text: text}}
}

func (s *Server) handleFirst(req Request) Response {
	var params TextParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid first params"}
	}

	emit, ok, err := s.queries.FirstMatch(params.Text)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	result := FirstResult{Found: ok}
	if ok {
		result.Emit = &emit
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleHealth(req Request) Response {
	return Response{
		ID: req.ID,
		Result: HealthResult{
			Status:     "ok",
			Dictionary: s.queries.DictionaryInfo(),
			Uptime:     time.Since(s.started).Round(time.Second).String(),
		},
	}
}

func (s *Server) handleReload(req Request) Response {
	result, err := s.queries.Reload()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Logger.Printf("marshal response %s: %v", resp.ID, err)
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

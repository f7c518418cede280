// Package socket implements a JSON-over-Unix-socket protocol for the ahotrie daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/corey/ahotrie/internal/domain/trie"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/ahotrie-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/ahotrie-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodParse    = "parse"
	MethodTokenize = "tokenize"
	MethodReplace  = "replace"
	MethodFirst    = "first"
	MethodHealth   = "health"
	MethodReload   = "reload"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TextParams is the params for parse, tokenize and first requests.
type TextParams struct {
	Text string `json:"text"`
}

// ParseResult is the result of a parse request.
type ParseResult struct {
	Emits   []trie.Emit `json:"emits"`
	Count   int         `json:"count"`
	Elapsed string      `json:"elapsed"`
}

// TokenizeResult is the result of a tokenize request.
type TokenizeResult struct {
	Tokens  []TokenInfo `json:"tokens"`
	Matches int         `json:"matches"`
}

// TokenInfo is a single token in wire format. Emit is set for match tokens.
type TokenInfo struct {
	Fragment string     `json:"fragment"`
	Emit     *trie.Emit `json:"emit,omitempty"`
}

// Token converts the wire form back into a trie token.
func (ti TokenInfo) Token() trie.Token {
	if ti.Emit != nil {
		return trie.NewMatchToken(ti.Fragment, *ti.Emit)
	}
	return trie.NewFragmentToken(ti.Fragment)
}

// NewTokenizeResult converts tokens to their wire form.
func NewTokenizeResult(tokens []trie.Token) TokenizeResult {
	result := TokenizeResult{Tokens: make([]TokenInfo, 0, len(tokens))}
	for _, tok := range tokens {
		info := TokenInfo{Fragment: tok.Fragment()}
		if e, ok := tok.Match(); ok {
			info.Emit = &e
			result.Matches++
		}
		result.Tokens = append(result.Tokens, info)
	}
	return result
}

// ReplaceParams is the params for a replace request. When Replacements is
// empty the active dictionary's replacements are used.
type ReplaceParams struct {
	Text         string            `json:"text"`
	Replacements map[string]string `json:"replacements,omitempty"`
}

// ReplaceResult is the result of a replace request.
type ReplaceResult struct {
	Text string `json:"text"`
}

// FirstResult is the result of a first request.
type FirstResult struct {
	Found bool       `json:"found"`
	Emit  *trie.Emit `json:"emit,omitempty"`
}

// DictionaryInfo describes the dictionary the daemon is matching with.
type DictionaryInfo struct {
	Name     string      `json:"name"`
	Keywords int         `json:"keywords"`
	States   int         `json:"states"`
	Reloads  int         `json:"reloads"`
	Config   trie.Config `json:"config"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status     string         `json:"status"`
	Dictionary DictionaryInfo `json:"dictionary"`
	Uptime     string         `json:"uptime"`
}

// ReloadResult is the result of a reload request.
type ReloadResult struct {
	Dictionary DictionaryInfo `json:"dictionary"`
	Elapsed    string         `json:"elapsed"`
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/corey/ahotrie/internal/adapters/socket"
	"github.com/corey/ahotrie/internal/app"
	"github.com/corey/ahotrie/internal/domain/trie"
)

// querier answers matching queries, either in-process or through the daemon.
type querier interface {
	ParseText(text string) ([]trie.Emit, error)
	Tokenize(text string) ([]trie.Token, error)
	Replace(text string, replacements map[string]string) (string, error)
	FirstMatch(text string) (trie.Emit, bool, error)
}

// queryFlags are shared by the commands that scan text.
type queryFlags struct {
	matchFlags
	text     string
	daemon   bool
	jsonMode bool
}

func (q *queryFlags) register(f *pflag.FlagSet) {
	q.matchFlags.register(f)
	f.StringVarP(&q.text, "text", "t", "", "Text to scan instead of files or stdin")
	f.BoolVar(&q.daemon, "daemon", false, "Query the running daemon and its dictionary")
	f.BoolVar(&q.jsonMode, "json", false, "Output as JSON")
}

// querier builds the in-process engine from the dictionary flags, or
// connects to the daemon with --daemon.
func (q *queryFlags) querier() (querier, error) {
	if q.daemon {
		if !q.source().Empty() {
			return nil, fmt.Errorf("--daemon matches with the daemon's dictionary; drop the dictionary flags")
		}
		client := socket.NewClient(socket.SocketPath(projectRoot()))
		if !client.Ping() {
			return nil, fmt.Errorf("daemon is not running (start with: ahotrie daemon start)")
		}
		return daemonQuerier{client}, nil
	}

	d, err := q.load()
	if err != nil {
		return nil, err
	}
	e := app.NewEngine()
	e.Load(d)
	return e, nil
}

// daemonQuerier forwards queries over the socket.
type daemonQuerier struct {
	client *socket.Client
}

func (d daemonQuerier) ParseText(text string) ([]trie.Emit, error) {
	result, err := d.client.Parse(text)
	if err != nil {
		return nil, err
	}
	return result.Emits, nil
}

func (d daemonQuerier) Tokenize(text string) ([]trie.Token, error) {
	result, err := d.client.Tokenize(text)
	if err != nil {
		return nil, err
	}
	tokens := make([]trie.Token, len(result.Tokens))
	for i, ti := range result.Tokens {
		tokens[i] = ti.Token()
	}
	return tokens, nil
}

func (d daemonQuerier) Replace(text string, replacements map[string]string) (string, error) {
	result, err := d.client.Replace(text, replacements)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (d daemonQuerier) FirstMatch(text string) (trie.Emit, bool, error) {
	result, err := d.client.First(text)
	if err != nil {
		return trie.Emit{}, false, err
	}
	if !result.Found || result.Emit == nil {
		return trie.Emit{}, false, nil
	}
	return *result.Emit, true, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client connects to the ahotrie daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Parse sends text to the daemon and returns every emit it reports.
func (c *Client) Parse(text string) (*ParseResult, error) {
	var result ParseResult
	if err := c.do(MethodParse, TextParams{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Tokenize splits text into fragment and match tokens on the daemon.
func (c *Client) Tokenize(text string) (*TokenizeResult, error) {
	var result TokenizeResult
	if err := c.do(MethodTokenize, TextParams{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Replace rewrites text. A nil map uses the daemon dictionary's replacements.
func (c *Client) Replace(text string, replacements map[string]string) (*ReplaceResult, error) {
	var result ReplaceResult
	params := ReplaceParams{Text: text, Replacements: replacements}
	if err := c.do(MethodReplace, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// First returns the leftmost emit in text.
func (c *Client) First(text string) (*FirstResult, error) {
	var result FirstResult
	if err := c.do(MethodFirst, TextParams{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(MethodHealth, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reload asks the daemon to rebuild its trie from the dictionary source.
func (c *Client) Reload() (*ReloadResult, error) {
	var result ReloadResult
	if err := c.do(MethodReload, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{ID: "1", Method: MethodShutdown})
	return err
}

// Ping checks whether the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// do sends one request and decodes its result into out.
func (c *Client) do(method string, params, out any) error {
	resp, err := c.call(Request{ID: "1", Method: method, Params: params})
	if err != nil {
		return err
	}

	// Result arrives as a generic map; round-trip it into the typed struct.
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	return c.callWithTimeout(req, 5*time.Second)
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessage)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}

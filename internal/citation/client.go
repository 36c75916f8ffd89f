// Package citation picks citations from a running Zotero with the Better
// BibTeX plugin and keeps a bibliography file in step with the keys cited.
package citation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tliron/commonlog"
)

var (
	// ErrUnavailable is returned when a citation service cannot be reached.
	ErrUnavailable = errors.New("citation service unavailable")
	// ErrMalformed is returned when a service answers with an unexpected payload.
	ErrMalformed = errors.New("malformed citation response")
)

// Exporter fetches BibTeX for citation keys.
type Exporter interface {
	Export(ctx context.Context, keys []string) (string, error)
}

var separator = regexp.MustCompile(`\s*;\s*`)

// Format turns a picker answer like "@a;@b" into the in-text citation "[@a; @b]".
func Format(raw string) string {
	raw = separator.ReplaceAllString(strings.TrimSpace(raw), "; ")
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		return raw
	}
	return "[" + raw + "]"
}

// Keys extracts the bare citation keys from a picker answer.
func Keys(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	var keys []string
	for _, part := range separator.Split(raw, -1) {
		key := strings.TrimPrefix(strings.TrimSpace(part), "@")
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client talks to the Better BibTeX endpoints of a local Zotero.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	log        commonlog.Logger
}

// NewClient creates a client for the Zotero instance at host:port.
func NewClient(host string, port int) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		// The picker waits on the user, so requests are bounded by ctx only
		httpClient: &http.Client{},
		maxRetries: 3,
		retryDelay: time.Second,
		log:        commonlog.GetLogger("wingman.citation"),
	}
}

// Pick opens the Zotero citation picker and returns the chosen keys in
// pandoc form ("@a; @b"). An empty string means nothing was picked.
func (c *Client) Pick(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/better-bibtex/cayw?format=pandoc", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: could not connect to Zotero/Better BibTeX: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: could not fetch citation keys: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: picker returned status %d", ErrMalformed, resp.StatusCode)
	}

	return strings.TrimSpace(string(body)), nil
}

// Export fetches BibTeX for keys through the JSON-RPC item.export method.
func (c *Client) Export(ctx context.Context, keys []string) (string, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "item.export",
		Params:  []any{keys, "Better BibTeX"},
		ID:      1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/better-bibtex/json-rpc", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: JSON-RPC request failed: %v", ErrUnavailable, err)
			c.log.Debugf("export attempt %d failed: %v", attempt+1, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: status %d: %s", ErrMalformed, resp.StatusCode, strings.TrimSpace(string(respBody)))
		}

		return decodeExport(respBody)
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func decodeExport(body []byte) (string, error) {
	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: item.export: %s (code %d)", ErrMalformed, resp.Error.Message, resp.Error.Code)
	}

	// Older Better BibTeX versions answer with a plain string, newer ones
	// with [status, content-type, body]
	var text string
	if err := json.Unmarshal(resp.Result, &text); err == nil {
		return text, nil
	}
	var triple []json.RawMessage
	if err := json.Unmarshal(resp.Result, &triple); err == nil && len(triple) == 3 {
		if err := json.Unmarshal(triple[2], &text); err == nil {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: unexpected item.export result", ErrMalformed)
}

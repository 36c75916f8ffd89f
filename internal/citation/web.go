package citation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultWebAPI is the public Zotero web API.
const DefaultWebAPI = "https://api.zotero.org"

// WebClient exports BibTeX from a library through the Zotero web API. It is
// used when the local Better BibTeX service is not running.
type WebClient struct {
	baseURL     string
	libraryType string
	libraryID   string
	apiKey      string
	httpClient  *http.Client
}

// NewWebClient creates a client for the "user" or "group" library libraryID.
func NewWebClient(libraryType, libraryID, apiKey string) (*WebClient, error) {
	if libraryID == "" {
		return nil, fmt.Errorf("zotero library id is not set")
	}
	switch libraryType {
	case "user", "group":
	default:
		return nil, fmt.Errorf("unknown zotero library type %q", libraryType)
	}
	return &WebClient{
		baseURL:     DefaultWebAPI,
		libraryType: libraryType,
		libraryID:   libraryID,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Export searches the library for each key and returns the BibTeX found.
func (w *WebClient) Export(ctx context.Context, keys []string) (string, error) {
	var entries []string
	for _, key := range keys {
		bib, err := w.fetch(ctx, key)
		if err != nil {
			return "", err
		}
		if bib = strings.TrimSpace(bib); bib != "" {
			entries = append(entries, bib)
		}
	}
	if len(entries) == 0 {
		return "", nil
	}
	return strings.Join(entries, "\n\n") + "\n", nil
}

func (w *WebClient) fetch(ctx context.Context, key string) (string, error) {
	q := url.Values{}
	q.Set("format", "bibtex")
	q.Set("q", key)
	endpoint := fmt.Sprintf("%s/%ss/%s/items?%s", w.baseURL, w.libraryType, url.PathEscape(w.libraryID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", "3")
	if w.apiKey != "" {
		req.Header.Set("Zotero-API-Key", w.apiKey)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: zotero web API: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: zotero web API: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: zotero web API status %d for %s", ErrMalformed, resp.StatusCode, key)
	}
	return string(body), nil
}

// Chain tries each exporter in turn and returns the first success. Only
// unavailable services fall through to the next exporter.
type Chain []Exporter

// Export implements Exporter
func (c Chain) Export(ctx context.Context, keys []string) (string, error) {
	err := fmt.Errorf("%w: no exporter configured", ErrUnavailable)
	for _, e := range c {
		var bib string
		bib, err = e.Export(ctx, keys)
		if err == nil {
			return bib, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return "", err
		}
	}
	return "", err
}

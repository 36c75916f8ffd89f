package citation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/wingman/internal/document"
)

func testClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	u := strings.TrimPrefix(srv.URL, "http://")
	host, portStr, _ := strings.Cut(u, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c := NewClient(host, port)
	c.retryDelay = 0
	return c
}

func TestFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"@a", "[@a]"},
		{"@a;@b", "[@a; @b]"},
		{"@a ;  @b; @c", "[@a; @b; @c]"},
		{"[@a; @b]", "[@a; @b]"},
		{"  @a  ", "[@a]"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.raw))
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Keys("@a; @b"))
	assert.Equal(t, []string{"smith2020"}, Keys("[@smith2020]"))
	assert.Nil(t, Keys(""))
}

func TestParseKeys(t *testing.T) {
	bib := "@article{smith2020,\n  title={X}\n}\n\n@book{ doe_2019 ,\n}\n"
	assert.Equal(t, []string{"smith2020", "doe_2019"}, ParseKeys(bib))
}

func TestClient_Pick(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/better-bibtex/cayw", r.URL.Path)
		assert.Equal(t, "pandoc", r.URL.Query().Get("format"))
		io.WriteString(w, "@a; @b\n")
	}))

	raw, err := c.Pick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "@a; @b", raw)
}

func TestClient_PickUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	u := strings.TrimPrefix(srv.URL, "http://")
	host, portStr, _ := strings.Cut(u, ":")
	port, _ := strconv.Atoi(portStr)

	_, err := NewClient(host, port).Pick(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Export(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr error
	}{
		{
			name:  "string result",
			reply: `{"jsonrpc":"2.0","id":1,"result":"@article{a,}\n"}`,
			want:  "@article{a,}\n",
		},
		{
			name:  "triple result",
			reply: `{"jsonrpc":"2.0","id":1,"result":[200,"text/plain","@book{b,}"]}`,
			want:  "@book{b,}",
		},
		{
			name:    "rpc error",
			reply:   `{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"no such key"}}`,
			wantErr: ErrMalformed,
		},
		{
			name:    "not json",
			reply:   `<html>`,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/better-bibtex/json-rpc", r.URL.Path)

				var req rpcRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "item.export", req.Method)
				assert.Equal(t, []any{[]any{"a"}, "Better BibTeX"}, req.Params)

				io.WriteString(w, tt.reply)
			}))

			got, err := c.Export(context.Background(), []string{"a"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ExportRetries(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":"@misc{a,}"}`)
	}))

	got, err := c.Export(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "@misc{a,}", got)
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(-10)
	_, err = c.Export(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "max retries exceeded")
}

func TestWebClient_Export(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/42/items", r.URL.Path)
		assert.Equal(t, "bibtex", r.URL.Query().Get("format"))
		assert.Equal(t, "secret", r.Header.Get("Zotero-API-Key"))
		assert.Equal(t, "3", r.Header.Get("Zotero-API-Version"))
		switch r.URL.Query().Get("q") {
		case "a":
			io.WriteString(w, "@article{a,}\n")
		default:
			io.WriteString(w, "\n")
		}
	}))
	defer srv.Close()

	wc, err := NewWebClient("group", "42", "secret")
	require.NoError(t, err)
	wc.baseURL = srv.URL

	got, err := wc.Export(context.Background(), []string{"a", "missing"})
	require.NoError(t, err)
	assert.Equal(t, "@article{a,}\n", got)
}

func TestNewWebClient_Validation(t *testing.T) {
	_, err := NewWebClient("user", "", "")
	assert.Error(t, err)
	_, err = NewWebClient("team", "1", "")
	assert.Error(t, err)
}

type fakeExporter struct {
	bib   string
	err   error
	calls [][]string
}

func (f *fakeExporter) Export(_ context.Context, keys []string) (string, error) {
	f.calls = append(f.calls, keys)
	return f.bib, f.err
}

func TestChain(t *testing.T) {
	down := &fakeExporter{err: ErrUnavailable}
	up := &fakeExporter{bib: "@misc{a,}"}

	got, err := Chain{down, up}.Export(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "@misc{a,}", got)

	bad := &fakeExporter{err: ErrMalformed}
	_, err = Chain{bad, up}.Export(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Len(t, up.calls, 1, "malformed responses do not fall through")

	_, err = Chain{}.Export(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func openTestLibrary(t *testing.T, existing string) (*Library, string) {
	t.Helper()
	dir := t.TempDir()
	bib := filepath.Join(dir, "references.bib")
	if existing != "" {
		require.NoError(t, os.WriteFile(bib, []byte(existing), 0644))
	}
	lib, err := OpenLibrary(bib, filepath.Join(dir, ".wingman", "citations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib, bib
}

func TestLibrary(t *testing.T) {
	lib, bib := openTestLibrary(t, "@article{old,\n}\n")

	missing, err := lib.Missing([]string{"old", "new", "new", "other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "other"}, missing)

	added, err := lib.Append("@book{new,\n}\n\n@misc{other,\n}")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "other"}, added)

	missing, err = lib.Missing([]string{"old", "new", "other"})
	require.NoError(t, err)
	assert.Empty(t, missing)

	data, err := os.ReadFile(bib)
	require.NoError(t, err)
	assert.Equal(t, "@article{old,\n}\n\n@book{new,\n}\n\n@misc{other,\n}\n", string(data))

	added, err = lib.Append("   ")
	require.NoError(t, err)
	assert.Nil(t, added)
}

type fakePicker struct {
	raw string
	err error
}

func (f fakePicker) Pick(context.Context) (string, error) { return f.raw, f.err }

func TestService_Cite(t *testing.T) {
	lib, bib := openTestLibrary(t, "@article{a,\n}\n")
	exp := &fakeExporter{bib: "@book{b,\n}\n"}
	svc := NewService(fakePicker{raw: "@a;@b"}, exp, lib)

	doc := document.New("See  here.", document.LanguageQuarto)
	at := document.Range{Start: document.Position{Char: 4}, End: document.Position{Char: 4}}

	res, err := svc.Cite(context.Background(), doc, at)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "[@a; @b]", res.Citation)
	assert.Equal(t, []string{"b"}, res.Added)
	assert.Equal(t, "See [@a; @b] here.", doc.Text())
	assert.Equal(t, [][]string{{"b"}}, exp.calls, "only missing keys are exported")

	data, err := os.ReadFile(bib)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@book{b,")
}

func TestService_CiteDismissed(t *testing.T) {
	doc := document.New("text", document.LanguageQuarto)
	res, err := NewService(fakePicker{}, nil, nil).Cite(context.Background(), doc, document.Range{})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "text", doc.Text())
}

func TestService_CiteExportFails(t *testing.T) {
	lib, bib := openTestLibrary(t, "")
	svc := NewService(fakePicker{raw: "@x"}, &fakeExporter{err: ErrUnavailable}, lib)
	doc := document.New("", document.LanguageQuarto)

	res, err := svc.Cite(context.Background(), doc, document.Range{})
	require.NoError(t, err)
	assert.Equal(t, "[@x]", doc.Text())
	assert.True(t, IsUnavailable(res.ExportErr))

	_, err = os.Stat(bib)
	assert.True(t, os.IsNotExist(err), "no partial bibliography writes")
}

func TestService_CitePickerDown(t *testing.T) {
	svc := NewService(fakePicker{err: ErrUnavailable}, nil, nil)
	_, err := svc.Cite(context.Background(), document.New("", document.LanguageQuarto), document.Range{})
	assert.True(t, IsUnavailable(err))
}

package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemFetcher(t *testing.T, files map[string]string) *Fetcher {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, "/"+name, []byte(content), 0644))
	}

	return NewFetcher(NewFSSource(fs))
}

func TestFetchDocument(t *testing.T) {
	f := newMemFetcher(t, map[string]string{
		"data/skills.json": `{"skills": [{"name": "Go"}]}`,
		"data/broken.json": `{"skills": [`,
		"data/page.json":   `<!DOCTYPE html><html><body>Not Found</body></html>`,
	})

	doc, err := f.FetchDocument(context.Background(), "skills")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"skills": []any{map[string]any{"name": "Go"}},
	}, doc)

	tests := []struct {
		name   string
		status int
	}{
		{"missing", http.StatusNotFound},
		{"broken", http.StatusUnprocessableEntity},
		{"page", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		_, err := f.FetchDocument(context.Background(), tt.name)

		var rerr *ResourceUnavailableError
		require.True(t, errors.As(err, &rerr), "failed for name: %s", tt.name)
		assert.Equal(t, tt.status, rerr.Status, "failed for name: %s", tt.name)
		assert.Equal(t, "data/"+tt.name+".json", rerr.Path, "failed for name: %s", tt.name)
	}
}

func TestFetchTemplateSource(t *testing.T) {
	f := newMemFetcher(t, map[string]string{
		"templates/hero.html": `<section id="hero">{{ .site.siteName }}</section>`,
	})

	src, err := f.FetchTemplateSource(context.Background(), "hero")
	require.NoError(t, err)
	assert.Equal(t, `<section id="hero">{{ .site.siteName }}</section>`, src)

	_, err = f.FetchTemplateSource(context.Background(), "contact")
	var rerr *ResourceUnavailableError
	require.ErrorAs(t, err, &rerr)
	assert.True(t, rerr.NotFound())
	assert.Equal(t, "failed to load templates/contact.html: 404 Not Found", err.Error())
}

func TestHTTPSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/site/data/about.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name": "Brian"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	src, err := NewSource(ts.URL + "/site")
	require.NoError(t, err)

	f := NewFetcher(src)
	doc, err := f.FetchDocument(context.Background(), "about")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Brian"}, doc)

	_, err = f.FetchDocument(context.Background(), "contact")
	var rerr *ResourceUnavailableError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusNotFound, rerr.Status)
}

func TestHTTPSourceUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	src, err := NewHTTPSource(url, nil)
	require.NoError(t, err)

	_, err = NewFetcher(src).FetchDocument(context.Background(), "about")
	var rerr *ResourceUnavailableError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 0, rerr.Status)
}

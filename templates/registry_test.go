package templates

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapFetcher struct {
	sources map[string]string
	calls   atomic.Int32
}

func (f *mapFetcher) FetchTemplateSource(ctx context.Context, name string) (string, error) {
	f.calls.Add(1)
	src, ok := f.sources[name]
	if !ok {
		return "", fmt.Errorf("template %s does not exist", name)
	}
	return src, nil
}

func TestRegisterAll(t *testing.T) {
	fetcher := &mapFetcher{sources: map[string]string{
		"hero":   `<h1>{{ .site.siteName }}</h1>`,
		"footer": `<footer>&copy; {{ .currentYear }}</footer>`,
	}}

	r := NewRegistry(fetcher, NewHTMLEngine(FuncMap("", nil)))
	err := r.RegisterAll(context.Background(), []string{"hero", "footer", "hero"})
	require.NoError(t, err)
	assert.Equal(t, []string{"footer", "hero"}, r.Names())

	hero, ok := r.Lookup("hero")
	require.True(t, ok)

	out, err := hero(map[string]any{"site": map[string]any{"siteName": "Brian <Dev>"}})
	require.NoError(t, err)
	assert.Equal(t, `<h1>Brian &lt;Dev&gt;</h1>`, out)
}

func TestRegisterAllDiscardsPartialBatch(t *testing.T) {
	fetcher := &mapFetcher{sources: map[string]string{
		"hero":  `<h1>{{ .site.siteName }}</h1>`,
		"about": `<p>{{ .about.name }}</p>`,
	}}

	r := NewRegistry(fetcher, NewHTMLEngine(FuncMap("", nil)))
	err := r.RegisterAll(context.Background(), []string{"hero", "about", "contact"})

	var terr *TemplateUnavailableError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "contact", terr.Name)
	assert.Empty(t, r.Names())
	assert.EqualValues(t, 3, fetcher.calls.Load(), "siblings still run to completion")

	_, ok := r.Lookup("hero")
	assert.False(t, ok)
}

func TestRegisterAllCompileFailure(t *testing.T) {
	fetcher := &mapFetcher{sources: map[string]string{
		"skills": `{{ range .skills }}<li>{{ .name }}</li>`,
	}}

	r := NewRegistry(fetcher, NewHTMLEngine(FuncMap("", nil)))
	err := r.RegisterAll(context.Background(), []string{"skills"})

	var terr *TemplateUnavailableError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "skills", terr.Name)
}

package templates

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// SourceFetcher fetches the source text of a named template.
type SourceFetcher interface {
	FetchTemplateSource(ctx context.Context, name string) (string, error)
}

// Registry holds the compiled templates of one page load, keyed by name.
type Registry struct {
	fetcher SourceFetcher
	engine  Engine

	mu        sync.RWMutex
	templates map[string]RenderFunc
}

func NewRegistry(fetcher SourceFetcher, engine Engine) *Registry {
	return &Registry{
		fetcher:   fetcher,
		engine:    engine,
		templates: map[string]RenderFunc{},
	}
}

// RegisterAll fetches and compiles every named template concurrently. Either
// all of them are registered, or none is and the first failure is returned as
// a *TemplateUnavailableError. Siblings of a failed template are not
// cancelled; their results are dropped.
func (r *Registry) RegisterAll(ctx context.Context, names []string) error {
	names = lo.Uniq(names)
	compiled := make([]RenderFunc, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			source, err := r.fetcher.FetchTemplateSource(ctx, name)
			if err != nil {
				return &TemplateUnavailableError{Name: name, Err: err}
			}

			fn, err := r.engine.Compile(ctx, name, source)
			if err != nil {
				return &TemplateUnavailableError{Name: name, Err: err}
			}

			compiled[i] = fn
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, name := range names {
		r.templates[name] = compiled[i]
	}

	return nil
}

func (r *Registry) Lookup(name string) (RenderFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.templates[name]
	return fn, ok
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.templates)
	sort.Strings(names)
	return names
}

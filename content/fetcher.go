package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultDataDirectory      = "data"
	DefaultTemplatesDirectory = "templates"
	DefaultShell              = "index.html"
)

var errNotText = errors.New("payload is not text")

// Fetcher retrieves data documents, template sources and the page shell from
// a Source. It never retries: the first failure is returned to the caller.
type Fetcher struct {
	src          Source
	dataDir      string
	templatesDir string
	shell        string
	tracer       trace.Tracer
}

type Option func(*Fetcher)

func WithDataDirectory(dir string) Option {
	return func(f *Fetcher) {
		f.dataDir = dir
	}
}

func WithTemplatesDirectory(dir string) Option {
	return func(f *Fetcher) {
		f.templatesDir = dir
	}
}

func WithShell(name string) Option {
	return func(f *Fetcher) {
		f.shell = name
	}
}

func NewFetcher(src Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		src:          src,
		dataDir:      DefaultDataDirectory,
		templatesDir: DefaultTemplatesDirectory,
		shell:        DefaultShell,
		tracer:       otel.Tracer("folio/content"),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// DocumentPath returns the path of the named data document, e.g. "about"
// resolves to "data/about.json".
func (f *Fetcher) DocumentPath(name string) string {
	return path.Join(f.dataDir, name+".json")
}

// TemplatePath returns the path of the named template source.
func (f *Fetcher) TemplatePath(name string) string {
	return path.Join(f.templatesDir, name+".html")
}

// FetchDocument fetches and decodes the named JSON document.
func (f *Fetcher) FetchDocument(ctx context.Context, name string) (any, error) {
	p := f.DocumentPath(name)

	data, err := f.open(ctx, "document", p)
	if err != nil {
		return nil, err
	}

	if mimetype.Detect(data).Is("text/html") {
		return nil, &ResourceUnavailableError{
			Path:   p,
			Status: http.StatusUnsupportedMediaType,
			Err:    errors.New("received an HTML page instead of JSON"),
		}
	}

	var v any
	err = json.Unmarshal(data, &v)
	if err != nil {
		return nil, &ResourceUnavailableError{
			Path:   p,
			Status: http.StatusUnprocessableEntity,
			Err:    fmt.Errorf("invalid JSON: %w", err),
		}
	}

	return v, nil
}

// FetchTemplateSource fetches the source text of the named template.
func (f *Fetcher) FetchTemplateSource(ctx context.Context, name string) (string, error) {
	p := f.TemplatePath(name)

	data, err := f.open(ctx, "template", p)
	if err != nil {
		return "", err
	}

	if len(data) > 0 && !strings.HasPrefix(mimetype.Detect(data).String(), "text/") {
		return "", &ResourceUnavailableError{
			Path:   p,
			Status: http.StatusUnsupportedMediaType,
			Err:    errNotText,
		}
	}

	return string(data), nil
}

// FetchShell fetches the HTML page the rendered content is mounted into.
func (f *Fetcher) FetchShell(ctx context.Context) ([]byte, error) {
	return f.open(ctx, "shell", f.shell)
}

func (f *Fetcher) open(ctx context.Context, kind, p string) ([]byte, error) {
	ctx, span := f.tracer.Start(ctx, "content.Fetch", trace.WithAttributes(
		attribute.String("content.kind", kind),
		attribute.String("content.path", p),
	))
	defer span.End()

	data, err := f.src.Open(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var rerr *ResourceUnavailableError
		if errors.As(err, &rerr) {
			return nil, err
		}
		return nil, &ResourceUnavailableError{Path: p, Err: err}
	}

	span.SetAttributes(attribute.Int("content.size", len(data)))
	return data, nil
}

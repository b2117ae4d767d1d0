package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Source is a content location documents and templates are read from.
// Implementations return a *ResourceUnavailableError on failure.
type Source interface {
	Open(ctx context.Context, name string) ([]byte, error)
}

// NewSource returns an HTTP source for http(s) locations and a filesystem
// source rooted at location otherwise.
func NewSource(location string) (Source, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, nil)
	}

	st, err := os.Stat(location)
	if err != nil {
		return nil, err
	}

	if !st.IsDir() {
		return nil, fmt.Errorf("content source %s is not a directory", location)
	}

	return NewFSSource(afero.NewBasePathFs(afero.NewOsFs(), location)), nil
}

type FSSource struct {
	fs *afero.Afero
}

func NewFSSource(fs afero.Fs) *FSSource {
	return &FSSource{
		fs: &afero.Afero{Fs: fs},
	}
}

// Fs returns the underlying filesystem.
func (s *FSSource) Fs() afero.Fs {
	return s.fs.Fs
}

func (s *FSSource) Open(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ResourceUnavailableError{Path: name, Err: err}
	}

	data, err := s.fs.ReadFile(path.Clean("/" + name))
	if err != nil {
		status := http.StatusInternalServerError
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		return nil, &ResourceUnavailableError{Path: name, Status: status, Err: err}
	}

	return data, nil
}

type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource creates a source resolving names against base. A nil client
// uses one with a 30 seconds timeout.
func NewHTTPSource(base string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	if client == nil {
		client = &http.Client{Timeout: time.Second * 30}
	}

	return &HTTPSource{
		base:   u,
		client: client,
	}, nil
}

func (s *HTTPSource) Open(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, &ResourceUnavailableError{Path: name, Status: http.StatusBadRequest, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, &ResourceUnavailableError{Path: name, Err: err}
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, &ResourceUnavailableError{Path: name, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &ResourceUnavailableError{
			Path:   name,
			Status: res.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", res.Status),
		}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ResourceUnavailableError{Path: name, Err: err}
	}

	return data, nil
}

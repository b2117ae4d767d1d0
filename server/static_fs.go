package server

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/briancabello/briancabello.github.io/content"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// newStaticHandler serves the files of src. Local sources are served with
// http.FileServer, remote ones are read through the source.
func newStaticHandler(src content.Source) http.Handler {
	if fsrc, ok := src.(*content.FSSource); ok {
		return http.FileServer(neuteredFs{afero.NewHttpFs(fsrc.Fs()).Dir("/")})
	}

	return &sourceHandler{src: src}
}

// neuteredFs is a file system that returns 404 when a directory contains
// no index.html so http.FileServer never renders a directory listing.
type neuteredFs struct {
	http.FileSystem
}

func (nfs neuteredFs) Open(path string) (http.File, error) {
	f, err := nfs.FileSystem.Open(path)
	if err != nil {
		return nil, err
	}

	s, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if s.IsDir() {
		index := filepath.Join(path, "index.html")
		idx, err := nfs.FileSystem.Open(index)
		if err != nil {
			closeErr := f.Close()
			if closeErr != nil {
				return nil, closeErr
			}

			return nil, err
		}
		_ = idx.Close()
	}

	return f, nil
}

type sourceHandler struct {
	src content.Source
}

func (h *sourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path
	if strings.HasSuffix(name, "/") {
		name = path.Join(name, "index.html")
	}

	data, err := h.src.Open(r.Context(), name)
	if err != nil {
		code := http.StatusBadGateway
		var rerr *content.ResourceUnavailableError
		if errors.As(err, &rerr) && rerr.NotFound() {
			code = http.StatusNotFound
		}
		http.Error(w, http.StatusText(code), code)
		return
	}

	typ := mime.TypeByExtension(path.Ext(name))
	if typ == "" {
		typ = mimetype.Detect(data).String()
	}

	setCacheControl(w, strings.HasPrefix(typ, "text/html"))
	w.Header().Set("Content-Type", typ)
	_, _ = w.Write(data)
}

func setCacheControl(w http.ResponseWriter, isHTML bool) {
	if isHTML {
		w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
}

// withHidden answers 404 for files that live in the content directory but
// must never be served, such as the theme database.
func withHidden(names []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			base := path.Base(r.URL.Path)
			for _, name := range names {
				if base == name {
					http.NotFound(w, r)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

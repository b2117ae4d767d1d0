package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/briancabello/briancabello.github.io/content"
	"github.com/briancabello/briancabello.github.io/dom"
	"github.com/briancabello/briancabello.github.io/portfolio"
)

// pageGet renders the portfolio page for the request query with the theme of
// the browser session applied.
func (s *Server) pageGet(w http.ResponseWriter, r *http.Request) {
	system := s.systemPreference(w, r)

	sess, err := s.sessions.get(w, r, system.theme)
	if err != nil {
		s.log.Warnw("could not initialise theme", "session", sess.id, "err", err)
	} else if system.hinted {
		sess.systemHint(system.theme)
	}

	doc, err := Shell(r.Context(), s.fetcher)
	if err != nil {
		s.serveError(w, http.StatusInternalServerError, err)
		return
	}

	detach := sess.theme.Attach(doc)
	defer detach()

	page := portfolio.NewPage(doc, s.portfolio.Clock())
	load := s.portfolio.Load(r.Context(), page, r.URL.Query())

	status := http.StatusOK
	if load.State() == portfolio.Failed {
		status = http.StatusInternalServerError

		var rerr *content.ResourceUnavailableError
		if errors.As(load.Err(), &rerr) && rerr.NotFound() {
			status = http.StatusNotFound
		}
	}

	var buf bytes.Buffer
	err = doc.Render(&buf)
	if err != nil {
		s.serveError(w, http.StatusInternalServerError, err)
		return
	}

	setCacheControl(w, true)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Shell returns a fresh document parsed from the page shell of the content
// source, or the built-in shell when the source has none.
func Shell(ctx context.Context, fetcher *content.Fetcher) (*dom.Document, error) {
	data, err := fetcher.FetchShell(ctx)
	if err != nil {
		var rerr *content.ResourceUnavailableError
		if errors.As(err, &rerr) && rerr.NotFound() {
			return dom.NewDefault(), nil
		}
		return nil, err
	}

	return dom.Parse(bytes.NewReader(data))
}

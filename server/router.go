package server

import (
	"net/http"

	"github.com/briancabello/briancabello.github.io/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	themePath       = "/theme"
	themeTogglePath = "/theme/toggle"
	themeSystemPath = "/theme/system"
	themeEventsPath = "/theme/events"
)

func (s *Server) makeRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withRecoverer)
	r.Use(log.WithZap)
	r.Use(withCleanPath)
	r.Use(middleware.GetHead)
	r.Use(withSecurityHeaders)

	r.Get("/", s.pageGet)

	r.Get(themePath, s.themeGet)
	r.Post(themeTogglePath, s.themeTogglePost)
	r.Post(themeSystemPath, s.themeSystemPost)
	r.Get(themeEventsPath, s.themeEventsGet)

	// Raw documents and templates, so another instance can use this one as
	// its content source.
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Accept"},
			MaxAge:         300,
		}))

		r.Get("/"+s.c.Content.Data+"/*", s.static.ServeHTTP)
		r.Get("/"+s.c.Content.Templates+"/*", s.static.ServeHTTP)
	})

	r.With(withHidden(s.hidden)).Get("/*", s.static.ServeHTTP)
	return r
}

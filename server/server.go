package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/briancabello/briancabello.github.io/config"
	"github.com/briancabello/briancabello.github.io/content"
	"github.com/briancabello/briancabello.github.io/log"
	"github.com/briancabello/briancabello.github.io/portfolio"
	"github.com/briancabello/briancabello.github.io/templates"
	"github.com/briancabello/briancabello.github.io/theme"
	"github.com/briancabello/briancabello.github.io/ui"
	"go.uber.org/zap"
)

type Server struct {
	c   *config.Config
	log *zap.SugaredLogger

	src       content.Source
	fetcher   *content.Fetcher
	portfolio *portfolio.Controller
	db        *theme.Database
	sessions  *sessions
	static    http.Handler
	hidden    []string

	server *http.Server
}

// configNames are the file names config.Parse looks for by default. They are
// never served, even when the content source is the working directory.
var configNames = []string{"config.yaml", "config.yml", "config.toml", "config.json"}

// NewServer creates a server for the configured content source. The theme
// database is opened when preferences persist across reloads.
func NewServer(c *config.Config) (*Server, error) {
	src, err := content.NewSource(c.Content.Source)
	if err != nil {
		return nil, err
	}

	var db *theme.Database
	if c.Theme.PersistAcrossReloads && c.Theme.Database != "" {
		db, err = theme.OpenDatabase(c.Theme.Database)
		if err != nil {
			return nil, fmt.Errorf("open theme database: %w", err)
		}
	}

	return newServer(c, src, db), nil
}

func newServer(c *config.Config, src content.Source, db *theme.Database) *Server {
	fetcher := NewFetcher(c, src)

	s := &Server{
		c:         c,
		log:       log.S().Named("server"),
		src:       src,
		fetcher:   fetcher,
		portfolio: NewPortfolio(c, fetcher, nil),
		db:        db,
		static:    newStaticHandler(src),
	}

	s.sessions = newSessions(c.Theme.SessionTTL, s.themeStore, ThemeOptions(c))

	s.hidden = append(s.hidden, configNames...)
	if c.File != "" {
		s.hidden = append(s.hidden, filepath.Base(c.File))
	}
	if c.Theme.Database != "" {
		s.hidden = append(s.hidden, filepath.Base(c.Theme.Database))
	}

	return s
}

// NewFetcher returns the content fetcher described by c.
func NewFetcher(c *config.Config, src content.Source) *content.Fetcher {
	return content.NewFetcher(src,
		content.WithDataDirectory(c.Content.Data),
		content.WithTemplatesDirectory(c.Content.Templates),
		content.WithShell(c.Content.Shell),
	)
}

// NewPortfolio returns the page controller described by c. Templates and the
// controller share clock, time.Now when nil.
func NewPortfolio(c *config.Config, fetcher portfolio.Fetcher, clock func() time.Time) *portfolio.Controller {
	if clock == nil {
		clock = time.Now
	}

	return portfolio.NewController(portfolio.Options{
		Features: portfolio.Features{
			DetailScenario:    c.Features.DetailScenario,
			Analytics:         c.Features.Analytics,
			MobileNavCollapse: c.Features.MobileNavCollapse,
		},
		QueryParameter: c.Render.QueryParameter,
		Requirements: portfolio.Requirements{
			MainFooter:   c.Main.RequireFooter,
			DetailAbout:  c.Detail.RequireAbout,
			DetailFooter: c.Detail.RequireFooter,
		},
		UI: ui.Options{
			HeaderOffset:      c.Render.HeaderOffset,
			CollapseMobileNav: c.Features.MobileNavCollapse,
		},
		HomeURL: "/",
	}, fetcher, templates.NewHTMLEngine(templates.FuncMap(c.BaseURL, clock)), portfolio.WithClock(clock))
}

// ThemeOptions returns the theme controller options described by c.
func ThemeOptions(c *config.Config) theme.Options {
	return theme.Options{
		PersistAcrossReloads: c.Theme.PersistAcrossReloads,
		Attribute:            c.Theme.Attribute,
		InjectToggle:         c.Theme.InjectToggle,
	}
}

// themeStore returns the preference store of a browser. Without a database
// preferences only live as long as the session.
func (s *Server) themeStore(client string) theme.Store {
	if s.db == nil || !s.c.Theme.PersistAcrossReloads {
		return theme.NewMemoryStore()
	}

	return s.db.Store(s.c.Theme.StorageKey + ":" + client)
}

func (s *Server) Start() error {
	addr := ":" + strconv.Itoa(s.c.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error)
	s.server = &http.Server{
		Handler:           s.makeRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		s.log.Infof("listening on %s", ln.Addr().String())
		errCh <- s.server.Serve(ln)
	}()

	return <-errCh
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if s.server != nil {
		errs = append(errs, s.server.Shutdown(ctx))
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) withRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil && rvr != http.ErrAbortHandler {
				s.log.Errorw("panic while serving", "panic", rvr, "stack", string(debug.Stack()))
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func withCleanPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := path.Clean(r.URL.Path)
		if path != "/" && strings.HasSuffix(r.URL.Path, "/") {
			path += "/"
		}

		if r.URL.Path != path {
			http.Redirect(w, r, path, http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

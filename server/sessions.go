package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/briancabello/briancabello.github.io/theme"
	"github.com/google/uuid"
	"github.com/maypok86/otter/v2"
)

const (
	sessionCookie = "folio_session"
	clientCookie  = "folio_client"

	clientCookieMaxAge = 365 * 24 * 60 * 60
	maxSessions        = 10_000
)

// session is the theme state of one browser session. The client id outlives
// the session and scopes the persisted preference.
type session struct {
	id     string
	client string
	theme  *theme.Controller

	mu     sync.Mutex
	system theme.Theme
}

// systemHint records the system preference the browser reported. Only a
// change from the previously reported value reaches the theme controller.
func (s *session) systemHint(t theme.Theme) bool {
	s.mu.Lock()
	changed := s.system != t
	s.system = t
	s.mu.Unlock()

	if !changed {
		return false
	}
	return s.theme.SystemChanged(t)
}

type sessions struct {
	cache *otter.Cache[string, *session]
	store func(client string) theme.Store
	opts  theme.Options
}

func newSessions(ttl time.Duration, store func(client string) theme.Store, opts theme.Options) *sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &sessions{
		cache: otter.Must(&otter.Options[string, *session]{
			MaximumSize:      maxSessions,
			ExpiryCalculator: otter.ExpiryAccessing[string, *session](ttl),
		}),
		store: store,
		opts:  opts,
	}
}

// get returns the session of the request, creating one initialised from the
// system preference when the request carries none. It sets the cookies the
// browser needs to come back to the same session.
func (s *sessions) get(w http.ResponseWriter, r *http.Request, system theme.Theme) (*session, error) {
	client := cookieValue(r, clientCookie)
	if client == "" {
		client = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     clientCookie,
			Value:    client,
			Path:     "/",
			MaxAge:   clientCookieMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	id := cookieValue(r, sessionCookie)
	if sess, ok := s.cache.GetIfPresent(id); ok && id != "" && sess.client == client {
		return sess, nil
	}

	sess := &session{
		id:     uuid.New().String(),
		client: client,
		theme:  theme.NewController(s.store(client), s.opts),
		system: system,
	}

	err := sess.theme.Init(r.Context(), system)
	s.cache.Set(sess.id, sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, err
}

// lookup returns the existing session of the request.
func (s *sessions) lookup(r *http.Request) (*session, bool) {
	id := cookieValue(r, sessionCookie)
	if id == "" {
		return nil, false
	}
	return s.cache.GetIfPresent(id)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

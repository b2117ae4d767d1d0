package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/briancabello/briancabello.github.io/theme"
	"github.com/gorilla/websocket"
)

const colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

type themeState struct {
	theme.Change
	UserOverrode bool `json:"userOverrode"`
}

func stateOf(c *theme.Controller) themeState {
	t, p := c.Current()
	return themeState{
		Change:       theme.Change{Theme: t, Provenance: p, IsDark: t.IsDark()},
		UserOverrode: c.UserOverrode(),
	}
}

type colorScheme struct {
	theme  theme.Theme
	hinted bool
}

// systemPreference reads the colour scheme client hint and asks the browser
// to keep sending it.
func (s *Server) systemPreference(w http.ResponseWriter, r *http.Request) colorScheme {
	w.Header().Set("Accept-CH", colorSchemeHint)
	w.Header().Add("Vary", colorSchemeHint)

	t, err := theme.Parse(r.Header.Get(colorSchemeHint))
	if err != nil {
		return colorScheme{theme: theme.Light}
	}
	return colorScheme{theme: t, hinted: true}
}

func (s *Server) themeGet(w http.ResponseWriter, r *http.Request) {
	system := s.systemPreference(w, r)

	sess, err := s.sessions.get(w, r, system.theme)
	if err != nil {
		s.log.Warnw("could not initialise theme", "session", sess.id, "err", err)
	}

	s.serveJSON(w, http.StatusOK, stateOf(sess.theme))
}

// themeTogglePost flips the theme of the session. Browsers posting the toggle
// form are sent back to the page they came from.
func (s *Server) themeTogglePost(w http.ResponseWriter, r *http.Request) {
	system := s.systemPreference(w, r)

	sess, err := s.sessions.get(w, r, system.theme)
	if err != nil {
		s.log.Warnw("could not initialise theme", "session", sess.id, "err", err)
	}

	_, err = sess.theme.Toggle(r.Context())
	if err != nil {
		s.log.Warnw("could not persist theme", "session", sess.id, "err", err)
	}

	if !strings.Contains(r.Header.Get("Accept"), "application/json") {
		redirect := r.Referer()
		if redirect == "" {
			redirect = "/"
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	s.serveJSON(w, http.StatusOK, stateOf(sess.theme))
}

// themeSystemPost notifies the session of a change of the system colour
// scheme, given as the "theme" form value or the client hint.
func (s *Server) themeSystemPost(w http.ResponseWriter, r *http.Request) {
	hint := s.systemPreference(w, r)

	system := hint.theme
	if v := r.FormValue("theme"); v != "" {
		t, err := theme.Parse(v)
		if err != nil {
			s.serveError(w, http.StatusBadRequest, err)
			return
		}
		system = t
	} else if !hint.hinted {
		s.serveErrorMessage(w, http.StatusBadRequest, "theme is required")
		return
	}

	sess, err := s.sessions.get(w, r, system)
	if err != nil {
		s.log.Warnw("could not initialise theme", "session", sess.id, "err", err)
	}

	sess.systemHint(system)
	s.serveJSON(w, http.StatusOK, stateOf(sess.theme))
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// themeEventsGet streams the theme changes of the session over a websocket.
// The current state is sent first.
func (s *Server) themeEventsGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.lookup(r)
	if !ok {
		s.serveErrorMessage(w, http.StatusUnauthorized, "no theme session")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	changes := make(chan theme.Change, 8)
	unsubscribe := sess.theme.Subscribe(func(c theme.Change) {
		select {
		case changes <- c:
		default:
			s.log.Debugw("dropping theme change", "session", sess.id)
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Debugw("websocket read", "err", err)
				}
				return
			}
		}
	}()

	err = conn.WriteJSON(stateOf(sess.theme).Change)
	if err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case c := <-changes:
			err = conn.WriteJSON(c)
			if err != nil {
				s.log.Debugw("websocket write", "err", err)
				return
			}
		}
	}
}

func (s *Server) serveJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		s.log.Warnw("error while serving json", "err", err)
	}
}

func (s *Server) serveError(w http.ResponseWriter, code int, err error) {
	s.log.Errorw("request failed", "status", code, "err", err)
	s.serveErrorMessage(w, code, err.Error())
}

func (s *Server) serveErrorMessage(w http.ResponseWriter, code int, message string) {
	s.serveJSON(w, code, map[string]string{
		"error":             http.StatusText(code),
		"error_description": message,
	})
}

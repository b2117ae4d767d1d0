package theme

import (
	"context"
	"sync"

	"github.com/briancabello/briancabello.github.io/dom"
	"github.com/briancabello/briancabello.github.io/log"
	"go.uber.org/zap"
)

type Options struct {
	// PersistAcrossReloads saves every explicit toggle and restores it on the
	// next Init. Without it the theme always starts from the system
	// preference and a toggle only lasts for the session.
	PersistAcrossReloads bool

	// Attribute is the root element attribute holding the active theme.
	Attribute string

	// InjectToggle creates the toggle control inside the navigation bar of
	// attached documents that do not provide one.
	InjectToggle bool
}

func DefaultOptions() Options {
	return Options{
		PersistAcrossReloads: true,
		Attribute:            DefaultAttribute,
		InjectToggle:         true,
	}
}

// Controller is the theme state of one browsing session. It is safe for
// concurrent use and may be used before, during or after a page render.
type Controller struct {
	opts  Options
	store Store
	log   *zap.SugaredLogger

	// userMu orders explicit choices, their persistence and system
	// preference changes.
	userMu sync.Mutex

	mu           sync.Mutex
	current      Theme
	provenance   Provenance
	userOverrode bool
	docs         map[*dom.Document]struct{}
	subscribers  map[int]func(Change)
	nextSub      int
}

func NewController(store Store, opts Options) *Controller {
	if store == nil {
		store = NewMemoryStore()
	}
	if opts.Attribute == "" {
		opts.Attribute = DefaultAttribute
	}

	return &Controller{
		opts:        opts,
		store:       store,
		log:         log.S().Named("theme"),
		current:     Light,
		provenance:  ProvenanceSystem,
		docs:        map[*dom.Document]struct{}{},
		subscribers: map[int]func(Change){},
	}
}

// Init establishes the initial theme: the persisted preference when there is
// one and persistence is enabled, the system preference otherwise. A store
// error is returned after falling back to the system preference.
func (c *Controller) Init(ctx context.Context, system Theme) error {
	t, provenance := system, ProvenanceSystem

	var err error
	if c.opts.PersistAcrossReloads {
		var (
			saved Theme
			ok    bool
		)
		saved, ok, err = c.store.Load(ctx)
		if err != nil {
			c.log.Warnw("could not read persisted theme", "err", err)
		} else if ok {
			t, provenance = saved, ProvenancePersisted
		}
	}

	c.set(func(Theme) Theme { return t }, provenance, false)
	return err
}

// Toggle flips the theme on explicit user request. From then on system
// preference changes are ignored for the rest of the session.
func (c *Controller) Toggle(ctx context.Context) (Theme, error) {
	c.userMu.Lock()
	defer c.userMu.Unlock()

	next := c.set(Theme.Opposite, ProvenanceUser, true)
	return next, c.save(ctx, next)
}

// Set applies t as an explicit user choice.
func (c *Controller) Set(ctx context.Context, t Theme) error {
	c.userMu.Lock()
	defer c.userMu.Unlock()

	c.set(func(Theme) Theme { return t }, ProvenanceUser, true)
	return c.save(ctx, t)
}

func (c *Controller) save(ctx context.Context, t Theme) error {
	if !c.opts.PersistAcrossReloads {
		return nil
	}

	err := c.store.Save(ctx, t)
	if err != nil {
		c.log.Errorw("could not persist theme", "theme", t, "err", err)
	}
	return err
}

// SystemChanged handles a change of the system preference. It reports
// whether the change was applied, which is not the case once the user
// toggled the theme in this session.
func (c *Controller) SystemChanged(system Theme) bool {
	c.userMu.Lock()
	defer c.userMu.Unlock()

	c.mu.Lock()
	overrode := c.userOverrode
	c.mu.Unlock()

	if overrode {
		c.log.Debugw("system theme change ignored", "theme", system)
		return false
	}

	c.set(func(Theme) Theme { return system }, ProvenanceSystem, false)
	return true
}

func (c *Controller) Current() (Theme, Provenance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.provenance
}

func (c *Controller) UserOverrode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userOverrode
}

// Subscribe registers fn to receive every theme change. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(Change)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Attach keeps doc in sync with the theme until the returned function is
// called. The toggle control does not need to exist yet: every mutation of
// the document re-syncs it, injecting the control when configured to.
func (c *Controller) Attach(doc *dom.Document) func() {
	c.mu.Lock()
	c.docs[doc] = struct{}{}
	t := c.current
	c.mu.Unlock()

	stopClick := doc.On("click", "#"+toggleID, func(e *dom.Event) error {
		e.PreventDefault()
		_, err := c.Toggle(context.Background())
		return err
	})

	var syncing sync.Mutex
	stopObserve := doc.Observe(func() {
		// Injecting the control is itself a mutation.
		if !syncing.TryLock() {
			return
		}
		defer syncing.Unlock()

		current, _ := c.Current()
		c.apply(doc, current)
	})

	syncing.Lock()
	c.apply(doc, t)
	syncing.Unlock()

	return func() {
		stopClick()
		stopObserve()

		c.mu.Lock()
		delete(c.docs, doc)
		c.mu.Unlock()
	}
}

// set applies the theme pick chooses from the current one and returns it.
// The choice and the state update happen under one lock.
func (c *Controller) set(pick func(current Theme) Theme, provenance Provenance, user bool) Theme {
	c.mu.Lock()
	t := pick(c.current)
	changed := t != c.current || provenance != c.provenance
	c.current = t
	c.provenance = provenance
	if user {
		c.userOverrode = true
	}

	docs := make([]*dom.Document, 0, len(c.docs))
	for doc := range c.docs {
		docs = append(docs, doc)
	}

	subscribers := make([]func(Change), 0, len(c.subscribers))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subscribers[i]; ok {
			subscribers = append(subscribers, fn)
		}
	}
	c.mu.Unlock()

	for _, doc := range docs {
		current, _ := c.Current()
		c.apply(doc, current)
	}

	if !changed && !user {
		return t
	}

	change := Change{Theme: t, Provenance: provenance, IsDark: t.IsDark()}
	for _, fn := range subscribers {
		fn(change)
	}
	return t
}

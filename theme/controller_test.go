package theme

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/briancabello/briancabello.github.io/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const navigation = `<nav class="navbar"><div class="container"><a class="navbar-brand" href="#">Brian</a>` +
	`<div class="collapse navbar-collapse" id="navbarNav"></div></div></nav>`

func TestInitFollowsSystemWithoutPreference(t *testing.T) {
	c := NewController(NewMemoryStore(), DefaultOptions())
	require.NoError(t, c.Init(context.Background(), Dark))

	theme, provenance := c.Current()
	assert.Equal(t, Dark, theme)
	assert.Equal(t, ProvenanceSystem, provenance)
}

func TestInitPersistedWins(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), Light))

	c := NewController(store, DefaultOptions())
	require.NoError(t, c.Init(context.Background(), Dark))

	theme, provenance := c.Current()
	assert.Equal(t, Light, theme)
	assert.Equal(t, ProvenancePersisted, provenance)
}

func TestInitIgnoresStoreWhenNotPersisting(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), Light))

	opts := DefaultOptions()
	opts.PersistAcrossReloads = false

	c := NewController(store, opts)
	require.NoError(t, c.Init(context.Background(), Dark))

	theme, _ := c.Current()
	assert.Equal(t, Dark, theme)

	_, err := c.Toggle(context.Background())
	require.NoError(t, err)

	saved, _, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Light, saved, "toggles are not persisted")
}

func TestToggleOverridesSystem(t *testing.T) {
	ctx := context.Background()
	c := NewController(NewMemoryStore(), DefaultOptions())
	require.NoError(t, c.Init(ctx, Light))

	assert.True(t, c.SystemChanged(Dark))
	theme, _ := c.Current()
	assert.Equal(t, Dark, theme)

	theme, err := c.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Light, theme)
	assert.True(t, c.UserOverrode())

	assert.False(t, c.SystemChanged(Dark))
	theme, provenance := c.Current()
	assert.Equal(t, Light, theme)
	assert.Equal(t, ProvenanceUser, provenance)
}

func TestSystemChangeIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := NewController(store, DefaultOptions())
	require.NoError(t, c.Init(ctx, Light))
	c.SystemChanged(Dark)

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleTwice(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := NewController(store, DefaultOptions())
	require.NoError(t, c.Init(ctx, Dark))

	var changes []Change
	unsubscribe := c.Subscribe(func(ch Change) {
		changes = append(changes, ch)
	})

	theme, err := c.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Light, theme)
	saved, _, _ := store.Load(ctx)
	assert.Equal(t, Light, saved)

	theme, err = c.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Dark, theme)
	saved, _, _ = store.Load(ctx)
	assert.Equal(t, Dark, saved)

	assert.Equal(t, []Change{
		{Theme: Light, Provenance: ProvenanceUser},
		{Theme: Dark, Provenance: ProvenanceUser, IsDark: true},
	}, changes)

	unsubscribe()
	_, err = c.Toggle(ctx)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

type failingStore struct {
	MemoryStore
}

func (s *failingStore) Save(ctx context.Context, t Theme) error {
	return errors.New("disk full")
}

func TestToggleStillAppliesWhenSaveFails(t *testing.T) {
	c := NewController(&failingStore{}, DefaultOptions())
	require.NoError(t, c.Init(context.Background(), Light))

	_, err := c.Toggle(context.Background())
	require.Error(t, err)

	theme, _ := c.Current()
	assert.Equal(t, Dark, theme)
}

func TestAttachSyncsLateControl(t *testing.T) {
	ctx := context.Background()
	doc := dom.NewDefault()

	c := NewController(NewMemoryStore(), DefaultOptions())
	require.NoError(t, c.Init(ctx, Dark))

	detach := c.Attach(doc)
	defer detach()

	doc.Read(func(d *goquery.Document) {
		assert.Equal(t, "dark", d.Find("html").AttrOr("data-theme", ""))
		_, disabled := d.Find("#darkModeStyles").Attr("disabled")
		assert.False(t, disabled)
		assert.Equal(t, 0, d.Find("#themeToggle").Length(), "control waits for the navigation")
	})

	require.NoError(t, doc.Mount(navigation))

	doc.Read(func(d *goquery.Document) {
		btn := d.Find(".navbar .container #themeToggle")
		require.Equal(t, 1, btn.Length())
		assert.Equal(t, "navbarNav", btn.Next().AttrOr("id", ""), "control sits before the collapsible menu")
		assert.Equal(t, "fas fa-sun", d.Find("#themeIcon").AttrOr("class", ""))
		assert.Equal(t, "Light Mode", btn.Find("span").Text())
		assert.Equal(t, "Switch to light mode", btn.AttrOr("aria-label", ""))
		assert.True(t, btn.HasClass("btn-outline-light"))
		assert.False(t, btn.HasClass("btn-outline-secondary"))
	})

	e, err := doc.Click("#themeIcon")
	require.NoError(t, err)
	assert.True(t, e.DefaultPrevented())

	theme, _ := c.Current()
	assert.Equal(t, Light, theme)

	doc.Read(func(d *goquery.Document) {
		assert.Equal(t, "light", d.Find("html").AttrOr("data-theme", ""))
		_, disabled := d.Find("#darkModeStyles").Attr("disabled")
		assert.True(t, disabled)
		assert.Equal(t, "fas fa-moon", d.Find("#themeIcon").AttrOr("class", ""))
		assert.Equal(t, "Dark Mode", d.Find("#themeToggle span").Text())
		assert.Equal(t, 1, d.Find("#themeToggle").Length())
	})
}

func TestAttachWithExistingControl(t *testing.T) {
	doc := dom.NewDefault()
	require.NoError(t, doc.Mount(`<button id="themeToggle" class="btn"><i id="themeIcon"></i></button>`))

	opts := DefaultOptions()
	opts.Attribute = "data-bs-theme"
	opts.InjectToggle = false

	c := NewController(nil, opts)
	require.NoError(t, c.Init(context.Background(), Light))

	detach := c.Attach(doc)
	doc.Read(func(d *goquery.Document) {
		assert.Equal(t, "light", d.Find("html").AttrOr("data-bs-theme", ""))
		assert.Equal(t, "fas fa-moon", d.Find("#themeIcon").AttrOr("class", ""))
	})

	detach()
	c.SystemChanged(Dark)

	doc.Read(func(d *goquery.Document) {
		assert.Equal(t, "light", d.Find("html").AttrOr("data-bs-theme", ""), "detached documents are left alone")
	})
}

func TestAttachWithoutControlIsNoop(t *testing.T) {
	doc, err := dom.ParseString(`<html><head></head><body><div id="app"></div></body></html>`)
	require.NoError(t, err)

	c := NewController(nil, DefaultOptions())
	require.NoError(t, c.Init(context.Background(), Dark))

	detach := c.Attach(doc)
	defer detach()

	require.NoError(t, doc.Mount(`<p>No navigation</p>`))
	_, err = c.Toggle(context.Background())
	require.NoError(t, err)

	doc.Read(func(d *goquery.Document) {
		assert.Equal(t, "light", d.Find("html").AttrOr("data-theme", ""))
		assert.Equal(t, 0, d.Find("#themeToggle").Length())
	})
}

func TestConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := NewController(store, DefaultOptions())
	require.NoError(t, c.Init(ctx, Light))

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Toggle(ctx)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	current, provenance := c.Current()
	assert.Equal(t, ProvenanceUser, provenance)
	assert.Equal(t, Light, current)

	saved, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Light, saved)
}

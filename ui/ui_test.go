package ui

import (
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/briancabello/briancabello.github.io/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<nav id="navbar" class="navbar">
<div class="collapse navbar-collapse show" id="navbarNav">
<a href="#about">About</a><a href="#projects">Projects</a><a href="#">Top</a><a href="#missing">Gone</a>
</div>
</nav>
<section id="about"><span data-bs-toggle="tooltip" title="Go developer">Me</span></section>
<section id="projects"></section>`

func newPage(t *testing.T) (*dom.Document, *dom.Window) {
	t.Helper()

	doc := dom.NewDefault()
	require.NoError(t, doc.Mount(page))

	win := dom.NewWindow()
	win.SetLayout(func(el *goquery.Selection) float64 {
		switch el.AttrOr("id", "") {
		case "about":
			return 600
		case "projects":
			return 1400
		}
		return 0
	})

	return doc, win
}

func TestInit(t *testing.T) {
	doc, win := newPage(t)

	i := NewInitializer(Options{HeaderOffset: 80, CollapseMobileNav: true}, nil)
	require.NoError(t, i.Init(doc, win))

	doc.Read(func(d *goquery.Document) {
		assert.Equal(t, "3", d.Find("body").AttrOr("data-folio-spy", ""))

		tip := d.Find(`[data-bs-toggle="tooltip"]`)
		assert.Equal(t, "Go developer", tip.AttrOr("data-bs-original-title", ""))
		_, hasTitle := tip.Attr("title")
		assert.False(t, hasTitle)
	})
}

func TestSmoothScroll(t *testing.T) {
	doc, win := newPage(t)
	require.NoError(t, NewInitializer(Options{HeaderOffset: 80, CollapseMobileNav: true}, nil).Init(doc, win))

	e, err := doc.Click(`a[href="#about"]`)
	require.NoError(t, err)
	assert.True(t, e.DefaultPrevented())
	assert.Equal(t, []dom.Scroll{{Top: 520, Smooth: true}}, win.Scrolls())

	doc.Read(func(d *goquery.Document) {
		assert.False(t, d.Find("#navbarNav").HasClass("show"))
	})

	_, err = doc.Click(`a[href="#projects"]`)
	require.NoError(t, err)
	assert.Equal(t, 1320.0, win.ScrollY())
}

func TestSmoothScrollIgnoresBareHash(t *testing.T) {
	doc, win := newPage(t)
	require.NoError(t, NewInitializer(Options{HeaderOffset: 80}, nil).Init(doc, win))

	e, err := doc.Click(`a[href="#"]`)
	require.NoError(t, err)
	assert.False(t, e.DefaultPrevented())

	e, err = doc.Click(`a[href="#missing"]`)
	require.NoError(t, err)
	assert.False(t, e.DefaultPrevented())

	assert.Empty(t, win.Scrolls())
}

func TestSmoothScrollKeepsMobileNavWhenDisabled(t *testing.T) {
	doc, win := newPage(t)
	require.NoError(t, NewInitializer(Options{HeaderOffset: 70}, nil).Init(doc, win))

	_, err := doc.Click(`a[href="#about"]`)
	require.NoError(t, err)
	assert.Equal(t, 530.0, win.ScrollY())

	doc.Read(func(d *goquery.Document) {
		assert.True(t, d.Find("#navbarNav").HasClass("show"))
	})
}

type failingWidgets struct {
	DOMWidgets
}

func (failingWidgets) RefreshScrollSpy(*goquery.Selection) error {
	return errors.New("scroll spy not loaded")
}

func TestInitIsBestEffort(t *testing.T) {
	doc, win := newPage(t)

	err := NewInitializer(Options{HeaderOffset: 80}, failingWidgets{}).Init(doc, win)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scroll spy not loaded")

	doc.Read(func(d *goquery.Document) {
		assert.Equal(t, "Go developer", d.Find(`[data-bs-toggle="tooltip"]`).AttrOr("data-bs-original-title", ""))
	})

	_, err = doc.Click(`a[href="#about"]`)
	require.NoError(t, err)
	assert.Len(t, win.Scrolls(), 1)
}

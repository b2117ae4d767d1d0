package dom

import (
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountOnce(t *testing.T) {
	d := NewDefault()

	var mutations int
	stop := d.Observe(func() {
		mutations++
		assert.True(t, d.Mounted(), "observers run after the write and may use the document")
	})

	require.NoError(t, d.Mount(`<nav id="navbar"></nav><section id="about">About</section>`))
	assert.Equal(t, `<nav id="navbar"></nav><section id="about">About</section>`, d.MountedHTML())
	assert.Equal(t, 1, mutations)

	err := d.Mount(`<p>Second</p>`)
	assert.ErrorIs(t, err, ErrAlreadyMounted)
	assert.Contains(t, d.MountedHTML(), "About")

	stop()
	d.AppendHead(`<meta name="x">`)
	assert.Equal(t, 1, mutations)
}

func TestMountWithoutMountPoint(t *testing.T) {
	d, err := ParseString(`<html><head></head><body></body></html>`)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Mount("<p></p>"), ErrNoMountPoint)
}

func TestTitle(t *testing.T) {
	d, err := ParseString(`<html><head></head><body><div id="app"></div></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "", d.Title())
	d.SetTitle("Campus Bites | Case Study")
	assert.Equal(t, "Campus Bites | Case Study", d.Title())
}

func TestDelegatedListeners(t *testing.T) {
	d := NewDefault()

	var got []string
	d.On("click", `a[href^="#"]`, func(e *Event) error {
		got = append(got, e.CurrentTarget.AttrOr("href", ""))
		e.PreventDefault()
		return nil
	})
	d.On("click", "nav", func(e *Event) error {
		return errors.New("nav handler failed")
	})

	require.NoError(t, d.Mount(`<nav><a href="#about"><span class="label">About</span></a></nav><a href="/cv.pdf">CV</a>`))

	e, err := d.Click(".label")
	require.NotNil(t, e)
	assert.Error(t, err)
	assert.True(t, e.DefaultPrevented())
	assert.Equal(t, []string{"#about"}, got)

	e, err = d.Click(`a[href="/cv.pdf"]`)
	require.NoError(t, err)
	assert.False(t, e.DefaultPrevented())

	e, err = d.Click("#nothing")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestByIDIgnoresSelectorSyntax(t *testing.T) {
	d, err := ParseString(`<div id="app"><p id="a b">x</p></div>`)
	require.NoError(t, err)

	d.Read(func(doc *goquery.Document) {
		assert.Equal(t, 1, ByID(doc, "a b").Length())
		assert.Equal(t, 0, ByID(doc, "a").Length())
	})
	assert.True(t, d.Exists("a b"))
}

func TestWindow(t *testing.T) {
	w := NewWindow()
	w.SetLayout(func(el *goquery.Selection) float64 {
		return 500
	})

	w.ScrollTo(100, false)
	assert.Equal(t, 400.0, w.BoundingTop(nil))

	w.ScrollTo(-10, true)
	assert.Equal(t, []Scroll{{Top: 100}, {Top: 0, Smooth: true}}, w.Scrolls())
}

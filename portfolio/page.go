package portfolio

import (
	"time"

	"github.com/briancabello/briancabello.github.io/analytics"
	"github.com/briancabello/briancabello.github.io/dom"
)

// Page is everything one page load writes to.
type Page struct {
	Document  *dom.Document
	Window    *dom.Window
	Analytics *analytics.Injector
}

// NewPage returns a page for doc with a fresh window and analytics queue.
func NewPage(doc *dom.Document, clock func() time.Time) *Page {
	return &Page{
		Document:  doc,
		Window:    dom.NewWindow(),
		Analytics: analytics.NewInjector(clock),
	}
}

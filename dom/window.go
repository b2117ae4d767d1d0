package dom

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Layout reports the offset of an element from the top of the document.
type Layout func(el *goquery.Selection) float64

// Scroll is one scroll request made on a window.
type Scroll struct {
	Top    float64
	Smooth bool
}

// Window holds the scroll state of the page. Without a layout every element
// is reported at the top of the document.
type Window struct {
	mu      sync.Mutex
	scrollY float64
	layout  Layout
	scrolls []Scroll
}

func NewWindow() *Window {
	return &Window{}
}

func (w *Window) SetLayout(layout Layout) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layout = layout
}

func (w *Window) ScrollY() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scrollY
}

// BoundingTop returns the top of el relative to the viewport.
func (w *Window) BoundingTop(el *goquery.Selection) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	var top float64
	if w.layout != nil {
		top = w.layout(el)
	}
	return top - w.scrollY
}

func (w *Window) ScrollTo(top float64, smooth bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if top < 0 {
		top = 0
	}
	w.scrollY = top
	w.scrolls = append(w.scrolls, Scroll{Top: top, Smooth: smooth})
}

// Scrolls returns every scroll request made so far.
func (w *Window) Scrolls() []Scroll {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Scroll(nil), w.scrolls...)
}

package dom

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// Event is dispatched to the listeners of a document.
type Event struct {
	Type string

	// Target is the element the event was dispatched on, CurrentTarget the
	// element matched by the listener's selector.
	Target        *goquery.Selection
	CurrentTarget *goquery.Selection

	defaultPrevented bool
}

func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Handler handles an event. A returned error is reported by Dispatch and does
// not stop other listeners.
type Handler func(e *Event) error

type listener struct {
	typ      string
	selector string
	handler  Handler
}

// On installs a delegated listener: it receives every event of type typ whose
// target is, or is inside, an element matching selector, including elements
// mounted after the listener was installed. The returned function removes it.
func (d *Document) On(typ, selector string, handler Handler) func() {
	l := &listener{typ: typ, selector: selector, handler: handler}

	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		for i, candidate := range d.listeners {
			if candidate == l {
				d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

// Dispatch dispatches an event of type typ on the first element matching
// selector. It returns the dispatched event, or nil when nothing matches.
func (d *Document) Dispatch(typ, selector string) (*Event, error) {
	type match struct {
		l       *listener
		current *goquery.Selection
	}

	d.mu.Lock()
	target := d.doc.Find(selector).First()
	if target.Length() == 0 {
		d.mu.Unlock()
		return nil, nil
	}

	var matches []match
	for _, l := range d.listeners {
		if l.typ != typ {
			continue
		}

		current := target.Closest(l.selector)
		if current.Length() == 0 {
			continue
		}
		matches = append(matches, match{l: l, current: current})
	}
	d.mu.Unlock()

	e := &Event{Type: typ, Target: target}

	var errs []error
	for _, m := range matches {
		e.CurrentTarget = m.current
		if err := m.l.handler(e); err != nil {
			errs = append(errs, err)
		}
	}

	return e, errors.Join(errs...)
}

// Click dispatches a click event on the first element matching selector.
func (d *Document) Click(selector string) (*Event, error) {
	return d.Dispatch("click", selector)
}

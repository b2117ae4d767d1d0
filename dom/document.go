// Package dom is the headless page the renderer works on: a parsed HTML shell
// with a single mount point, delegated event listeners and mutation
// observers, plus the window it is shown in.
package dom

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// MountID is the id of the element whose content is replaced by the render.
const MountID = "app"

// DefaultShell is used when the content source has no page shell.
const DefaultShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Portfolio</title>
<link id="darkModeStyles" rel="stylesheet" href="css/dark-mode.css" disabled>
</head>
<body data-bs-spy="scroll" data-bs-target="#navbar" data-bs-offset="80">
<div id="app"><div class="loading">Loading...</div></div>
</body>
</html>`

var (
	ErrAlreadyMounted = errors.New("mount point was already written")
	ErrNoMountPoint   = errors.New("page has no #" + MountID + " element")
)

// Document is safe for concurrent use. Observers and event handlers are always
// called without the document lock held, so they may use the document.
type Document struct {
	mu        sync.Mutex
	doc       *goquery.Document
	mounted   bool
	listeners []*listener
	observers map[int]func()
	nextID    int
}

func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	return &Document{
		doc:       doc,
		observers: map[int]func(){},
	}, nil
}

func ParseString(html string) (*Document, error) {
	return Parse(strings.NewReader(html))
}

// NewDefault returns a document parsed from DefaultShell.
func NewDefault() *Document {
	d, err := ParseString(DefaultShell)
	if err != nil {
		panic(err)
	}
	return d
}

// Mount replaces the content of the mount point with html. It succeeds only
// once per document, so a page never shows two different renders.
func (d *Document) Mount(html string) error {
	d.mu.Lock()
	if d.mounted {
		d.mu.Unlock()
		return ErrAlreadyMounted
	}

	app := d.byID(MountID)
	if app.Length() == 0 {
		d.mu.Unlock()
		return ErrNoMountPoint
	}

	app.SetHtml(html)
	d.mounted = true
	d.mu.Unlock()

	d.notify()
	return nil
}

func (d *Document) Mounted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mounted
}

// MountedHTML returns the current content of the mount point.
func (d *Document) MountedHTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	html, _ := d.byID(MountID).Html()
	return html
}

func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find("head title").First().Text()
}

func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.doc.Find("head title").First()
	if t.Length() == 0 {
		d.doc.Find("head").AppendHtml("<title></title>")
		t = d.doc.Find("head title").First()
	}
	t.SetText(title)
}

// AppendHead appends raw markup at the end of the head element.
func (d *Document) AppendHead(html string) {
	d.mu.Lock()
	d.doc.Find("head").AppendHtml(html)
	d.mu.Unlock()

	d.notify()
}

// Update runs fn with exclusive access to the underlying document. Observers
// are notified afterwards when fn reports a change.
func (d *Document) Update(fn func(doc *goquery.Document) bool) {
	if d.update(fn) {
		d.notify()
	}
}

func (d *Document) update(fn func(doc *goquery.Document) bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.doc)
}

// Read runs fn with exclusive access to the underlying document. fn must not
// modify it.
func (d *Document) Read(fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}

// Exists reports whether an element with the given id is present.
func (d *Document) Exists(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byID(id).Length() > 0
}

// Observe registers fn to be called after every mutation made through the
// document. The returned function removes the observer.
func (d *Document) Observe(fn func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.observers[id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.observers, id)
	}
}

func (d *Document) notify() {
	d.mu.Lock()
	observers := make([]func(), 0, len(d.observers))
	for i := 0; i < d.nextID; i++ {
		if fn, ok := d.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	d.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	html, err := d.doc.Html()
	d.mu.Unlock()
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, html)
	return err
}

func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// ByID finds the element with the given id in doc. Ids are compared verbatim,
// so user supplied values can never form an invalid selector.
func ByID(doc *goquery.Document, id string) *goquery.Selection {
	return doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("id", "") == id
	}).First()
}

func (d *Document) byID(id string) *goquery.Selection {
	return ByID(d.doc, id)
}

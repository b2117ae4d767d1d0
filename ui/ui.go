// Package ui binds interactive behaviour to a freshly rendered page.
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/briancabello/briancabello.github.io/dom"
	"github.com/briancabello/briancabello.github.io/log"
	"go.uber.org/zap"
)

const (
	DefaultHeaderOffset = 80

	scrollSpySelector = `[data-bs-spy="scroll"]`
	tooltipSelector   = `[data-bs-toggle="tooltip"]`
	anchorSelector    = `a[href^="#"]`
	mobileNavID       = "navbarNav"
)

type Options struct {
	// HeaderOffset is subtracted from scroll targets so sections are not
	// hidden behind the fixed navigation bar.
	HeaderOffset float64

	// CollapseMobileNav closes an open mobile navigation panel before
	// scrolling to an in-page target.
	CollapseMobileNav bool
}

type Initializer struct {
	opts    Options
	widgets Widgets
	log     *zap.SugaredLogger
}

func NewInitializer(opts Options, widgets Widgets) *Initializer {
	if widgets == nil {
		widgets = DOMWidgets{}
	}

	return &Initializer{
		opts:    opts,
		widgets: widgets,
		log:     log.S().Named("ui"),
	}
}

// Init refreshes scroll-spy widgets, creates tooltips and installs smooth
// scrolling for in-page links. Each step runs even when another one failed;
// the failures are logged and returned joined.
func (i *Initializer) Init(doc *dom.Document, win *dom.Window) error {
	err := errors.Join(
		i.refreshScrollSpy(doc),
		i.initTooltips(doc),
		i.initSmoothScroll(doc, win),
	)
	if err != nil {
		i.log.Warnw("ui initialization incomplete", "err", err)
	}
	return err
}

func (i *Initializer) refreshScrollSpy(doc *dom.Document) error {
	return i.each(doc, scrollSpySelector, "scroll spy", i.widgets.RefreshScrollSpy)
}

func (i *Initializer) initTooltips(doc *dom.Document) error {
	return i.each(doc, tooltipSelector, "tooltip", i.widgets.NewTooltip)
}

func (i *Initializer) each(doc *dom.Document, selector, name string, fn func(*goquery.Selection) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", name, r)
		}
	}()

	var errs []error
	doc.Update(func(d *goquery.Document) bool {
		sel := d.Find(selector)
		sel.Each(func(_ int, el *goquery.Selection) {
			if err := fn(el); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		})
		return sel.Length() > 0
	})

	return errors.Join(errs...)
}

func (i *Initializer) initSmoothScroll(doc *dom.Document, win *dom.Window) error {
	if win == nil {
		return errors.New("smooth scroll: no window")
	}

	doc.On("click", anchorSelector, func(e *dom.Event) error {
		href := e.CurrentTarget.AttrOr("href", "")
		if href == "#" || !strings.HasPrefix(href, "#") {
			return nil
		}

		var (
			target    *goquery.Selection
			mobileNav *goquery.Selection
		)
		doc.Read(func(d *goquery.Document) {
			target = dom.ByID(d, strings.TrimPrefix(href, "#"))
			mobileNav = dom.ByID(d, mobileNavID)
		})
		if target.Length() == 0 {
			return nil
		}

		e.PreventDefault()

		var err error
		if i.opts.CollapseMobileNav && mobileNav.HasClass("show") {
			doc.Update(func(*goquery.Document) bool {
				err = i.widgets.HideCollapse(mobileNav)
				return true
			})
		}

		top := win.BoundingTop(target) + win.ScrollY() - i.opts.HeaderOffset
		win.ScrollTo(top, true)
		return err
	})

	return nil
}

package ui

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// Widgets are the third-party UI widgets bound to rendered markup. The
// selection passed to each method is only valid while the call runs.
type Widgets interface {
	RefreshScrollSpy(el *goquery.Selection) error
	NewTooltip(el *goquery.Selection) error
	HideCollapse(el *goquery.Selection) error
}

// DOMWidgets applies the markup changes the widgets would make in a browser.
type DOMWidgets struct{}

func (DOMWidgets) RefreshScrollSpy(el *goquery.Selection) error {
	targets := 0
	if target, ok := el.Attr("data-bs-target"); ok {
		el.Parents().Last().Find(target + ` a[href^="#"]`).Each(func(_ int, a *goquery.Selection) {
			if a.AttrOr("href", "#") != "#" {
				targets++
			}
		})
	}
	el.SetAttr("data-folio-spy", strconv.Itoa(targets))
	return nil
}

func (DOMWidgets) NewTooltip(el *goquery.Selection) error {
	if title, ok := el.Attr("title"); ok {
		el.SetAttr("data-bs-original-title", title)
		el.RemoveAttr("title")
	}
	if _, ok := el.Attr("aria-label"); !ok {
		el.SetAttr("aria-label", el.AttrOr("data-bs-original-title", ""))
	}
	return nil
}

func (DOMWidgets) HideCollapse(el *goquery.Selection) error {
	el.RemoveClass("show")
	return nil
}

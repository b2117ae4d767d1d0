package theme

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/briancabello/briancabello.github.io/dom"
)

const (
	DefaultAttribute = "data-theme"

	toggleID     = "themeToggle"
	iconID       = "themeIcon"
	stylesheetID = "darkModeStyles"

	toggleMarkup = `<button id="themeToggle" type="button" class="theme-toggle-btn btn btn-sm btn-outline-secondary ms-3" aria-label="Switch to dark mode">` +
		`<i id="themeIcon" class="fas fa-moon"></i> <span class="d-none d-md-inline">Dark Mode</span></button>`
)

type appearance struct {
	icon, label, ariaLabel, addClass, removeClass string
}

var appearances = map[Theme]appearance{
	Dark: {
		icon:        "fas fa-sun",
		label:       "Light Mode",
		ariaLabel:   "Switch to light mode",
		addClass:    "btn-outline-light",
		removeClass: "btn-outline-secondary",
	},
	Light: {
		icon:        "fas fa-moon",
		label:       "Dark Mode",
		ariaLabel:   "Switch to dark mode",
		addClass:    "btn-outline-secondary",
		removeClass: "btn-outline-light",
	},
}

// apply reflects t in doc. Every element is optional.
func (c *Controller) apply(doc *dom.Document, t Theme) {
	doc.Update(func(d *goquery.Document) bool {
		changed := false
		set := func(sel *goquery.Selection, name, value string) {
			if v, ok := sel.Attr(name); !ok || v != value {
				sel.SetAttr(name, value)
				changed = true
			}
		}

		if sel := d.Find("html"); sel.Length() > 0 {
			set(sel, c.opts.Attribute, string(t))
		}

		if sheet := dom.ByID(d, stylesheetID); sheet.Length() > 0 {
			_, disabled := sheet.Attr("disabled")
			if t.IsDark() && disabled {
				sheet.RemoveAttr("disabled")
				changed = true
			} else if !t.IsDark() && !disabled {
				sheet.SetAttr("disabled", "")
				changed = true
			}
		}

		if c.opts.InjectToggle && injectToggle(d) {
			changed = true
		}

		btn := dom.ByID(d, toggleID)
		if btn.Length() == 0 {
			return changed
		}

		a := appearances[t]
		set(btn, "aria-label", a.ariaLabel)
		if btn.HasClass(a.removeClass) || !btn.HasClass(a.addClass) {
			btn.RemoveClass(a.removeClass).AddClass(a.addClass)
			changed = true
		}

		if icon := dom.ByID(d, iconID); icon.Length() > 0 {
			set(icon, "class", a.icon)
		}

		if label := btn.Find("span").First(); label.Length() > 0 && label.Text() != a.label {
			label.SetText(a.label)
			changed = true
		}

		return changed
	})
}

// injectToggle adds the toggle control to the navigation bar, before the
// collapsible part when there is one. It reports whether it did.
func injectToggle(d *goquery.Document) bool {
	if dom.ByID(d, toggleID).Length() > 0 {
		return false
	}

	navbar := d.Find(".navbar .container").First()
	if navbar.Length() == 0 {
		return false
	}

	if collapse := navbar.Find(".navbar-collapse").First(); collapse.Length() > 0 {
		collapse.BeforeHtml(toggleMarkup)
	} else {
		navbar.AppendHtml(toggleMarkup)
	}
	return true
}

package portfolio

import (
	"fmt"
	"strings"

	"github.com/briancabello/briancabello.github.io/templates"
)

var (
	mainTemplates = []string{
		"navigation", "hero", "about", "skills", "projects",
		"experience", "education", "contact", "footer",
	}
	detailTemplates = []string{"navigation", "project-detail", "footer"}
)

// Templates returns the templates of scenario s in document order.
func Templates(s Scenario) []string {
	if _, ok := s.(Detail); ok {
		return append([]string(nil), detailTemplates...)
	}
	return append([]string(nil), mainTemplates...)
}

// TemplateLookup finds a compiled template by name.
type TemplateLookup interface {
	Lookup(name string) (templates.RenderFunc, bool)
}

// Composer renders the templates of a scenario into the page mount point.
type Composer struct{}

// Render invokes every template of s, in order, with ctx and writes their
// concatenated output to the mount point in a single write. Nothing is
// written when a template is missing or fails.
func (Composer) Render(s Scenario, tpls TemplateLookup, ctx RenderContext, page *Page) error {
	var b strings.Builder

	for _, name := range Templates(s) {
		fn, ok := tpls.Lookup(name)
		if !ok {
			return &RenderTargetMissingError{Name: name}
		}

		out, err := fn(map[string]any(ctx))
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}

		b.WriteString(out)
	}

	err := page.Document.Mount(b.String())
	if err != nil {
		return err
	}

	if _, ok := s.(Detail); ok {
		if title, ok := ctx["title"].(string); ok {
			page.Document.SetTitle(title + " | Case Study")
		}
		page.Window.ScrollTo(0, false)
	}

	return nil
}

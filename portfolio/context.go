package portfolio

import (
	"net/url"
	"time"
)

// RenderContext is the data every template of one page render receives.
type RenderContext map[string]any

// Documents holds fetched documents keyed by the context field they fill.
type Documents map[string]any

// Requirement describes one document a scenario needs.
type Requirement struct {
	// Field is the context field the document fills.
	Field string

	// Document is the name of the document, relative to the data directory
	// and without extension.
	Document string

	// Envelope is the key holding the actual list, for documents shaped like
	// {"skills": [...]}.
	Envelope string

	// Optional documents may be missing from the source.
	Optional bool
}

// Requirements decides which documents are optional.
type Requirements struct {
	MainFooter   bool
	DetailAbout  bool
	DetailFooter bool
}

func DefaultRequirements() Requirements {
	return Requirements{
		MainFooter:   true,
		DetailAbout:  true,
		DetailFooter: true,
	}
}

const projectField = "project"

// For returns the documents scenario s needs.
func (r Requirements) For(s Scenario) []Requirement {
	switch s := s.(type) {
	case Detail:
		return []Requirement{
			{Field: projectField, Document: "projects/" + url.PathEscape(s.ProjectID)},
			{Field: "site", Document: "site-data"},
			{Field: "about", Document: "about", Optional: !r.DetailAbout},
			{Field: "footer", Document: "footer", Optional: !r.DetailFooter},
		}
	default:
		return []Requirement{
			{Field: "about", Document: "about"},
			{Field: "skills", Document: "skills", Envelope: "skills"},
			{Field: "projects", Document: "projects", Envelope: "projects"},
			{Field: "education", Document: "education", Envelope: "education"},
			{Field: "experiences", Document: "experience", Envelope: "experiences"},
			{Field: "contact", Document: "contact"},
			{Field: "site", Document: "site-data"},
			{Field: "footer", Document: "footer", Optional: !r.MainFooter},
		}
	}
}

// Builder merges fetched documents into a RenderContext.
type Builder struct {
	requirements Requirements
	clock        func() time.Time
}

func NewBuilder(requirements Requirements, clock func() time.Time) *Builder {
	if clock == nil {
		clock = time.Now
	}

	return &Builder{
		requirements: requirements,
		clock:        clock,
	}
}

// Build returns the context for scenario s. It fails with a
// *MissingDataError when a required document or envelope is absent, and never
// returns a partial context.
func (b *Builder) Build(s Scenario, docs Documents) (RenderContext, error) {
	values := map[string]any{}

	for _, req := range b.requirements.For(s) {
		doc, ok := docs[req.Field]
		if !ok || doc == nil {
			if req.Optional {
				continue
			}
			return nil, &MissingDataError{Field: req.Field}
		}

		if req.Envelope != "" {
			envelope, _ := doc.(map[string]any)
			list, ok := envelope[req.Envelope].([]any)
			if !ok {
				return nil, &MissingDataError{Field: req.Document + "." + req.Envelope}
			}
			doc = list
		}

		values[req.Field] = doc
	}

	year := b.clock().Year()

	if _, ok := s.(Detail); !ok {
		ctx := RenderContext(values)
		ctx["currentYear"] = year
		return ctx, nil
	}

	project, ok := values[projectField].(map[string]any)
	if !ok {
		return nil, &MissingDataError{Field: projectField}
	}

	if title, ok := project["title"].(string); !ok || title == "" {
		return nil, &MissingDataError{Field: "title"}
	}

	ctx := RenderContext{}
	for k, v := range project {
		ctx[k] = v
	}

	for _, field := range []string{"site", "about", "footer"} {
		if v, ok := values[field]; ok {
			ctx[field] = v
		}
	}

	ctx["currentYear"] = year
	ctx["isProjectPage"] = true
	return ctx, nil
}

package templates

import (
	"context"
	"html/template"
	"strings"
)

// RenderFunc renders a compiled template against data.
type RenderFunc func(data any) (string, error)

// Engine compiles template sources into render functions.
type Engine interface {
	Compile(ctx context.Context, name, source string) (RenderFunc, error)
}

// HTMLEngine compiles templates with html/template. Missing map keys render
// as empty values, so templates can test optional fields with "with" and "if".
type HTMLEngine struct {
	funcs template.FuncMap
}

func NewHTMLEngine(funcs template.FuncMap) *HTMLEngine {
	return &HTMLEngine{funcs: funcs}
}

func (e *HTMLEngine) Compile(ctx context.Context, name, source string) (RenderFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl, err := template.New(name).
		Funcs(e.funcs).
		Option("missingkey=default").
		Parse(source)
	if err != nil {
		return nil, err
	}

	return func(data any) (string, error) {
		var b strings.Builder
		err := tpl.Execute(&b, data)
		if err != nil {
			return "", err
		}
		return b.String(), nil
	}, nil
}

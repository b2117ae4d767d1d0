package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// FuncMap returns the functions available to every template. Links passed
// to absURL and relURL are resolved against baseURL, now reads clock.
func FuncMap(baseURL string, clock func() time.Time) template.FuncMap {
	if clock == nil {
		clock = time.Now
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy := bluemonday.UGCPolicy()

	return template.FuncMap{
		"now":      clock,
		"absURL":   absoluteURL(baseURL),
		"relURL":   relativeURL(baseURL),
		"markdown": markdown(md, policy),
		"join":     join,
		"lower":    strings.ToLower,
		"upper":    strings.ToUpper,
		"default":  defaultValue,
	}
}

func resolvedURL(baseStr, refStr string) *url.URL {
	base, err := url.Parse(baseStr)
	if err != nil {
		return nil
	}
	page, err := url.Parse(refStr)
	if err != nil {
		return nil
	}
	return base.ResolveReference(page)
}

func absoluteURL(baseStr string) func(string) string {
	return func(refStr string) string {
		resolved := resolvedURL(baseStr, refStr)
		if resolved == nil {
			return ""
		}
		return resolved.String()
	}
}

func relativeURL(baseStr string) func(string) string {
	return func(refStr string) string {
		resolved := resolvedURL(baseStr, refStr)
		if resolved == nil {
			return refStr
		}

		// Take out everything before the path.
		resolved.User = nil
		resolved.Host = ""
		resolved.Scheme = ""
		return resolved.String()
	}
}

func markdown(md goldmark.Markdown, policy *bluemonday.Policy) func(any) (template.HTML, error) {
	return func(v any) (template.HTML, error) {
		if v == nil {
			return "", nil
		}

		var buf bytes.Buffer
		err := md.Convert([]byte(fmt.Sprint(v)), &buf)
		if err != nil {
			return "", err
		}

		return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
	}
}

// join accepts the generic slices decoded from JSON documents.
func join(sep string, v any) string {
	switch vv := v.(type) {
	case []string:
		return strings.Join(vv, sep)
	case []any:
		return strings.Join(lo.Map(vv, func(item any, _ int) string {
			return fmt.Sprint(item)
		}), sep)
	case nil:
		return ""
	default:
		return fmt.Sprint(vv)
	}
}

func defaultValue(def, v any) any {
	switch vv := v.(type) {
	case nil:
		return def
	case string:
		if vv == "" {
			return def
		}
	}
	return v
}

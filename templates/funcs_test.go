package templates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, source string, data any) string {
	t.Helper()

	fn, err := NewHTMLEngine(FuncMap("https://example.com", fixedClock)).Compile(context.Background(), "test", source)
	require.NoError(t, err)

	out, err := fn(data)
	require.NoError(t, err)
	return out
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func TestFuncMap(t *testing.T) {
	tests := []struct {
		title    string
		source   string
		data     any
		expected string
	}{
		{
			title:    "Absolute URL",
			source:   `{{ absURL "/projects/?project=campus-bites" }}`,
			expected: "https://example.com/projects/?project=campus-bites",
		},
		{
			title:    "Relative URL",
			source:   `{{ relURL "https://example.com/img/me.png" }}`,
			expected: "/img/me.png",
		},
		{
			title:    "Join JSON List",
			source:   `{{ join ", " .tech }}`,
			data:     map[string]any{"tech": []any{"Go", "HTML", "CSS"}},
			expected: "Go, HTML, CSS",
		},
		{
			title:    "Default On Missing",
			source:   `{{ default "Untitled" .title }}`,
			data:     map[string]any{},
			expected: "Untitled",
		},
		{
			title:    "Now Reads Clock",
			source:   `{{ (now).Year }}`,
			expected: "2026",
		},
		{
			title:    "Missing Field",
			source:   `<p>{{ .missing }}</p>`,
			data:     map[string]any{},
			expected: "<p></p>",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, render(t, tt.source, tt.data), "failed for title: %s", tt.title)
	}
}

func TestMarkdownIsSanitized(t *testing.T) {
	out := render(t, `{{ markdown .description }}`, map[string]any{
		"description": "**Bold** <script>alert(1)</script>",
	})

	assert.Contains(t, out, "<strong>Bold</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Empty(t, render(t, `{{ markdown .missing }}`, map[string]any{}))
}

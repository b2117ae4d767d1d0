package analytics

import (
	"testing"
	"time"

	"github.com/briancabello/briancabello.github.io/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInject(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	i := NewInjector(func() time.Time { return now })
	doc := dom.NewDefault()

	require.NoError(t, i.Inject(doc, "G-TEST123"))
	require.NoError(t, i.Inject(doc, "G-OTHER"))

	assert.Equal(t, []Call{
		{"js", now},
		{"config", "G-TEST123"},
	}, i.Queue())

	html := doc.String()
	assert.Contains(t, html, `<script async="" src="https://www.googletagmanager.com/gtag/js?id=G-TEST123"></script>`)
	assert.Contains(t, html, `gtag("config","G-TEST123");`)
	assert.Contains(t, html, `gtag("js",new Date(1772366400000));`)
	assert.NotContains(t, html, "G-OTHER")
}

func TestInjectRejectsEmptyID(t *testing.T) {
	i := NewInjector(nil)
	assert.Error(t, i.Inject(dom.NewDefault(), "  "))
	assert.Empty(t, i.Queue())
}

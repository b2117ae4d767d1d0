package portfolio

import (
	"html/template"
	"net/url"
	"strings"
)

var errorView = template.Must(template.New("error").Parse(`<div class="d-flex align-items-center justify-content-center min-vh-100 text-danger">
<div class="text-center">
<i class="fas fa-exclamation-triangle fa-3x mb-3"></i>
<h4>Error Loading Portfolio</h4>
<p>{{ .Message }}</p>
{{- if .Home }}
<a href="{{ .Home }}" class="btn btn-outline-danger mt-3">Return Home</a>
{{- else }}
<a href="{{ .Reload }}" class="btn btn-outline-danger mt-3">Reload</a>
{{- end }}
</div>
</div>`))

// renderErrorView returns the markup shown instead of the page when a load
// fails. Detail pages link back home, the main page links to itself.
func renderErrorView(err error, s Scenario, home string, query url.Values) string {
	data := struct {
		Message string
		Home    string
		Reload  string
	}{
		Message: err.Error(),
	}

	if _, ok := s.(Detail); ok {
		data.Home = home
	} else {
		data.Reload = home
		if len(query) > 0 {
			data.Reload += "?" + query.Encode()
		}
	}

	var b strings.Builder
	if err := errorView.Execute(&b, data); err != nil {
		return template.HTMLEscapeString(data.Message)
	}
	return b.String()
}

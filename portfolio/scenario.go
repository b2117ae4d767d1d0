package portfolio

import (
	"net/url"
	"strings"
)

// DefaultQueryParameter selects the project shown by the detail scenario.
const DefaultQueryParameter = "project"

// Scenario is the page variant selected at load time: Main or Detail.
type Scenario interface {
	scenario()
	String() string
}

// Main is the full portfolio page.
type Main struct{}

// Detail is the case study page of a single project.
type Detail struct {
	ProjectID string
}

func (Main) scenario()   {}
func (Detail) scenario() {}

func (Main) String() string {
	return "main"
}

func (d Detail) String() string {
	return "detail(" + d.ProjectID + ")"
}

// Features switch optional behaviour of the controller on and off.
type Features struct {
	DetailScenario    bool
	Analytics         bool
	MobileNavCollapse bool
}

func DefaultFeatures() Features {
	return Features{
		DetailScenario:    true,
		Analytics:         true,
		MobileNavCollapse: true,
	}
}

// SelectScenario returns Detail when the detail scenario is enabled and the
// query carries a project identifier, Main otherwise.
func SelectScenario(query url.Values, parameter string, features Features) Scenario {
	if !features.DetailScenario {
		return Main{}
	}

	if parameter == "" {
		parameter = DefaultQueryParameter
	}

	id := strings.TrimSpace(query.Get(parameter))
	if id == "" {
		return Main{}
	}

	return Detail{ProjectID: id}
}

package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	table := Default()

	dark := table.Lookup(Dark)
	assert.Equal(t, "plotly_dark", dark.Template.Name)
	assert.Equal(t, "dark-dropdown", dark.DropdownClass)
	assert.Contains(t, dark.Stylesheet, "/darkly/")
	assert.Equal(t, "#1e1e1e", dark.Container["backgroundColor"])
	assert.Equal(t, "white", dark.Container["color"])
	assert.Equal(t, "5%", dark.Container["paddingLeft"])

	light := table.Lookup(Light)
	assert.Equal(t, "plotly_white", light.Template.Name)
	assert.Equal(t, "", light.DropdownClass)
	assert.Contains(t, light.Stylesheet, "/flatly/")
	assert.Equal(t, "black", light.Container["color"])
}

func TestLookupUnknownFallsBackToLight(t *testing.T) {
	table := Default()
	for _, name := range []string{"", "Neon", "ciemny"} {
		th := table.Lookup(name)
		assert.Equal(t, Light, th.Name, name)
		assert.Equal(t, "plotly_white", th.Template.Name, name)
	}
	assert.Equal(t, []string{Light, Dark}, table.Names())
}

func TestStyle(t *testing.T) {
	style := Default().Lookup(Dark).Style()
	assert.Equal(t, "background-color: #1e1e1e; color: white; padding: 20px; padding-left: 5%; padding-right: 5%;", style)
}

func TestParseRejectsUnknownTemplate(t *testing.T) {
	_, err := Parse([]byte("themes:\n  - name: X\n    template: missing\n"))
	require.Error(t, err)

	_, err = Parse([]byte("themes: []\n"))
	require.Error(t, err)
}

// Package theme is the lookup table behind the light/dark display switch.
package theme

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var themesYAML []byte

// Names of the built-in themes
const (
	Light = "Jasny"
	Dark  = "Ciemny"
)

// Template carries the plot colours of a named chart template
type Template struct {
	Name         string   `yaml:"-" json:"name"`
	PaperBGColor string   `yaml:"paper_bgcolor" json:"paper_bgcolor"`
	PlotBGColor  string   `yaml:"plot_bgcolor" json:"plot_bgcolor"`
	FontColor    string   `yaml:"font_color" json:"font_color"`
	GridColor    string   `yaml:"grid_color" json:"grid_color"`
	Colorway     []string `yaml:"colorway" json:"colorway"`
}

// Theme is everything the page changes when the display mode switches
type Theme struct {
	Name          string            `yaml:"name" json:"name"`
	Stylesheet    string            `yaml:"stylesheet" json:"stylesheet"`
	DropdownClass string            `yaml:"dropdown_class" json:"dropdown_class"`
	Container     map[string]string `yaml:"container" json:"container"`
	TemplateName  string            `yaml:"template" json:"-"`
	Template      Template          `yaml:"-" json:"template"`
}

// Style renders the container map as an inline CSS declaration list
func (t Theme) Style() string {
	keys := make([]string, 0, len(t.Container))
	for k := range t.Container {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s; ", cssProperty(k), t.Container[k])
	}
	return strings.TrimSpace(b.String())
}

// Table resolves theme names
type Table struct {
	themes []Theme
	byName map[string]Theme
}

type document struct {
	Themes    []Theme             `yaml:"themes"`
	Templates map[string]Template `yaml:"templates"`
	Padding   map[string]string   `yaml:"padding"`
}

// Parse builds a table from YAML; every theme must reference a defined template
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse themes: %w", err)
	}
	if len(doc.Themes) == 0 {
		return nil, fmt.Errorf("no themes defined")
	}

	t := &Table{byName: make(map[string]Theme, len(doc.Themes))}
	for _, th := range doc.Themes {
		tpl, ok := doc.Templates[th.TemplateName]
		if !ok {
			return nil, fmt.Errorf("theme %q references unknown template %q", th.Name, th.TemplateName)
		}
		tpl.Name = th.TemplateName
		th.Template = tpl

		container := make(map[string]string, len(th.Container)+len(doc.Padding))
		for k, v := range doc.Padding {
			container[k] = v
		}
		for k, v := range th.Container {
			container[k] = v
		}
		th.Container = container

		t.themes = append(t.themes, th)
		t.byName[th.Name] = th
	}
	return t, nil
}

// Default returns the built-in table. It panics if the embedded YAML is broken.
func Default() *Table {
	t, err := Parse(themesYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the named theme, falling back to the first (light) theme
func (t *Table) Lookup(name string) Theme {
	if th, ok := t.byName[name]; ok {
		return th
	}
	return t.themes[0]
}

// Names lists theme names in display order
func (t *Table) Names() []string {
	names := make([]string, len(t.themes))
	for i, th := range t.themes {
		names[i] = th.Name
	}
	return names
}

// cssProperty converts camelCase keys to CSS property names
func cssProperty(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

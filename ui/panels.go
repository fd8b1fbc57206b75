package ui

import (
	"fmt"
	"html/template"

	"habitboard/internal/charts"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

// Panel is the heading and description shown above one chart
type Panel struct {
	ID          string        `yaml:"id"`
	Heading     string        `yaml:"heading"`
	Description string        `yaml:"description"`
	HTML        template.HTML `yaml:"-"`
}

// LoadPanels parses the panel catalogue and renders each description to HTML.
// Every chart must have exactly one panel.
func LoadPanels(data []byte) ([]Panel, error) {
	var doc struct {
		Panels []Panel `yaml:"panels"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse panels: %w", err)
	}

	known := make(map[string]bool, len(charts.Catalog))
	for _, c := range charts.Catalog {
		known[c.ID] = false
	}
	for i := range doc.Panels {
		p := &doc.Panels[i]
		seen, ok := known[p.ID]
		if !ok {
			return nil, fmt.Errorf("panel %q has no chart", p.ID)
		}
		if seen {
			return nil, fmt.Errorf("panel %q is defined twice", p.ID)
		}
		known[p.ID] = true
		p.HTML = renderMarkdown(p.Description)
	}
	for id, seen := range known {
		if !seen {
			return nil, fmt.Errorf("chart %q has no panel", id)
		}
	}
	return doc.Panels, nil
}

func renderMarkdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(src), p, r))
}

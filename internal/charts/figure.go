// Package charts builds Plotly figure documents from dashboard aggregates.
// Figures are plain data: the browser renders them with Plotly.react.
package charts

import (
	"math"
	"strconv"

	"habitboard/domain/theme"
)

// Num is a float that serialises NaN and infinities as JSON null
type Num float64

// MarshalJSON implements json.Marshaler
func (n Num) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func nums(values []float64) []Num {
	out := make([]Num, len(values))
	for i, v := range values {
		out[i] = Num(v)
	}
	return out
}

func numMatrix(m [][]float64) [][]Num {
	out := make([][]Num, len(m))
	for i, row := range m {
		out[i] = nums(row)
	}
	return out
}

// Figure is a complete Plotly figure
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace covers the trace attributes used by the dashboard charts
type Trace struct {
	Type          string      `json:"type"`
	Name          string      `json:"name,omitempty"`
	Mode          string      `json:"mode,omitempty"`
	X             interface{} `json:"x,omitempty"`
	Y             interface{} `json:"y,omitempty"`
	Z             [][]Num     `json:"z,omitempty"`
	CustomData    interface{} `json:"customdata,omitempty"`
	HoverTemplate string      `json:"hovertemplate,omitempty"`
	TextTemplate  string      `json:"texttemplate,omitempty"`
	Marker        *Marker     `json:"marker,omitempty"`
	Line          *LineStyle  `json:"line,omitempty"`
	Opacity       float64     `json:"opacity,omitempty"`
	NBinsX        int         `json:"nbinsx,omitempty"`
	LegendGroup   string      `json:"legendgroup,omitempty"`
	ShowLegend    *bool       `json:"showlegend,omitempty"`
	ColorScale    string      `json:"colorscale,omitempty"`
	ZMin          *float64    `json:"zmin,omitempty"`
	ZMax          *float64    `json:"zmax,omitempty"`
	Box           *Visible    `json:"box,omitempty"`

	// scatterpolar
	R     []Num    `json:"r,omitempty"`
	Theta []string `json:"theta,omitempty"`
	Fill  string   `json:"fill,omitempty"`

	// sunburst
	IDs          []string `json:"ids,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	Parents      []string `json:"parents,omitempty"`
	Values       []int    `json:"values,omitempty"`
	BranchValues string   `json:"branchvalues,omitempty"`
}

// Marker styles points and bars
type Marker struct {
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// LineStyle styles lines and polar outlines
type LineStyle struct {
	Color string `json:"color,omitempty"`
}

// Visible toggles a nested trace feature such as the violin inner box
type Visible struct {
	Visible bool `json:"visible"`
}

// Layout covers the layout attributes used by the dashboard charts
type Layout struct {
	Title        *Title       `json:"title,omitempty"`
	XAxis        *Axis        `json:"xaxis,omitempty"`
	YAxis        *Axis        `json:"yaxis,omitempty"`
	Polar        *PolarAxes   `json:"polar,omitempty"`
	Legend       *Legend      `json:"legend,omitempty"`
	ShowLegend   *bool        `json:"showlegend,omitempty"`
	BarMode      string       `json:"barmode,omitempty"`
	BoxMode      string       `json:"boxmode,omitempty"`
	ViolinMode   string       `json:"violinmode,omitempty"`
	Font         *Font        `json:"font,omitempty"`
	PaperBGColor string       `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string       `json:"plot_bgcolor,omitempty"`
	Colorway     []string     `json:"colorway,omitempty"`
	Annotations  []Annotation `json:"annotations,omitempty"`
	Meta         *Meta        `json:"meta,omitempty"`
}

// Title is a chart or axis title
type Title struct {
	Text string `json:"text"`
}

// Axis is a cartesian or radial axis
type Axis struct {
	Title     *Title    `json:"title,omitempty"`
	GridColor string    `json:"gridcolor,omitempty"`
	AutoRange string    `json:"autorange,omitempty"`
	Type      string    `json:"type,omitempty"`
	Visible   *bool     `json:"visible,omitempty"`
	Range     []float64 `json:"range,omitempty"`
}

// PolarAxes holds the axes of a polar chart
type PolarAxes struct {
	BGColor     string `json:"bgcolor,omitempty"`
	RadialAxis  *Axis  `json:"radialaxis,omitempty"`
	AngularAxis *Axis  `json:"angularaxis,omitempty"`
}

// Legend is the trace legend
type Legend struct {
	Title *Title `json:"title,omitempty"`
}

// Font sets text size and colour
type Font struct {
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
}

// Annotation is free text positioned on the figure
type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ShowArrow bool    `json:"showarrow"`
}

// Meta records which template styled the figure
type Meta struct {
	Template string `json:"template"`
}

func boolPtr(b bool) *bool { return &b }

func titled(text string) *Title { return &Title{Text: text} }

// emptyFigure has no traces and a title marking the missing data
func emptyFigure(title string) Figure {
	return Figure{Data: []Trace{}, Layout: Layout{Title: titled(title + NoDataSuffix)}}
}

// annotatedEmptyFigure has no traces and no title, only a centred note
func annotatedEmptyFigure(text string) Figure {
	return Figure{
		Data: []Trace{},
		Layout: Layout{Annotations: []Annotation{{
			Text: text, XRef: "paper", YRef: "paper", X: 0.5, Y: 0.5, ShowArrow: false,
		}}},
	}
}

// ApplyTemplate paints the figure with a theme template's colours. Explicit trace colours are kept.
func ApplyTemplate(fig Figure, tpl theme.Template) Figure {
	l := fig.Layout
	l.PaperBGColor = tpl.PaperBGColor
	l.PlotBGColor = tpl.PlotBGColor
	l.Colorway = tpl.Colorway
	if l.Font == nil {
		l.Font = &Font{}
	} else {
		f := *l.Font
		l.Font = &f
	}
	l.Font.Color = tpl.FontColor
	l.XAxis = withGrid(l.XAxis, tpl.GridColor)
	l.YAxis = withGrid(l.YAxis, tpl.GridColor)
	if l.Polar != nil {
		p := *l.Polar
		p.BGColor = tpl.PlotBGColor
		p.RadialAxis = withGrid(p.RadialAxis, tpl.GridColor)
		p.AngularAxis = withGrid(p.AngularAxis, tpl.GridColor)
		l.Polar = &p
	}
	l.Meta = &Meta{Template: tpl.Name}
	fig.Layout = l
	return fig
}

func withGrid(a *Axis, color string) *Axis {
	var out Axis
	if a != nil {
		out = *a
	}
	out.GridColor = color
	return &out
}

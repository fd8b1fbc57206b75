package charts

import (
	"fmt"

	"habitboard/domain/student"
	"habitboard/internal/analysis"
)

// Chart identifiers, as used by the page panels and the JSON view
const (
	ScatterID   = "scatter-plot"
	BoxID       = "box-plot"
	HeatmapID   = "heatmap"
	HistogramID = "histogram_fig"
	BarID       = "barchart_fig"
	LineID      = "line_fig"
	ViolinID    = "attendance-violin-plot"
	SunburstID  = "job-sunburst"
	PolarID     = "mental-health-polar"
)

// NoDataSuffix is appended to the title of a figure built from an empty selection
const NoDataSuffix = " (Brak danych)"

const insufficientSuffix = " (Niewystarczające dane)"

// Labels maps dataset columns to their axis captions
var Labels = map[string]string{
	student.ColStudyHours:        "Godziny nauki dziennie",
	student.ColExamScore:         "Wynik egzaminu",
	student.ColGender:            "Płeć",
	student.ColSleepHours:        "Godziny snu",
	student.ColSocialMediaHours:  "Social media hours",
	student.ColAttendance:        "Procentowa frekwencja na zajęciach",
	student.ColParentalEducation: "Poziom wykształcenia rodziców",
	student.ColPartTimeJob:       "Praca na część etatu",
	student.ColMentalHealth:      "Kondycja psychiczna",
}

const (
	meanScoreLabel     = "Średni wynik egzaminu"
	roundedSleepLabel  = "Godziny snu (zaokrąglone)"
	scoreCategoryLabel = "Kategoria wyniku egzaminu"
)

// PolarColors is the colour cycle of the mental health profile traces
var PolarColors = []string{
	"red", "orange", "yellow", "lightgreen", "green",
	"darkgreen", "blue", "purple", "pink", "brown",
}

// Builder turns an aggregate snapshot into a figure
type Builder func(s *analysis.Snapshot) Figure

// titles are the chart headings, emptyTitles the shorter text shown with NoDataSuffix
var (
	titles = map[string]string{
		ScatterID:   "Wpływ czasu nauki na wynik egzaminu",
		BoxID:       "Rozkład wyników egzaminu względem płci",
		HeatmapID:   "Korelacje między cechami",
		HistogramID: "Rozkład wyników egzaminu wg płci",
		BarID:       "Średnie wyniki egzaminów wg wykształcenia rodziców",
		LineID:      "Średni wynik egzaminu w zależności od liczby godzin snu",
		ViolinID:    "Rozkład frekwencji w różnych kategoriach wyników",
		SunburstID:  "Struktura studentów: Status pracy i płeć",
		PolarID:     "Profil różnych metryk wg oceny kondycji psychicznej",
	}
	emptyTitles = map[string]string{
		ScatterID:   "Wpływ czasu nauki na wynik egzaminu",
		BoxID:       "Rozkład wyników egzaminu względem płci",
		HeatmapID:   "Korelacje między cechami",
		HistogramID: "Rozkład wyników egzaminu",
		BarID:       "Średnie wyniki wg poziomu edukacji rodziców",
		LineID:      "Średni wynik vs liczba godzin snu",
		ViolinID:    "Rozkład frekwencji wg wyników egzaminu",
		SunburstID:  "Struktura studentów: praca vs płeć",
		PolarID:     "Metryki wg kondycji psychicznej",
	}
)

// Chart is one entry of the dashboard catalogue
type Chart struct {
	ID         string
	Title      string
	EmptyTitle string
	Build      Builder
}

// Catalog lists every dashboard chart in page order
var Catalog = []Chart{
	chart(ScatterID, Scatter),
	chart(BoxID, Box),
	chart(HeatmapID, Heatmap),
	chart(HistogramID, Histogram),
	chart(BarID, Bar),
	chart(LineID, Line),
	chart(ViolinID, Violin),
	chart(SunburstID, Sunburst),
	chart(PolarID, Polar),
}

func chart(id string, build Builder) Chart {
	return Chart{ID: id, Title: titles[id], EmptyTitle: emptyTitles[id] + NoDataSuffix, Build: build}
}

func axis(text string) *Axis { return &Axis{Title: titled(text)} }

func repeat(label string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = label
	}
	return out
}

func column(records []student.Record, col string) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Numeric(col)
	}
	return out
}

// Scatter plots exam score against study time, one trace per gender
func Scatter(s *analysis.Snapshot) Figure {
	t := titles[ScatterID]
	if s.Empty() {
		return emptyFigure(emptyTitles[ScatterID])
	}

	xLabel, yLabel := Labels[student.ColStudyHours], Labels[student.ColExamScore]
	traces := make([]Trace, 0, len(s.ByGender))
	for _, series := range s.ByGender {
		var x, y []float64
		var custom [][]Num
		for _, r := range series.Records {
			if !student.Present(r.StudyHours) || !student.Present(r.ExamScore) {
				continue
			}
			x = append(x, r.StudyHours)
			y = append(y, r.ExamScore)
			custom = append(custom, []Num{Num(r.SocialMediaHours), Num(r.SleepHours)})
		}
		traces = append(traces, Trace{
			Type:        "scatter",
			Mode:        "markers",
			Name:        series.Label,
			LegendGroup: series.Label,
			X:           nums(x),
			Y:           nums(y),
			CustomData:  custom,
			HoverTemplate: fmt.Sprintf(
				"%s=%s<br>%s=%%{x}<br>%s=%%{y}<br>%s=%%{customdata[0]}<br>%s=%%{customdata[1]}<extra></extra>",
				Labels[student.ColGender], series.Label, xLabel, yLabel,
				Labels[student.ColSocialMediaHours], Labels[student.ColSleepHours],
			),
		})
	}

	return Figure{Data: traces, Layout: Layout{
		Title:  titled(t),
		XAxis:  axis(xLabel),
		YAxis:  axis(yLabel),
		Legend: &Legend{Title: titled(Labels[student.ColGender])},
	}}
}

// Box shows the exam score distribution for each gender
func Box(s *analysis.Snapshot) Figure {
	t := titles[BoxID]
	if s.Empty() {
		return emptyFigure(emptyTitles[BoxID])
	}

	traces := make([]Trace, 0, len(s.ByGender))
	for _, series := range s.ByGender {
		scores := column(series.Records, student.ColExamScore)
		traces = append(traces, Trace{
			Type:        "box",
			Name:        series.Label,
			LegendGroup: series.Label,
			X:           repeat(series.Label, len(scores)),
			Y:           nums(scores),
		})
	}

	return Figure{Data: traces, Layout: Layout{
		Title:   titled(t),
		XAxis:   axis(Labels[student.ColGender]),
		YAxis:   axis(Labels[student.ColExamScore]),
		BoxMode: "group",
		Legend:  &Legend{Title: titled(Labels[student.ColGender])},
	}}
}

// Heatmap renders the correlation matrix with each coefficient printed in its cell
func Heatmap(s *analysis.Snapshot) Figure {
	t := titles[HeatmapID]
	if s.Empty() {
		return emptyFigure(emptyTitles[HeatmapID])
	}
	corr := s.Correlation
	if len(corr.Columns) < 2 {
		return Figure{Data: []Trace{}, Layout: Layout{Title: titled(t + insufficientSuffix)}}
	}

	zMin, zMax := -1.0, 1.0
	return Figure{
		Data: []Trace{{
			Type:          "heatmap",
			X:             corr.Columns,
			Y:             corr.Columns,
			Z:             numMatrix(corr.R),
			CustomData:    numMatrix(corr.P),
			TextTemplate:  "%{z:.2f}",
			HoverTemplate: "x: %{x}<br>y: %{y}<br>r: %{z:.3f}<br>p: %{customdata:.4f}<extra></extra>",
			ColorScale:    "RdBu",
			ZMin:          &zMin,
			ZMax:          &zMax,
		}},
		Layout: Layout{
			Title: titled(t),
			XAxis: &Axis{Type: "category"},
			YAxis: &Axis{Type: "category", AutoRange: "reversed"},
		},
	}
}

// Histogram overlays exam score distributions per gender in 20 bins
func Histogram(s *analysis.Snapshot) Figure {
	t := titles[HistogramID]
	if s.Empty() {
		return emptyFigure(emptyTitles[HistogramID])
	}

	traces := make([]Trace, 0, len(s.ByGender))
	for _, series := range s.ByGender {
		traces = append(traces, Trace{
			Type:        "histogram",
			Name:        series.Label,
			LegendGroup: series.Label,
			X:           nums(column(series.Records, student.ColExamScore)),
			NBinsX:      20,
			Opacity:     0.6,
		})
	}

	return Figure{Data: traces, Layout: Layout{
		Title:   titled(t),
		XAxis:   axis(Labels[student.ColExamScore]),
		YAxis:   axis("count"),
		BarMode: "overlay",
		Legend:  &Legend{Title: titled(Labels[student.ColGender])},
	}}
}

// Bar compares mean exam scores across parental education levels
func Bar(s *analysis.Snapshot) Figure {
	t := titles[BarID]
	if s.Empty() {
		return emptyFigure(emptyTitles[BarID])
	}

	labels := make([]string, len(s.Education))
	means := make([]float64, len(s.Education))
	for i, g := range s.Education {
		labels[i] = g.Label
		means[i] = g.Mean
	}

	return Figure{
		Data: []Trace{{Type: "bar", X: labels, Y: nums(means)}},
		Layout: Layout{
			Title: titled(t),
			XAxis: &Axis{Title: titled(Labels[student.ColParentalEducation]), Type: "category"},
			YAxis: axis(meanScoreLabel),
		},
	}
}

// Line traces the mean exam score over rounded sleep hours
func Line(s *analysis.Snapshot) Figure {
	t := titles[LineID]
	if s.Empty() {
		return emptyFigure(emptyTitles[LineID])
	}

	hours := make([]float64, len(s.Sleep))
	means := make([]float64, len(s.Sleep))
	for i, g := range s.Sleep {
		hours[i] = g.Key
		means[i] = g.Mean
	}

	return Figure{
		Data: []Trace{{Type: "scatter", Mode: "lines+markers", X: nums(hours), Y: nums(means)}},
		Layout: Layout{
			Title: titled(t),
			XAxis: axis(roundedSleepLabel),
			YAxis: axis(meanScoreLabel),
		},
	}
}

// Violin shows attendance spread for each exam score category
func Violin(s *analysis.Snapshot) Figure {
	t := titles[ViolinID]
	if s.Empty() {
		return emptyFigure(emptyTitles[ViolinID])
	}

	traces := make([]Trace, 0, len(s.Attendance))
	for _, cat := range s.Attendance {
		traces = append(traces, Trace{
			Type:        "violin",
			Name:        cat.Label,
			LegendGroup: cat.Label,
			X:           repeat(cat.Label, len(cat.Values)),
			Y:           nums(cat.Values),
			Box:         &Visible{Visible: true},
		})
	}

	return Figure{Data: traces, Layout: Layout{
		Title:      titled(t),
		XAxis:      axis(scoreCategoryLabel),
		YAxis:      axis(Labels[student.ColAttendance]),
		ViolinMode: "group",
		Legend:     &Legend{Title: titled(scoreCategoryLabel)},
	}}
}

// Sunburst nests gender counts inside part-time job status
func Sunburst(s *analysis.Snapshot) Figure {
	if s.Empty() || len(s.Jobs) == 0 {
		return annotatedEmptyFigure(emptyTitles[SunburstID] + NoDataSuffix)
	}

	var ids, labels, parents []string
	var values []int
	for _, job := range s.Jobs {
		for _, g := range job.Genders {
			ids = append(ids, job.Job+" - "+g.Label)
			labels = append(labels, g.Label)
			parents = append(parents, job.Job)
			values = append(values, g.Count)
		}
	}
	for _, job := range s.Jobs {
		ids = append(ids, job.Job)
		labels = append(labels, "Praca: "+job.Job)
		parents = append(parents, "")
		values = append(values, job.Total)
	}

	return Figure{
		Data: []Trace{{
			Type:         "sunburst",
			IDs:          ids,
			Labels:       labels,
			Parents:      parents,
			Values:       values,
			BranchValues: "total",
		}},
		Layout: Layout{Title: titled(titles[SunburstID]), Font: &Font{Size: 12}},
	}
}

// Polar draws one closed radar outline per mental health rating
func Polar(s *analysis.Snapshot) Figure {
	if s.Empty() || len(s.Mental) == 0 {
		return annotatedEmptyFigure(emptyTitles[PolarID] + NoDataSuffix)
	}

	theta := append(append([]string(nil), analysis.ProfileAxes...), analysis.ProfileAxes[0])
	traces := make([]Trace, 0, len(s.Mental))
	for i, p := range s.Mental {
		r := append(p.Values[:], p.Values[0])
		traces = append(traces, Trace{
			Type:    "scatterpolar",
			Name:    fmt.Sprintf("Kondycja psychiczna: %g", p.Rating),
			R:       nums(r),
			Theta:   theta,
			Fill:    "toself",
			Line:    &LineStyle{Color: PolarColors[i%len(PolarColors)]},
			Opacity: 0.6,
		})
	}

	return Figure{Data: traces, Layout: Layout{
		Title:      titled(titles[PolarID]),
		Polar:      &PolarAxes{RadialAxis: &Axis{Visible: boolPtr(true), Range: []float64{0, 10}}},
		ShowLegend: boolPtr(true),
	}}
}

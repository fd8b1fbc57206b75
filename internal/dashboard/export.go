package dashboard

import (
	"io"
	"math"

	"habitboard/adapters/excel"
	"habitboard/domain/filter"
	"habitboard/domain/student"
	"habitboard/internal/analysis"
)

// Sheet names of the exported workbook
const (
	SheetData      = "Dane"
	SheetKPI       = "KPI"
	SheetEducation = "Wykształcenie"
)

// Export writes the selection as an XLSX workbook: the rows, the indicators and a per-education score summary
func (s *Service) Export(w io.Writer, state filter.State) error {
	snap, err := s.Snapshot(state)
	if err != nil {
		return err
	}
	return excel.WriteWorkbook(w, Workbook(snap))
}

// Workbook lays out the sheets of an export
func Workbook(snap *analysis.Snapshot) []excel.Sheet {
	data := excel.Sheet{Name: SheetData, Headers: student.RequiredColumns}
	for _, r := range snap.Records {
		row := make([]interface{}, 0, len(student.RequiredColumns))
		for _, col := range student.RequiredColumns {
			if isNumeric(col) {
				row = append(row, cell(r.Numeric(col)))
			} else {
				row = append(row, r.Categorical(col))
			}
		}
		data.Rows = append(data.Rows, row)
	}

	kpi := excel.Sheet{
		Name:    SheetKPI,
		Headers: []string{"Wskaźnik", "Wartość"},
		Rows: [][]interface{}{
			{"Liczba studentów", snap.KPIs.StudentCount},
			{"Średni wynik", snap.KPIs.AvgScore},
			{"Średnie godziny nauki", snap.KPIs.AvgStudyHours},
		},
	}

	edu := excel.Sheet{
		Name:    SheetEducation,
		Headers: []string{"Wykształcenie rodziców", "Liczba", "Średni wynik", "Min", "Q1", "Mediana", "Q3", "Max"},
	}
	for _, g := range snap.Education {
		row := []interface{}{g.Label, g.Count, cell(g.Mean)}
		if box, ok := analysis.BoxSummary(scoresFor(snap.Records, g.Label)); ok {
			row = append(row, box.Min, box.Q1, box.Median, box.Q3, box.Max)
		}
		edu.Rows = append(edu.Rows, row)
	}

	return []excel.Sheet{data, kpi, edu}
}

func scoresFor(records []student.Record, education string) []float64 {
	var out []float64
	for _, r := range records {
		if r.ParentalEducation == education {
			out = append(out, r.ExamScore)
		}
	}
	return out
}

func isNumeric(col string) bool {
	for _, c := range student.NumericColumns {
		if c == col {
			return true
		}
	}
	return false
}

// cell leaves missing values blank
func cell(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

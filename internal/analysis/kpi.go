// Package analysis computes the aggregates behind the dashboard charts and indicators.
package analysis

import (
	"fmt"
	"math"
	"strconv"

	"habitboard/domain/student"

	"github.com/montanaflynn/stats"
)

// NotAvailable is shown for averages of an empty selection
const NotAvailable = "N/A"

// KPIs are the three headline indicators, preformatted for display
type KPIs struct {
	StudentCount  string `json:"student_count"`
	AvgScore      string `json:"avg_score"`
	AvgStudyHours string `json:"avg_study_hours"`

	Count         int     `json:"-"`
	MeanScore     float64 `json:"-"`
	MeanStudyTime float64 `json:"-"`
}

// ComputeKPIs counts the rows and averages exam score and study hours (2 decimals)
func ComputeKPIs(records []student.Record) KPIs {
	if len(records) == 0 {
		return KPIs{StudentCount: "0", AvgScore: NotAvailable, AvgStudyHours: NotAvailable,
			MeanScore: math.NaN(), MeanStudyTime: math.NaN()}
	}

	k := KPIs{
		Count:         len(records),
		StudentCount:  strconv.Itoa(len(records)),
		MeanScore:     meanOf(records, student.ColExamScore),
		MeanStudyTime: meanOf(records, student.ColStudyHours),
	}
	k.AvgScore = formatMean(k.MeanScore)
	k.AvgStudyHours = formatMean(k.MeanStudyTime)
	return k
}

func formatMean(v float64) string {
	if math.IsNaN(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", v)
}

// meanOf averages the present values of a numeric column; NaN when none are present
func meanOf(records []student.Record, column string) float64 {
	return mean(presentValues(records, column))
}

func presentValues(records []student.Record, column string) []float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if v := r.Numeric(column); student.Present(v) {
			values = append(values, v)
		}
	}
	return values
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return math.NaN()
	}
	return m
}

// BoxStats is a five-number summary
type BoxStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// BoxSummary summarises the present values; ok is false when there are none
func BoxSummary(values []float64) (BoxStats, bool) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if student.Present(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return BoxStats{}, false
	}

	data := stats.Float64Data(present)
	lo, _ := data.Min()
	hi, _ := data.Max()
	median, _ := data.Median()
	q1, _ := data.Percentile(25)
	q3, _ := data.Percentile(75)
	return BoxStats{Min: lo, Q1: q1, Median: median, Q3: q3, Max: hi, Count: len(present)}, true
}

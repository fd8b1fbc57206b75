package student

import (
	"math"
	"sort"
)

// Dataset is an immutable, validated set of student records
type Dataset struct {
	Source  string
	Headers []string
	records []Record
}

// Options are the distinct values offered by the categorical filters
type Options struct {
	Genders   []string `json:"genders"`
	Education []string `json:"education"`
	Jobs      []string `json:"jobs"`
}

// Bounds describes the study hours slider
type Bounds struct {
	Min   int   `json:"min"`
	Max   int   `json:"max"`
	Marks []int `json:"marks"`
}

// NewDataset wraps records; the slice is owned by the dataset afterwards
func NewDataset(source string, headers []string, records []Record) *Dataset {
	return &Dataset{Source: source, Headers: headers, records: records}
}

// Records returns the rows. Callers must not modify the returned slice.
func (d *Dataset) Records() []Record {
	return d.records
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.records)
}

// Shape returns (rows, columns)
func (d *Dataset) Shape() (int, int) {
	return len(d.records), len(d.Headers)
}

// Options returns sorted distinct non-missing values for each categorical filter
func (d *Dataset) Options() Options {
	return Options{
		Genders:   distinct(d.records, ColGender),
		Education: distinct(d.records, ColParentalEducation),
		Jobs:      distinct(d.records, ColPartTimeJob),
	}
}

// StudyHoursBounds truncates min/max study hours to integers and marks every integer between
func (d *Dataset) StudyHoursBounds() Bounds {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range d.records {
		if !Present(r.StudyHours) {
			continue
		}
		lo = math.Min(lo, r.StudyHours)
		hi = math.Max(hi, r.StudyHours)
	}
	if math.IsInf(lo, 1) {
		return Bounds{Marks: []int{0}}
	}

	b := Bounds{Min: int(lo), Max: int(hi)}
	for i := b.Min; i <= b.Max; i++ {
		b.Marks = append(b.Marks, i)
	}
	return b
}

func distinct(records []Record, column string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if v := r.Categorical(column); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

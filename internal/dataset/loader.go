// Package dataset turns a raw student habits table into a validated dataset.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"habitboard/adapters/excel"
	"habitboard/domain/student"
	"habitboard/internal/errors"

	"go.uber.org/zap"
)

// missingTokens mirror the default NA markers of common dataframe readers
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "NaN": {}, "nan": {},
	"None": {}, "NULL": {}, "null": {}, "<NA>": {}, "-NaN": {}, "-nan": {},
}

// IsMissing reports whether a raw cell denotes a missing value
func IsMissing(cell string) bool {
	_, ok := missingTokens[cell]
	return ok
}

// Loader reads and validates the dataset file
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader; a nil logger discards output
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("dataset")}
}

// Load reads path (CSV or XLSX) and validates it
func (l *Loader) Load(path string) (*student.Dataset, error) {
	table, err := excel.NewDataReader(path, l.logger).ReadData()
	if err != nil {
		l.logger.Error("failed to read dataset", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	ds, err := FromTable(path, table)
	if err != nil {
		l.logger.Error("dataset rejected", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	rows, cols := ds.Shape()
	l.logger.Info("dataset loaded", zap.String("path", path), zap.Int("rows", rows), zap.Int("columns", cols))
	return ds, nil
}

// FromTable validates the schema and converts every row into a typed record
func FromTable(source string, table *excel.Table) (*student.Dataset, error) {
	if missing := MissingColumns(table); len(missing) > 0 {
		return nil, errors.SchemaInvalid(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}
	if len(table.Rows) == 0 {
		return nil, errors.DataEmpty("dataset has no rows")
	}

	required := make(map[string]struct{}, len(student.RequiredColumns))
	for _, col := range student.RequiredColumns {
		required[col] = struct{}{}
	}

	records := make([]student.Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		rec, err := parseRow(row, required)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", table.Line(i))
		}
		records = append(records, rec)
	}

	return student.NewDataset(source, table.Headers, records), nil
}

// MissingColumns lists required columns absent from the header, in required order
func MissingColumns(table *excel.Table) []string {
	var missing []string
	for _, col := range student.RequiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

func parseRow(row excel.RawRowData, required map[string]struct{}) (student.Record, error) {
	rec := student.Record{
		Gender:            categorical(row[student.ColGender]),
		ParentalEducation: categorical(row[student.ColParentalEducation]),
		PartTimeJob:       categorical(row[student.ColPartTimeJob]),
	}

	targets := map[string]*float64{
		student.ColStudyHours:       &rec.StudyHours,
		student.ColExamScore:        &rec.ExamScore,
		student.ColSocialMediaHours: &rec.SocialMediaHours,
		student.ColSleepHours:       &rec.SleepHours,
		student.ColAttendance:       &rec.Attendance,
		student.ColMentalHealth:     &rec.MentalHealth,
	}
	for col, dst := range targets {
		v, err := numeric(row[col])
		if err != nil {
			return rec, errors.InvalidInput(fmt.Sprintf("column %s: %v", col, err))
		}
		*dst = v
	}

	for col, val := range row {
		if _, ok := required[col]; ok {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[col] = val
	}
	return rec, nil
}

func categorical(cell string) string {
	if IsMissing(cell) {
		return ""
	}
	return cell
}

func numeric(cell string) (float64, error) {
	if IsMissing(cell) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", cell)
	}
	return v, nil
}

// Package testkit provides deterministic student habits data for tests and demos.
package testkit

import (
	"strings"

	"habitboard/adapters/excel"
	"habitboard/domain/student"
	"habitboard/internal/dataset"
)

// FixtureCSV is a six-row dataset with hand-checked aggregates:
// mean score 75.00, mean study hours 3.50, corr(study, score) = 33/35.
// Row 4 carries a "None" education level, which reads as missing.
const FixtureCSV = `student_id,gender,parental_education_level,study_hours_per_day,exam_score,social_media_hours,sleep_hours,attendance_percentage,part_time_job,mental_health_rating
S1,Female,Master,1.0,50,3.0,8.0,80,No,2
S2,Female,High School,6.0,90,1.0,6.5,95,No,8
S3,Male,High School,2.0,60,4.0,7.5,70,Yes,2
S4,Male,None,4.0,80,2.0,5.5,90,No,8
S5,Female,Bachelor,3.0,70,2.0,7.0,85,Yes,5
S6,Other,Master,5.0,100,1.0,6.0,100,No,8
`

// FixtureDataset parses FixtureCSV. It panics on error since the fixture is static.
func FixtureDataset() *student.Dataset {
	ds, err := DatasetFromCSV(FixtureCSV)
	if err != nil {
		panic(err)
	}
	return ds
}

// DatasetFromCSV parses and validates inline CSV text
func DatasetFromCSV(src string) (*student.Dataset, error) {
	table, err := excel.NewDataReader("inline.csv", nil).ReadCSV(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return dataset.FromTable("inline.csv", table)
}

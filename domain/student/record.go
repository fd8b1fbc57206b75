package student

import "math"

// Column names of the student habits dataset
const (
	ColGender            = "gender"
	ColParentalEducation = "parental_education_level"
	ColStudyHours        = "study_hours_per_day"
	ColExamScore         = "exam_score"
	ColSocialMediaHours  = "social_media_hours"
	ColSleepHours        = "sleep_hours"
	ColAttendance        = "attendance_percentage"
	ColPartTimeJob       = "part_time_job"
	ColMentalHealth      = "mental_health_rating"
)

// RequiredColumns must all be present in the header row, in this reporting order
var RequiredColumns = []string{
	ColGender, ColParentalEducation, ColStudyHours,
	ColExamScore, ColSocialMediaHours, ColSleepHours,
	ColAttendance, ColPartTimeJob, ColMentalHealth,
}

// NumericColumns are the required columns parsed as numbers
var NumericColumns = []string{
	ColStudyHours, ColExamScore, ColSocialMediaHours,
	ColSleepHours, ColAttendance, ColMentalHealth,
}

// HeatmapColumns feed the correlation heatmap
var HeatmapColumns = []string{
	ColStudyHours, ColSleepHours, ColSocialMediaHours,
	ColExamScore, ColAttendance,
}

// Record is one student row. Missing categorical values are "", missing numeric values are NaN.
type Record struct {
	Gender            string
	ParentalEducation string
	PartTimeJob       string
	StudyHours        float64
	ExamScore         float64
	SocialMediaHours  float64
	SleepHours        float64
	Attendance        float64
	MentalHealth      float64
	Extra             map[string]string
}

// Numeric returns the value of a numeric column, NaN for unknown columns
func (r Record) Numeric(column string) float64 {
	switch column {
	case ColStudyHours:
		return r.StudyHours
	case ColExamScore:
		return r.ExamScore
	case ColSocialMediaHours:
		return r.SocialMediaHours
	case ColSleepHours:
		return r.SleepHours
	case ColAttendance:
		return r.Attendance
	case ColMentalHealth:
		return r.MentalHealth
	}
	return math.NaN()
}

// Categorical returns the value of a categorical column, "" for unknown columns
func (r Record) Categorical(column string) string {
	switch column {
	case ColGender:
		return r.Gender
	case ColParentalEducation:
		return r.ParentalEducation
	case ColPartTimeJob:
		return r.PartTimeJob
	}
	return ""
}

// Present reports whether a numeric value was present in the source file
func Present(v float64) bool {
	return !math.IsNaN(v)
}

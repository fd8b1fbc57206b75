package analysis

import "habitboard/domain/student"

// Snapshot bundles every aggregate derived from one filtered selection.
// It is immutable once computed and may be shared between requests.
type Snapshot struct {
	Records     []student.Record
	KPIs        KPIs
	Correlation Correlation
	Education   []GroupMean
	Sleep       []GroupMean
	Attendance  []CategoryValues
	Jobs        []JobGroup
	Mental      []MentalProfile
	ByGender    []Series
}

// Compute derives all aggregates from already filtered records.
// headers decides which heatmap columns exist.
func Compute(records []student.Record, headers []string) *Snapshot {
	return &Snapshot{
		Records:     records,
		KPIs:        ComputeKPIs(records),
		Correlation: CorrelationMatrix(records, AvailableColumns(headers, student.HeatmapColumns)),
		Education:   MeanScoreByEducation(records),
		Sleep:       MeanScoreBySleep(records),
		Attendance:  AttendanceByScoreCategory(records),
		Jobs:        JobGenderCounts(records),
		Mental:      MentalHealthProfile(records),
		ByGender:    SplitBy(records, student.ColGender),
	}
}

// Empty reports whether the selection matched no rows
func (s *Snapshot) Empty() bool {
	return len(s.Records) == 0
}

package analysis

import (
	"math"
	"sort"

	"habitboard/domain/student"
)

// GroupMean is the mean exam score of one group
type GroupMean struct {
	Label string  `json:"label"`
	Key   float64 `json:"key,omitempty"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// MeanScoreByEducation averages exam scores per parental education level, ascending by mean.
// Rows without an education level are left out; equal means keep label order.
func MeanScoreByEducation(records []student.Record) []GroupMean {
	groups := make(map[string][]float64)
	for _, r := range records {
		if r.ParentalEducation == "" {
			continue
		}
		groups[r.ParentalEducation] = appendPresent(groups[r.ParentalEducation], r.ExamScore)
	}

	out := make([]GroupMean, 0, len(groups))
	for label, scores := range groups {
		out = append(out, GroupMean{Label: label, Mean: mean(scores), Count: len(scores)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		// NaN means sort last
		if math.IsNaN(a.Mean) != math.IsNaN(b.Mean) {
			return !math.IsNaN(a.Mean)
		}
		if a.Mean != b.Mean && !math.IsNaN(a.Mean) {
			return a.Mean < b.Mean
		}
		return a.Label < b.Label
	})
	return out
}

// MeanScoreBySleep averages exam scores per sleep duration rounded half-to-even, ascending by hours
func MeanScoreBySleep(records []student.Record) []GroupMean {
	groups := make(map[float64][]float64)
	for _, r := range records {
		if !student.Present(r.SleepHours) {
			continue
		}
		key := math.RoundToEven(r.SleepHours)
		groups[key] = appendPresent(groups[key], r.ExamScore)
	}

	out := make([]GroupMean, 0, len(groups))
	for key, scores := range groups {
		out = append(out, GroupMean{Key: key, Mean: mean(scores), Count: len(scores)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Score categories in bin order; each bin is (lower, upper]
var ScoreCategories = []struct {
	Label        string
	Lower, Upper float64
}{
	{"Słaby (0-60)", 0, 60},
	{"Średni (60-75)", 60, 75},
	{"Dobry (75-85)", 75, 85},
	{"Bardzo dobry (85-100)", 85, 100},
}

// ScoreCategory returns the bin index for score; ok is false outside (0, 100] or for NaN
func ScoreCategory(score float64) (int, bool) {
	for i, c := range ScoreCategories {
		if score > c.Lower && score <= c.Upper {
			return i, true
		}
	}
	return -1, false
}

// CategoryValues holds the attendance values of one score category
type CategoryValues struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// AttendanceByScoreCategory groups attendance by score bin, keeping bin order and dropping empty bins
func AttendanceByScoreCategory(records []student.Record) []CategoryValues {
	buckets := make([][]float64, len(ScoreCategories))
	for _, r := range records {
		idx, ok := ScoreCategory(r.ExamScore)
		if !ok {
			continue
		}
		buckets[idx] = appendPresent(buckets[idx], r.Attendance)
	}

	var out []CategoryValues
	for i, values := range buckets {
		if len(values) == 0 {
			continue
		}
		out = append(out, CategoryValues{Label: ScoreCategories[i].Label, Values: values})
	}
	return out
}

// JobGroup counts students with one part-time job status, split by gender
type JobGroup struct {
	Job     string
	Total   int
	Genders []LabelCount
}

// LabelCount is a labelled tally
type LabelCount struct {
	Label string
	Count int
}

// JobGenderCounts tallies (job, gender) pairs. Jobs and genders are sorted; rows missing either are skipped.
func JobGenderCounts(records []student.Record) []JobGroup {
	counts := make(map[string]map[string]int)
	for _, r := range records {
		if r.PartTimeJob == "" || r.Gender == "" {
			continue
		}
		if counts[r.PartTimeJob] == nil {
			counts[r.PartTimeJob] = make(map[string]int)
		}
		counts[r.PartTimeJob][r.Gender]++
	}

	jobs := sortedKeys(counts)
	out := make([]JobGroup, 0, len(jobs))
	for _, job := range jobs {
		g := JobGroup{Job: job}
		for _, gender := range sortedKeys(counts[job]) {
			n := counts[job][gender]
			g.Genders = append(g.Genders, LabelCount{Label: gender, Count: n})
			g.Total += n
		}
		out = append(out, g)
	}
	return out
}

// ProfileAxes names the five normalised mental health profile axes, in order
var ProfileAxes = []string{"Wynik egzaminu", "Godziny nauki", "Godziny snu", "Frekwencja", "Mniej social media"}

// MentalProfile is the normalised 0-10 profile of one mental health rating
type MentalProfile struct {
	Rating float64
	Values [5]float64
	Count  int
}

// MentalHealthProfile groups by exact rating (ascending) and rescales the group means to roughly 0-10:
// score/10, study*2, sleep*1.25, attendance/10 and 10 - social media hours.
func MentalHealthProfile(records []student.Record) []MentalProfile {
	groups := make(map[float64][]student.Record)
	for _, r := range records {
		if !student.Present(r.MentalHealth) {
			continue
		}
		groups[r.MentalHealth] = append(groups[r.MentalHealth], r)
	}

	ratings := make([]float64, 0, len(groups))
	for k := range groups {
		ratings = append(ratings, k)
	}
	sort.Float64s(ratings)

	out := make([]MentalProfile, 0, len(ratings))
	for _, rating := range ratings {
		g := groups[rating]
		out = append(out, MentalProfile{
			Rating: rating,
			Count:  len(g),
			Values: [5]float64{
				meanOf(g, student.ColExamScore) / 10,
				meanOf(g, student.ColStudyHours) * 2,
				meanOf(g, student.ColSleepHours) * 1.25,
				meanOf(g, student.ColAttendance) / 10,
				10 - meanOf(g, student.ColSocialMediaHours),
			},
		})
	}
	return out
}

// Series holds one category's rows, for per-category traces
type Series struct {
	Label   string
	Records []student.Record
}

// SplitBy partitions records by a categorical column in order of first appearance, skipping missing values
func SplitBy(records []student.Record, column string) []Series {
	index := make(map[string]int)
	var out []Series
	for _, r := range records {
		label := r.Categorical(column)
		if label == "" {
			continue
		}
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, Series{Label: label})
		}
		out[i].Records = append(out[i].Records, r)
	}
	return out
}

func appendPresent(values []float64, v float64) []float64 {
	if student.Present(v) {
		return append(values, v)
	}
	return values
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

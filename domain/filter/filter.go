// Package filter holds the dashboard filter state and applies it to records.
package filter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"habitboard/domain/student"
	"habitboard/internal/errors"
)

// Range is an inclusive study hours interval
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// State is the full set of filter selections. Empty selections do not filter.
type State struct {
	Genders    []string `json:"genders,omitempty"`
	Education  []string `json:"education,omitempty"`
	Jobs       []string `json:"jobs,omitempty"`
	StudyHours *Range   `json:"study_hours,omitempty"`
}

// Query parameter names shared by the page script, the API and saved views
const (
	ParamGender   = "gender"
	ParamEdu      = "edu"
	ParamJob      = "job"
	ParamHoursMin = "hours_min"
	ParamHoursMax = "hours_max"
)

// Apply returns the records matching every active selection. The input is not modified.
func (s State) Apply(records []student.Record) []student.Record {
	genders := toSet(s.Genders)
	education := toSet(s.Education)
	jobs := toSet(s.Jobs)

	out := make([]student.Record, 0, len(records))
	for _, r := range records {
		if !matches(genders, r.Gender) || !matches(education, r.ParentalEducation) || !matches(jobs, r.PartTimeJob) {
			continue
		}
		// NaN fails both comparisons, so rows without study hours drop out of any range
		if s.StudyHours != nil && !(r.StudyHours >= s.StudyHours.Min && r.StudyHours <= s.StudyHours.Max) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// IsZero reports whether no selection is active
func (s State) IsZero() bool {
	return len(s.Genders) == 0 && len(s.Education) == 0 && len(s.Jobs) == 0 && s.StudyHours == nil
}

// Normalized returns a copy with sorted, de-duplicated, non-empty selections
func (s State) Normalized() State {
	n := State{
		Genders:   normalize(s.Genders),
		Education: normalize(s.Education),
		Jobs:      normalize(s.Jobs),
	}
	if s.StudyHours != nil {
		r := *s.StudyHours
		n.StudyHours = &r
	}
	return n
}

// Fingerprint is a stable key for the state: selection order and duplicates do not matter
func (s State) Fingerprint() string {
	n := s.Normalized()
	var b strings.Builder
	writeList(&b, ParamGender, n.Genders)
	writeList(&b, ParamEdu, n.Education)
	writeList(&b, ParamJob, n.Jobs)
	if n.StudyHours != nil {
		fmt.Fprintf(&b, "hours=%s..%s;",
			strconv.FormatFloat(n.StudyHours.Min, 'g', -1, 64),
			strconv.FormatFloat(n.StudyHours.Max, 'g', -1, 64))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:12])
}

// Query encodes the state as URL parameters understood by ParseQuery
func (s State) Query() url.Values {
	v := url.Values{}
	for _, g := range s.Genders {
		v.Add(ParamGender, g)
	}
	for _, e := range s.Education {
		v.Add(ParamEdu, e)
	}
	for _, j := range s.Jobs {
		v.Add(ParamJob, j)
	}
	if s.StudyHours != nil {
		v.Set(ParamHoursMin, strconv.FormatFloat(s.StudyHours.Min, 'g', -1, 64))
		v.Set(ParamHoursMax, strconv.FormatFloat(s.StudyHours.Max, 'g', -1, 64))
	}
	return v
}

// ParseQuery reads repeated gender/edu/job parameters and an optional hours range.
// The range applies only when both bounds are given.
func ParseQuery(v url.Values) (State, error) {
	s := State{
		Genders:   nonEmpty(v[ParamGender]),
		Education: nonEmpty(v[ParamEdu]),
		Jobs:      nonEmpty(v[ParamJob]),
	}

	minRaw, maxRaw := v.Get(ParamHoursMin), v.Get(ParamHoursMax)
	if minRaw == "" || maxRaw == "" {
		return s, nil
	}

	lo, err := strconv.ParseFloat(minRaw, 64)
	if err != nil {
		return s, errors.InvalidInput(fmt.Sprintf("%s must be a number, got %q", ParamHoursMin, minRaw))
	}
	hi, err := strconv.ParseFloat(maxRaw, 64)
	if err != nil {
		return s, errors.InvalidInput(fmt.Sprintf("%s must be a number, got %q", ParamHoursMax, maxRaw))
	}
	s.StudyHours = &Range{Min: lo, Max: hi}
	return s, s.Validate()
}

// Validate rejects inverted or non-finite ranges
func (s State) Validate() error {
	if s.StudyHours == nil {
		return nil
	}
	if math.IsNaN(s.StudyHours.Min) || math.IsNaN(s.StudyHours.Max) {
		return errors.InvalidInput("study hours range must be numeric")
	}
	if s.StudyHours.Min > s.StudyHours.Max {
		return errors.InvalidInput(fmt.Sprintf("study hours range is inverted: %g > %g", s.StudyHours.Min, s.StudyHours.Max))
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matches treats a nil set as "no filter"; missing values never match an active filter
func matches(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	if value == "" {
		return false
	}
	_, ok := set[value]
	return ok
}

func normalize(values []string) []string {
	values = nonEmpty(values)
	if len(values) == 0 {
		return nil
	}
	out := append([]string(nil), values...)
	sort.Strings(out)
	j := 0
	for i, v := range out {
		if i == 0 || v != out[j-1] {
			out[j] = v
			j++
		}
	}
	return out[:j]
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func writeList(b *strings.Builder, key string, values []string) {
	b.WriteString(key)
	b.WriteByte('=')
	for _, v := range values {
		b.WriteString(strconv.Quote(v))
		b.WriteByte(',')
	}
	b.WriteByte(';')
}

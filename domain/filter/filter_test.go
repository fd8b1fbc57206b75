package filter_test

import (
	"net/url"
	"testing"

	"habitboard/domain/filter"
	"habitboard/internal/errors"
	"habitboard/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(t *testing.T, s filter.State) []string {
	t.Helper()
	var out []string
	for _, r := range s.Apply(testkit.FixtureDataset().Records()) {
		out = append(out, r.Extra["student_id"])
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		state filter.State
		want  []string
	}{
		{"no filter keeps everything", filter.State{}, []string{"S1", "S2", "S3", "S4", "S5", "S6"}},
		{"gender", filter.State{Genders: []string{"Female"}}, []string{"S1", "S2", "S5"}},
		{"several genders", filter.State{Genders: []string{"Male", "Other"}}, []string{"S3", "S4", "S6"}},
		{"education drops missing values", filter.State{Education: []string{"Master", "High School"}}, []string{"S1", "S2", "S3", "S6"}},
		{"job", filter.State{Jobs: []string{"Yes"}}, []string{"S3", "S5"}},
		{"inclusive range", filter.State{StudyHours: &filter.Range{Min: 2, Max: 4}}, []string{"S3", "S4", "S5"}},
		{"combined", filter.State{Genders: []string{"Female"}, Jobs: []string{"No"}, StudyHours: &filter.Range{Min: 0, Max: 5}}, []string{"S1"}},
		{"no match", filter.State{Genders: []string{"Unknown"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(t, tt.state))
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := testkit.FixtureDataset().Records()
	before := len(records)
	filter.State{Genders: []string{"Male"}}.Apply(records)
	assert.Len(t, records, before)
	assert.Equal(t, "S1", records[0].Extra["student_id"])
}

func TestFingerprintIgnoresOrderAndDuplicates(t *testing.T) {
	a := filter.State{Genders: []string{"Male", "Female"}, StudyHours: &filter.Range{Min: 1, Max: 5}}
	b := filter.State{Genders: []string{"Female", "Male", "Male", " "}, StudyHours: &filter.Range{Min: 1, Max: 5}}
	c := filter.State{Genders: []string{"Female", "Male"}, StudyHours: &filter.Range{Min: 1, Max: 6}}
	d := filter.State{Education: []string{"Female", "Male"}, StudyHours: &filter.Range{Min: 1, Max: 5}}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint(), "same values in another column differ")
	assert.NotEqual(t, filter.State{}.Fingerprint(), a.Fingerprint())
}

func TestParseQuery(t *testing.T) {
	v, err := url.ParseQuery("gender=Male&gender=Female&edu=Master&job=No&hours_min=1&hours_max=4.5")
	require.NoError(t, err)

	s, err := filter.ParseQuery(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Male", "Female"}, s.Genders)
	assert.Equal(t, []string{"Master"}, s.Education)
	assert.Equal(t, []string{"No"}, s.Jobs)
	require.NotNil(t, s.StudyHours)
	assert.Equal(t, filter.Range{Min: 1, Max: 4.5}, *s.StudyHours)

	again, err := filter.ParseQuery(s.Query())
	require.NoError(t, err)
	assert.Equal(t, s.Fingerprint(), again.Fingerprint())
}

func TestParseQueryNeedsBothBounds(t *testing.T) {
	s, err := filter.ParseQuery(url.Values{"hours_min": {"2"}})
	require.NoError(t, err)
	assert.Nil(t, s.StudyHours)
	assert.True(t, s.IsZero())
}

func TestParseQueryRejectsBadRanges(t *testing.T) {
	_, err := filter.ParseQuery(url.Values{"hours_min": {"x"}, "hours_max": {"3"}})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = filter.ParseQuery(url.Values{"hours_min": {"5"}, "hours_max": {"3"}})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

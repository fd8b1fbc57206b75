package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"habitboard/domain/student"
)

// StudentGeneratorConfig configures the synthetic student generator
type StudentGeneratorConfig struct {
	StudentCount         int     `json:"student_count"`
	MissingEducationRate float64 `json:"missing_education_rate"`
	PartTimeJobRate      float64 `json:"part_time_job_rate"`
	Seed                 int64   `json:"seed"`
}

// DefaultStudentConfig mirrors the size and shape of the public dataset
func DefaultStudentConfig() StudentGeneratorConfig {
	return StudentGeneratorConfig{
		StudentCount:         1000,
		MissingEducationRate: 0.09,
		PartTimeJobRate:      0.21,
		Seed:                 42,
	}
}

var (
	genders        = []string{"Female", "Male", "Other"}
	genderWeights  = []float64{0.48, 0.48, 0.04}
	educationLevel = []string{"High School", "Bachelor", "Master"}
)

// StudentDataGenerator produces plausible, correlated habit records
type StudentDataGenerator struct {
	config StudentGeneratorConfig
	rng    *rand.Rand
}

// NewStudentDataGenerator creates a generator seeded from config
func NewStudentDataGenerator(config StudentGeneratorConfig) *StudentDataGenerator {
	return &StudentDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns StudentCount records. Same seed, same records.
func (g *StudentDataGenerator) Generate() []student.Record {
	records := make([]student.Record, 0, g.config.StudentCount)
	for i := 0; i < g.config.StudentCount; i++ {
		records = append(records, g.generateStudent(i))
	}
	return records
}

func (g *StudentDataGenerator) generateStudent(i int) student.Record {
	study := g.clamp(g.rng.NormFloat64()*1.5+3.5, 0, 8.3)
	social := g.clamp(g.rng.NormFloat64()*1.2+2.5, 0, 7.2)
	sleep := g.clamp(g.rng.NormFloat64()*1.2+6.5, 3.2, 10)
	attendance := g.clamp(g.rng.NormFloat64()*9+84, 56, 100)
	mental := float64(1 + g.rng.Intn(10))

	// Score loosely follows the public dataset: study dominates, social media hurts
	score := 35 + 9.5*study - 2.5*social + 1.8*sleep + 1.9*mental + 0.05*attendance + g.rng.NormFloat64()*5
	score = g.clamp(score, 18.4, 100)

	edu := educationLevel[g.rng.Intn(len(educationLevel))]
	if g.rng.Float64() < g.config.MissingEducationRate {
		edu = ""
	}
	job := "No"
	if g.rng.Float64() < g.config.PartTimeJobRate {
		job = "Yes"
	}

	return student.Record{
		Gender:            g.pickGender(),
		ParentalEducation: edu,
		PartTimeJob:       job,
		StudyHours:        round1(study),
		ExamScore:         round1(score),
		SocialMediaHours:  round1(social),
		SleepHours:        round1(sleep),
		Attendance:        round1(attendance),
		MentalHealth:      mental,
		Extra:             map[string]string{"student_id": fmt.Sprintf("S%04d", 1000+i)},
	}
}

func (g *StudentDataGenerator) pickGender() string {
	x := g.rng.Float64()
	for i, w := range genderWeights {
		if x < w {
			return genders[i]
		}
		x -= w
	}
	return genders[len(genders)-1]
}

func (g *StudentDataGenerator) clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// WriteCSV writes records with the public dataset's header. Missing education is written as "None".
func WriteCSV(w io.Writer, records []student.Record) error {
	cw := csv.NewWriter(w)
	header := append([]string{"student_id"}, student.RequiredColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		edu := r.ParentalEducation
		if edu == "" {
			edu = "None"
		}
		row := []string{
			r.Extra["student_id"],
			r.Gender,
			edu,
			formatFloat(r.StudyHours),
			formatFloat(r.ExamScore),
			formatFloat(r.SocialMediaHours),
			formatFloat(r.SleepHours),
			formatFloat(r.Attendance),
			r.PartTimeJob,
			formatFloat(r.MentalHealth),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

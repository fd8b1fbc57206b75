package main

import (
	"habitboard/domain/filter"
	"habitboard/internal/errors"

	"github.com/spf13/cobra"
)

// filterFlags mirror the page controls
type filterFlags struct {
	genders   []string
	education []string
	jobs      []string
	hoursMin  float64
	hoursMax  float64
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.genders, "gender", nil, "Keep these genders (repeatable)")
	cmd.Flags().StringSliceVar(&f.education, "edu", nil, "Keep these parental education levels (repeatable)")
	cmd.Flags().StringSliceVar(&f.jobs, "job", nil, "Keep these part-time job values (repeatable)")
	cmd.Flags().Float64Var(&f.hoursMin, "hours-min", 0, "Minimum study hours per day (needs --hours-max)")
	cmd.Flags().Float64Var(&f.hoursMax, "hours-max", 0, "Maximum study hours per day (needs --hours-min)")
}

// state builds the filter; the range applies only when both bounds are given
func (f *filterFlags) state(cmd *cobra.Command) (filter.State, error) {
	s := filter.State{Genders: f.genders, Education: f.education, Jobs: f.jobs}

	minSet, maxSet := cmd.Flags().Changed("hours-min"), cmd.Flags().Changed("hours-max")
	if minSet != maxSet {
		return filter.State{}, errors.InvalidInput("--hours-min and --hours-max must be given together")
	}
	if minSet {
		s.StudyHours = &filter.Range{Min: f.hoursMin, Max: f.hoursMax}
	}
	if err := s.Validate(); err != nil {
		return filter.State{}, err
	}
	return s, nil
}

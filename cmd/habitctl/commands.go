package main

import (
	"fmt"
	"os"
	"strconv"

	"habitboard/adapters/kaggle"
	"habitboard/adapters/store"
	"habitboard/domain/student"
	"habitboard/domain/theme"
	"habitboard/internal/analysis"
	"habitboard/internal/container"
	"habitboard/internal/dashboard"
	"habitboard/internal/dataset"
	"habitboard/internal/errors"
	"habitboard/internal/migration"
	"habitboard/internal/testkit"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newFetchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the dataset from Kaggle unless it is already present",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kaggle.NewFetcher(e.cfg, nil, e.logger).EnsureDataset(cmd.Context()); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "dataset ready at %s\n", e.cfg.DataPath())
			return nil
		},
	}
}

func newValidateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the dataset and report its shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.NewLoader(e.logger).Load(e.cfg.DataPath())
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "❌ %s is invalid\n", e.cfg.DataPath())
				return err
			}
			rows, cols := ds.Shape()
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ %s: %d rows, %d columns\n", e.cfg.DataPath(), rows, cols)
			return nil
		},
	}
}

// loadService reads the dataset into a service with a small cache
func loadService(e *env) (*dashboard.Service, error) {
	ds, err := dataset.NewLoader(e.logger).Load(e.cfg.DataPath())
	if err != nil {
		return nil, err
	}
	return dashboard.NewService(ds, theme.Default(), analysis.NewCache(1), nil, e.logger), nil
}

func newSummaryCmd(e *env) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the indicators and mean score by parental education",
		Example: `  habitctl summary
  habitctl summary --gender Female --job No --hours-min 2 --hours-max 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := flags.state(cmd)
			if err != nil {
				return err
			}
			svc, err := loadService(e)
			if err != nil {
				return err
			}
			snap, err := svc.Snapshot(state)
			if err != nil {
				return err
			}
			printSummary(cmd, snap)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printSummary(cmd *cobra.Command, snap *analysis.Snapshot) {
	out := cmd.OutOrStdout()
	heading := color.New(color.FgCyan, color.Bold)

	heading.Fprintln(out, "\n=== Kluczowe wskaźniki ===")
	kpis := tablewriter.NewWriter(out)
	kpis.SetHeader([]string{"Liczba studentów", "Średni wynik", "Średnie godziny nauki"})
	kpis.Append([]string{snap.KPIs.StudentCount, snap.KPIs.AvgScore, snap.KPIs.AvgStudyHours})
	kpis.Render()

	heading.Fprintln(out, "\n=== Średni wynik wg wykształcenia rodziców ===")
	if len(snap.Education) == 0 {
		color.New(color.FgYellow).Fprintln(out, "Brak danych")
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Wykształcenie", "Liczba", "Średni wynik", "Mediana", "Q1", "Q3"})
	for _, g := range snap.Education {
		row := []string{g.Label, strconv.Itoa(g.Count), fmt.Sprintf("%.2f", g.Mean), "", "", ""}
		if box, ok := analysis.BoxSummary(scores(snap.Records, g.Label)); ok {
			row[3] = fmt.Sprintf("%.2f", box.Median)
			row[4] = fmt.Sprintf("%.2f", box.Q1)
			row[5] = fmt.Sprintf("%.2f", box.Q3)
		}
		table.Append(row)
	}
	table.Render()
}

func scores(records []student.Record, education string) []float64 {
	var out []float64
	for _, r := range records {
		if r.ParentalEducation == education {
			out = append(out, r.ExamScore)
		}
	}
	return out
}

func newExportCmd(e *env) *cobra.Command {
	var flags filterFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered rows and summaries to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := flags.state(cmd)
			if err != nil {
				return err
			}
			svc, err := loadService(e)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := svc.Export(f, state); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "export.xlsx", "Output XLSX path")
	return cmd
}

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return container.Serve(cmd.Context(), e.cfg, e.logger)
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultStudentConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset with the same columns as the real one",
		RunE: func(cmd *cobra.Command, args []string) error {
			records := testkit.NewStudentDataGenerator(cfg).Generate()

			w := cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := testkit.WriteCSV(w, records); err != nil {
				return err
			}
			if out != "-" {
				color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "wrote %d students to %s\n", len(records), out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.StudentCount, "rows", cfg.StudentCount, "Number of students")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output CSV path, - for stdout")
	return cmd
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the saved views schema in DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := e.cfg.Database.URL
			if url == "" || url == "memory" {
				return errors.InvalidInput("DATABASE_URL names no database; saved views are kept in memory")
			}
			db, err := store.Open(cmd.Context(), url)
			if err != nil {
				return err
			}
			defer db.Close()

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "schema %s ready (%s)\n", migration.NewRunner().Version(), db.DriverName())
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"habitboard/internal/config"
	"habitboard/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand gets after configuration is loaded
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var dataFile string
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "habitctl",
		Short:         "Student habits dashboard: data tools and server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load()
			if err != nil {
				return err
			}
			if dataFile != "" {
				cfg.Data.File = dataFile
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(level, "console")
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVar(&dataFile, "file", "", "Dataset file inside DATA_DIR (overrides DATA_FILE)")

	rootCmd.AddCommand(
		newFetchCmd(e),
		newValidateCmd(e),
		newSummaryCmd(e),
		newExportCmd(e),
		newServeCmd(e),
		newMigrateCmd(e),
		newGenerateCmd(),
	)
	return rootCmd
}

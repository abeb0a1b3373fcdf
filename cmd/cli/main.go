package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"healthsim/adapters/tabular"
	"healthsim/app"
	"healthsim/internal/config"
)

func main() {
	// Optional .env; missing file is fine
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "healthsim",
		Short: "Exploratory health-data statistics: prevalence simulation, confidence intervals, hypothesis tests",
	}

	rootCmd.AddCommand(
		newReportCmd(),
		newInspectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newReportCmd() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full analysis workflow and print all reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			service := app.NewReportService(cfg, logger, cmd.OutOrStdout())
			return service.Run(context.Background())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config (env vars override)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var headRows int

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Preview a dataset: shape, head, summary statistics, missing values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			table, err := tabular.NewReader(args[0], logger).Read()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table.Info(out)
			fmt.Fprintln(out)
			table.Head(out, headRows)
			fmt.Fprintln(out)
			table.Describe(out)
			fmt.Fprintln(out, "\nMissing values")
			table.WriteMissingReport(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&headRows, "head", 5, "number of preview rows")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

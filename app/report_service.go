// Package app wires the data loader and the statistical components into the
// end-to-end reporting workflow.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"healthsim/adapters/tabular"
	"healthsim/analysis"
	"healthsim/domain/core"
	"healthsim/domain/dataset"
	"healthsim/internal/config"
	"healthsim/internal/errors"
)

// ReportService runs the full workflow: load the dataset, compute prevalence
// and simulation, interval estimates, and the two-sample test, writing each
// report to out in sequence. Component errors are never suppressed; the
// first failure aborts the run.
type ReportService struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewReportService creates a report service
func NewReportService(cfg *config.Config, logger *zap.Logger, out io.Writer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{cfg: cfg, logger: logger, out: out}
}

// Run executes the workflow once. Each invocation gets its own run ID for
// log correlation.
func (s *ReportService) Run(ctx context.Context) error {
	runID := core.NewRunID()
	logger := s.logger.With(zap.String("run_id", runID.String()))
	start := time.Now()

	table, err := s.loadTable(logger)
	if err != nil {
		return err
	}

	stages := []struct {
		name string
		fn   func(*dataset.Table) error
	}{
		{"dataset_overview", s.writeOverview},
		{"prevalence_simulation", s.runSimulation},
		{"interval_estimation", s.runIntervals},
		{"hypothesis_test", s.runHypothesisTest},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		stageStart := time.Now()
		if err := stage.fn(table); err != nil {
			logger.Error("stage failed", zap.String("stage", stage.name), zap.Error(err))
			return errors.Wrapf(err, "stage %s failed", stage.name)
		}
		logger.Info("stage complete",
			zap.String("stage", stage.name),
			zap.Duration("elapsed", time.Since(stageStart)))
	}

	logger.Info("run complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *ReportService) loadTable(logger *zap.Logger) (*dataset.Table, error) {
	reader := tabular.NewReader(s.cfg.Data.File, logger)
	table, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dataset")
	}
	return table, nil
}

func (s *ReportService) writeOverview(table *dataset.Table) error {
	s.section("Dataset")
	table.Info(s.out)
	fmt.Fprintln(s.out)
	table.Head(s.out, 5)
	fmt.Fprintln(s.out)
	table.Describe(s.out)
	fmt.Fprintln(s.out, "\nMissing values")
	table.WriteMissingReport(s.out)
	return nil
}

func (s *ReportService) runSimulation(table *dataset.Table) error {
	s.section("Prevalence simulation")
	sim := analysis.NewSimulator(table, s.cfg.Data.DiseaseColumn, s.cfg.Data.GroupColumn, s.cfg.Simulation.Seed)
	if err := sim.ComputeTrueProportions(); err != nil {
		return err
	}
	n := s.cfg.Simulation.SampleSize
	if n == 0 {
		n = 1000
	}
	if err := sim.Simulate(n); err != nil {
		return err
	}
	return sim.WriteReport(s.out)
}

func (s *ReportService) runIntervals(table *dataset.Table) error {
	s.section("Confidence intervals: " + s.cfg.Interval.Column)
	values, err := table.NumericColumn(s.cfg.Interval.Column)
	if err != nil {
		return err
	}
	est, err := analysis.NewEstimator(values, s.cfg.Interval.Seed)
	if err != nil {
		return err
	}
	est.Unit = s.cfg.Interval.Unit
	return est.WriteReportWith(s.out, s.cfg.Interval.Replicates, s.cfg.Interval.Confidence)
}

func (s *ReportService) runHypothesisTest(table *dataset.Table) error {
	hc := s.cfg.Hypothesis
	groups, labels, err := table.GroupedNumeric(hc.GroupColumn, hc.ValueColumn)
	if err != nil {
		return err
	}

	label1, label2 := hc.Group1, hc.Group2
	if label1 == "" || label2 == "" {
		if len(labels) < 2 {
			return errors.InvalidInput(fmt.Sprintf(
				"hypothesis test needs two groups in column %s, found %d", hc.GroupColumn, len(labels)))
		}
		label1, label2 = labels[0], labels[1]
	}
	group1, ok := groups[label1]
	if !ok {
		return core.NewColumnNotFoundError(label1)
	}
	group2, ok := groups[label2]
	if !ok {
		return core.NewColumnNotFoundError(label2)
	}

	s.section(fmt.Sprintf("Hypothesis test: %s by %s (%s vs %s)", hc.ValueColumn, hc.GroupColumn, label1, label2))
	tester := analysis.NewTester(group1, group2)
	tester.Unit = hc.Unit
	if _, err := tester.ComputeTest(); err != nil {
		return err
	}
	if _, err := tester.ComputeEffectSize(); err != nil {
		return err
	}
	if _, err := tester.ComputePower(hc.Alpha); err != nil {
		return err
	}
	return tester.WriteReport(s.out)
}

func (s *ReportService) section(title string) {
	fmt.Fprintf(s.out, "\n## %s\n\n", title)
}

// Package analysis provides the statistical components of the health-data
// workflow: prevalence simulation, confidence intervals, and two-sample
// hypothesis testing. Each component owns its data, computes on explicit
// request, and writes a formatted report. Compute steps must run in order;
// skipping one returns core.ErrNotComputed rather than a partial result.
package analysis

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/montanaflynn/stats"

	"healthsim/domain/core"
	"healthsim/domain/dataset"
)

// GroupProportion pairs a group label with its observed prevalence
type GroupProportion struct {
	Label      string  `json:"label"`
	Proportion float64 `json:"proportion"`
}

// Simulator computes the observed prevalence of a binary indicator column,
// overall and per group, and draws synthetic Bernoulli samples matching
// those proportions. One seeded stream drives all draws, so the same seed
// and sample size reproduce identical sequences.
type Simulator struct {
	table      *dataset.Table
	diseaseCol string
	groupCol   string // empty disables the per-group breakdown
	rng        *rand.Rand

	trueProportion float64
	groupProps     []GroupProportion
	computed       bool

	simTotal  []float64
	simGroups map[string][]float64
	simulated bool
}

// NewSimulator creates a simulator over the given table. groupCol may be
// empty, in which case all group-conditioned output is skipped.
func NewSimulator(table *dataset.Table, diseaseCol, groupCol string, seed int64) *Simulator {
	return &Simulator{
		table:      table,
		diseaseCol: diseaseCol,
		groupCol:   groupCol,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// ComputeTrueProportions computes the overall mean of the indicator column
// and, if a group column is configured, the per-group means in sorted label
// order. A proportion outside [0,1] means the indicator column was not 0/1
// and is rejected outright.
func (s *Simulator) ComputeTrueProportions() error {
	values, err := s.table.NumericColumn(s.diseaseCol)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return core.NewInsufficientDataError("disease column "+s.diseaseCol, 0)
	}

	p, err := stats.Mean(values)
	if err != nil {
		return err
	}
	if p < 0 || p > 1 {
		return core.NewInvalidProportionError("overall proportion", p)
	}
	s.trueProportion = p

	s.groupProps = nil
	if s.groupCol != "" {
		groups, labels, err := s.table.GroupedNumeric(s.groupCol, s.diseaseCol)
		if err != nil {
			return err
		}
		for _, label := range labels {
			gp, err := stats.Mean(groups[label])
			if err != nil {
				return err
			}
			if gp < 0 || gp > 1 {
				return core.NewInvalidProportionError("proportion for group "+label, gp)
			}
			s.groupProps = append(s.groupProps, GroupProportion{Label: label, Proportion: gp})
		}
	}

	s.computed = true
	s.simulated = false
	return nil
}

// TrueProportion returns the overall observed prevalence
func (s *Simulator) TrueProportion() (float64, error) {
	if !s.computed {
		return 0, core.NewNotComputedError("ComputeTrueProportions")
	}
	return s.trueProportion, nil
}

// GroupProportions returns the per-group prevalences in sorted label order.
// The slice is empty when no group column is configured.
func (s *Simulator) GroupProportions() ([]GroupProportion, error) {
	if !s.computed {
		return nil, core.NewNotComputedError("ComputeTrueProportions")
	}
	return s.groupProps, nil
}

// Simulate draws n Bernoulli samples for the overall proportion and for each
// group proportion. Draws are consumed from the stream in a fixed order
// (overall first, then groups by sorted label), so results are reproducible
// for a given seed and n.
func (s *Simulator) Simulate(n int) error {
	if !s.computed {
		return core.NewNotComputedError("ComputeTrueProportions")
	}
	if n <= 0 {
		return fmt.Errorf("sample size must be positive, got %d", n)
	}

	s.simTotal = bernoulli(s.rng, s.trueProportion, n)

	s.simGroups = nil
	if len(s.groupProps) > 0 {
		s.simGroups = make(map[string][]float64, len(s.groupProps))
		for _, gp := range s.groupProps {
			s.simGroups[gp.Label] = bernoulli(s.rng, gp.Proportion, n)
		}
	}

	s.simulated = true
	return nil
}

// SimulatedTotal returns the overall simulated sample
func (s *Simulator) SimulatedTotal() ([]float64, error) {
	if !s.simulated {
		return nil, core.NewNotComputedError("Simulate")
	}
	return s.simTotal, nil
}

// SimulatedGroup returns the simulated sample for one group label
func (s *Simulator) SimulatedGroup(label string) ([]float64, error) {
	if !s.simulated {
		return nil, core.NewNotComputedError("Simulate")
	}
	draws, ok := s.simGroups[label]
	if !ok {
		return nil, core.NewColumnNotFoundError(label)
	}
	return draws, nil
}

// WriteReport writes true proportions, simulated proportions, and absolute
// differences as fixed-precision percentages. Groups appear in the same
// sorted order as GroupProportions.
func (s *Simulator) WriteReport(w io.Writer) error {
	if !s.simulated {
		return core.NewNotComputedError("Simulate")
	}

	fmt.Fprintln(w, "True proportions")
	fmt.Fprintln(w, "=========================================")
	fmt.Fprintf(w, "Share with disease:                 %.1f%%\n", s.trueProportion*100)
	for _, gp := range s.groupProps {
		fmt.Fprintf(w, "Share %s with disease:    %.1f%%\n", padLabel(gp.Label), gp.Proportion*100)
	}

	fmt.Fprintln(w, "\nSimulated proportions")
	fmt.Fprintln(w, "=========================================")
	simMean, _ := stats.Mean(s.simTotal)
	fmt.Fprintf(w, "Simulated share with disease:       %.1f%%\n", simMean*100)
	for _, gp := range s.groupProps {
		gm, _ := stats.Mean(s.simGroups[gp.Label])
		fmt.Fprintf(w, "Simulated share %s:       %.1f%%\n", padLabel(gp.Label), gm*100)
	}

	fmt.Fprintln(w, "\nComparison")
	fmt.Fprintln(w, "=========================================")
	fmt.Fprintf(w, "Total difference:                   %.2f%%\n", abs(simMean-s.trueProportion)*100)
	for _, gp := range s.groupProps {
		gm, _ := stats.Mean(s.simGroups[gp.Label])
		fmt.Fprintf(w, "Difference %s:            %.1f%%\n", padLabel(gp.Label), abs(gm-gp.Proportion)*100)
	}

	return nil
}

// bernoulli draws n independent Bernoulli(p) samples as 0/1 floats
func bernoulli(rng *rand.Rand, p float64, n int) []float64 {
	draws := make([]float64, n)
	for i := range draws {
		if rng.Float64() < p {
			draws[i] = 1
		}
	}
	return draws
}

func padLabel(label string) string {
	return fmt.Sprintf("%-10s", label)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

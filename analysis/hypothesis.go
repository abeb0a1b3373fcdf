package analysis

import (
	"fmt"
	"io"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"healthsim/domain/core"
)

// TestResult holds the output of a Welch's t-test
type TestResult struct {
	Mean1     float64 `json:"mean1"`
	Mean2     float64 `json:"mean2"`
	TStat     float64 `json:"t_statistic"`
	DF        float64 `json:"degrees_of_freedom"`
	PTwoSided float64 `json:"p_two_sided"`
	POneSided float64 `json:"p_one_sided"`
}

// PowerResult holds statistical power for both alternatives
type PowerResult struct {
	Alpha    float64 `json:"alpha"`
	TwoSided float64 `json:"power_two_sided"`
	OneSided float64 `json:"power_one_sided"`
}

// Tester runs a two-sample mean-difference pipeline over two independent
// numeric samples: Welch's t-test, then Cohen's d, then statistical power.
// The steps build on each other and must run in that order; each step
// caches its result until the next call overwrites it.
type Tester struct {
	// Unit is an optional suffix for the mean lines of the report
	Unit string

	group1 []float64
	group2 []float64

	test     TestResult
	testDone bool

	effectSize float64
	effectDone bool

	power     PowerResult
	powerDone bool
}

// NewTester creates a tester for two independent samples
func NewTester(group1, group2 []float64) *Tester {
	return &Tester{group1: group1, group2: group2}
}

// ComputeTest computes group means and runs Welch's unequal-variance t-test,
// deriving the one-sided p-value from the two-sided one: p/2 when group 1's
// mean strictly exceeds group 2's, 1-p/2 otherwise. A tie takes the second
// branch, so identical samples report exactly 0.5.
func (t *Tester) ComputeTest() (TestResult, error) {
	n1, n2 := len(t.group1), len(t.group2)
	if n1 < 2 {
		return TestResult{}, core.NewInsufficientDataError("group 1", n1)
	}
	if n2 < 2 {
		return TestResult{}, core.NewInsufficientDataError("group 2", n2)
	}

	mean1, err := stats.Mean(t.group1)
	if err != nil {
		return TestResult{}, err
	}
	mean2, err := stats.Mean(t.group2)
	if err != nil {
		return TestResult{}, err
	}
	var1, err := stats.SampleVariance(t.group1)
	if err != nil {
		return TestResult{}, err
	}
	var2, err := stats.SampleVariance(t.group2)
	if err != nil {
		return TestResult{}, err
	}

	fn1, fn2 := float64(n1), float64(n2)
	seSq := var1/fn1 + var2/fn2
	if seSq == 0 {
		return TestResult{}, fmt.Errorf("%w: both groups are constant", core.ErrZeroVariance)
	}

	tStat := (mean1 - mean2) / math.Sqrt(seSq)

	// Welch-Satterthwaite degrees of freedom
	df := seSq * seSq / (math.Pow(var1/fn1, 2)/(fn1-1) + math.Pow(var2/fn2, 2)/(fn2-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pTwo := 2 * dist.Survival(math.Abs(tStat))
	if pTwo > 1 {
		pTwo = 1
	}

	var pOne float64
	if mean1 > mean2 {
		pOne = pTwo / 2
	} else {
		pOne = 1 - pTwo/2
	}

	t.test = TestResult{
		Mean1:     mean1,
		Mean2:     mean2,
		TStat:     tStat,
		DF:        df,
		PTwoSided: pTwo,
		POneSided: pOne,
	}
	t.testDone = true
	t.effectDone = false
	t.powerDone = false
	return t.test, nil
}

// ComputeEffectSize computes Cohen's d with the unweighted pooling
// sqrt((s1^2+s2^2)/2), not the sample-size-weighted pooled variance.
// Requires ComputeTest to have run. Two constant samples make the pooled
// standard deviation zero and the ratio undefined; that surfaces as
// core.ErrZeroVariance rather than a silent zero.
func (t *Tester) ComputeEffectSize() (float64, error) {
	if !t.testDone {
		return 0, core.NewNotComputedError("ComputeTest")
	}

	std1, err := stats.StandardDeviationSample(t.group1)
	if err != nil {
		return 0, err
	}
	std2, err := stats.StandardDeviationSample(t.group2)
	if err != nil {
		return 0, err
	}

	pooled := math.Sqrt((std1*std1 + std2*std2) / 2)
	if pooled == 0 {
		return 0, fmt.Errorf("%w: pooled standard deviation is zero", core.ErrZeroVariance)
	}

	t.effectSize = (t.test.Mean1 - t.test.Mean2) / pooled
	t.effectDone = true
	t.powerDone = false
	return t.effectSize, nil
}

// EffectSize returns the cached Cohen's d
func (t *Tester) EffectSize() (float64, error) {
	if !t.effectDone {
		return 0, core.NewNotComputedError("ComputeEffectSize")
	}
	return t.effectSize, nil
}

// ComputePower computes statistical power for the two-sided and one-sided
// (greater) alternatives at the given significance threshold, using the
// effect size, group 1's sample size, and the group2/group1 size ratio.
// A non-positive alpha falls back to DefaultPowerAlpha. Requires
// ComputeEffectSize to have run.
func (t *Tester) ComputePower(alpha float64) (PowerResult, error) {
	if !t.effectDone {
		return PowerResult{}, core.NewNotComputedError("ComputeEffectSize")
	}
	if alpha <= 0 {
		alpha = DefaultPowerAlpha
	}
	if alpha >= 1 {
		return PowerResult{}, fmt.Errorf("alpha must be below 1, got %v", alpha)
	}

	n1, n2 := len(t.group1), len(t.group2)
	t.power = PowerResult{
		Alpha:    alpha,
		TwoSided: ttestPower(t.effectSize, n1, n2, alpha, true),
		OneSided: ttestPower(t.effectSize, n1, n2, alpha, false),
	}
	t.powerDone = true
	return t.power, nil
}

// WriteReport writes means, t-statistic, both p-values, Cohen's d, and both
// power values. All three compute steps must have run.
func (t *Tester) WriteReport(w io.Writer) error {
	switch {
	case !t.testDone:
		return core.NewNotComputedError("ComputeTest")
	case !t.effectDone:
		return core.NewNotComputedError("ComputeEffectSize")
	case !t.powerDone:
		return core.NewNotComputedError("ComputePower")
	}

	unit := t.Unit
	if unit != "" {
		unit = " " + unit
	}

	fmt.Fprintln(w, "=====================================")
	fmt.Fprintf(w, "Group 1 mean:         %.2f%s\n", t.test.Mean1, unit)
	fmt.Fprintf(w, "Group 2 mean:         %.2f%s\n", t.test.Mean2, unit)
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintf(w, "t-statistic:          %.3f\n", t.test.TStat)
	fmt.Fprintf(w, "p-value (two-sided):  %.3f\n", t.test.PTwoSided)
	fmt.Fprintf(w, "p-value (one-sided):  %.3f\n", t.test.POneSided)
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintf(w, "Cohen's d:            %.3f\n", t.effectSize)
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintf(w, "Power (two-sided):    %.3f\n", t.power.TwoSided)
	fmt.Fprintf(w, "Power (one-sided):    %.3f\n", t.power.OneSided)
	fmt.Fprintln(w, "=====================================")
	return nil
}

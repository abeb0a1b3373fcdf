package analysis

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"healthsim/domain/core"
)

const (
	// DefaultZ is the two-sided 95% critical value of the standard normal
	DefaultZ = 1.96

	// DefaultBootstrapReplicates is the resample count used when
	// BootstrapCI is given a non-positive count
	DefaultBootstrapReplicates = 10000

	// DefaultConfidenceLevel is the percentage confidence level used when
	// BootstrapCI is given a non-positive level
	DefaultConfidenceLevel = 95.0
)

// Estimator computes confidence intervals for a sample mean using the
// normal approximation and bootstrap resampling. Missing values are removed
// and the point estimate, sample standard deviation (n-1), and standard
// error are fixed at construction; the sample never changes afterwards.
//
// One RNG stream is seeded at construction and advances across BootstrapCI
// calls. Repeated calls on one estimator draw different resamples;
// rebuilding the estimator with the same seed replays the whole sequence.
type Estimator struct {
	// Unit is an optional suffix for report lines, e.g. "mmHg"
	Unit string

	data   []float64
	n      int
	mean   float64
	stdDev float64
	stdErr float64
	rng    *rand.Rand
}

// NewEstimator builds an estimator over the given sample, dropping NaN
// values first. At least two finite values are required, since the sample
// standard deviation uses the n-1 denominator.
func NewEstimator(data []float64, seed int64) (*Estimator, error) {
	clean := make([]float64, 0, len(data))
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		clean = append(clean, v)
	}
	if len(clean) < 2 {
		return nil, core.NewInsufficientDataError("interval sample", len(clean))
	}

	mean, err := stats.Mean(clean)
	if err != nil {
		return nil, err
	}
	stdDev, err := stats.StandardDeviationSample(clean)
	if err != nil {
		return nil, err
	}

	n := len(clean)
	return &Estimator{
		data:   clean,
		n:      n,
		mean:   mean,
		stdDev: stdDev,
		stdErr: stdDev / math.Sqrt(float64(n)),
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// N returns the sample size after missing-value removal
func (e *Estimator) N() int { return e.n }

// Mean returns the point estimate
func (e *Estimator) Mean() float64 { return e.mean }

// StdDev returns the sample standard deviation (n-1 denominator)
func (e *Estimator) StdDev() float64 { return e.stdDev }

// StdErr returns the standard error of the mean
func (e *Estimator) StdErr() float64 { return e.stdErr }

// NormalCI returns the normal-approximation interval at the default 95%
// critical value. The interval is symmetric around the mean by construction.
func (e *Estimator) NormalCI() (lower, upper float64) {
	return e.NormalCIZ(DefaultZ)
}

// NormalCIZ returns (mean - z*se, mean + z*se) for an arbitrary critical
// value. No distributional check is performed; small samples get the same
// normal approximation as large ones.
func (e *Estimator) NormalCIZ(z float64) (lower, upper float64) {
	return e.mean - z*e.stdErr, e.mean + z*e.stdErr
}

// BootstrapCI draws nBoot resamples of size n with replacement, takes the
// mean of each, and returns the (100-ci)/2 and 100-(100-ci)/2 percentiles
// of the resulting distribution. Non-positive arguments fall back to
// DefaultBootstrapReplicates and DefaultConfidenceLevel.
func (e *Estimator) BootstrapCI(nBoot int, ci float64) (lower, upper float64, err error) {
	if nBoot <= 0 {
		nBoot = DefaultBootstrapReplicates
	}
	if ci <= 0 {
		ci = DefaultConfidenceLevel
	}
	if ci >= 100 {
		return 0, 0, fmt.Errorf("confidence level must be below 100, got %v", ci)
	}

	means := make([]float64, nBoot)
	resample := make([]float64, e.n)
	for b := 0; b < nBoot; b++ {
		for i := range resample {
			resample[i] = e.data[e.rng.Intn(e.n)]
		}
		m, err := stats.Mean(resample)
		if err != nil {
			return 0, 0, err
		}
		means[b] = m
	}

	alpha := (100 - ci) / 2
	lower, err = stats.Percentile(means, alpha)
	if err != nil {
		return 0, 0, err
	}
	upper, err = stats.Percentile(means, 100-alpha)
	if err != nil {
		return 0, 0, err
	}
	return lower, upper, nil
}

// WriteReport writes the point estimate, standard error, and both interval
// types at one decimal place in the sample's unit, using the default
// replicate count and confidence level.
func (e *Estimator) WriteReport(w io.Writer) error {
	return e.WriteReportWith(w, DefaultBootstrapReplicates, DefaultConfidenceLevel)
}

// WriteReportWith is WriteReport with explicit bootstrap knobs
func (e *Estimator) WriteReportWith(w io.Writer, nBoot int, ci float64) error {
	if ci <= 0 {
		ci = DefaultConfidenceLevel
	}
	z := DefaultZ
	if ci != DefaultConfidenceLevel {
		z = distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - (100-ci)/200)
	}
	normLo, normHi := e.NormalCIZ(z)
	bootLo, bootHi, err := e.BootstrapCI(nBoot, ci)
	if err != nil {
		return err
	}

	unit := e.Unit
	if unit != "" {
		unit = " " + unit
	}

	fmt.Fprintf(w, "Point estimate (mean):        %.1f%s\n", e.mean, unit)
	fmt.Fprintf(w, "Standard error:               %.3f%s\n", e.stdErr, unit)
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintf(w, "%.0f%% CI (normal approximation): [%.1f, %.1f]%s\n", ci, normLo, normHi, unit)
	fmt.Fprintf(w, "%.0f%% CI (bootstrap):            [%.1f, %.1f]%s\n", ci, bootLo, bootHi, unit)
	return nil
}

package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultPowerAlpha is the significance threshold used when ComputePower is
// given a non-positive alpha. It is deliberately permissive; pass a
// conventional 0.05 explicitly for a standard analysis.
const DefaultPowerAlpha = 0.5

// ttestPower computes the power of an independent two-sample t-test for a
// given Cohen's d, group sizes, and significance threshold. The noncentral
// t distribution is approximated by a central Student's t shifted by the
// noncentrality parameter, which is accurate to a few thousandths for the
// sample sizes this workflow sees.
func ttestPower(effectSize float64, n1, n2 int, alpha float64, twoSided bool) float64 {
	fn1, fn2 := float64(n1), float64(n2)
	nc := effectSize / math.Sqrt(1/fn1+1/fn2)
	df := fn1 + fn2 - 2

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	if twoSided {
		crit := dist.Quantile(1 - alpha/2)
		return dist.Survival(crit-nc) + dist.CDF(-crit-nc)
	}
	crit := dist.Quantile(1 - alpha)
	return dist.Survival(crit - nc)
}

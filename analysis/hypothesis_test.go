package analysis

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthsim/domain/core"
)

func TestComputeTest_IdenticalSamples(t *testing.T) {
	sample := []float64{1, 2, 3, 4, 5}
	tester := NewTester(sample, sample)

	result, err := tester.ComputeTest()
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result.TStat, 1e-12, "t-statistic for identical samples")
	assert.InDelta(t, 1.0, result.PTwoSided, 1e-9, "two-sided p-value for identical samples")
	// Tie takes the 1 - p/2 branch
	assert.Equal(t, 1-result.PTwoSided/2, result.POneSided)
	assert.InDelta(t, 0.5, result.POneSided, 1e-9)
}

func TestComputeTest_DirectionalPValues(t *testing.T) {
	high := []float64{140, 145, 150, 138, 142, 148}
	low := []float64{120, 118, 125, 122, 119, 121}

	// group1 above group2: one-sided is half the two-sided
	tester := NewTester(high, low)
	result, err := tester.ComputeTest()
	require.NoError(t, err)
	assert.Greater(t, result.TStat, 0.0)
	assert.Equal(t, result.PTwoSided/2, result.POneSided)
	assert.Less(t, result.PTwoSided, 0.01, "clearly separated groups should be significant")

	// Reversed order flips the branch
	reversed := NewTester(low, high)
	revResult, err := reversed.ComputeTest()
	require.NoError(t, err)
	assert.Less(t, revResult.TStat, 0.0)
	assert.Equal(t, 1-revResult.PTwoSided/2, revResult.POneSided)
	assert.Greater(t, revResult.POneSided, 0.5)
}

func TestComputeTest_WelchHandlesUnequalVariances(t *testing.T) {
	// Large variance vs tight cluster; Welch df should fall well below n1+n2-2
	spread := []float64{90, 150, 110, 170, 100, 160}
	tight := []float64{129, 130, 131, 130, 129, 131}

	tester := NewTester(spread, tight)
	result, err := tester.ComputeTest()
	require.NoError(t, err)

	assert.Less(t, result.DF, 10.0, "Welch-Satterthwaite df with one noisy group")
	assert.Greater(t, result.DF, 4.0)
	assert.GreaterOrEqual(t, result.PTwoSided, 0.0)
	assert.LessOrEqual(t, result.PTwoSided, 1.0)
}

func TestComputeTest_InsufficientData(t *testing.T) {
	_, err := NewTester([]float64{1}, []float64{1, 2, 3}).ComputeTest()
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = NewTester([]float64{1, 2, 3}, []float64{}).ComputeTest()
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestComputeTest_BothGroupsConstant(t *testing.T) {
	_, err := NewTester([]float64{10, 10, 10}, []float64{12, 12, 12}).ComputeTest()
	assert.ErrorIs(t, err, core.ErrZeroVariance)
}

func TestComputeEffectSize_RequiresTestFirst(t *testing.T) {
	tester := NewTester([]float64{1, 2, 3}, []float64{4, 5, 6})
	_, err := tester.ComputeEffectSize()
	assert.ErrorIs(t, err, core.ErrNotComputed)
}

func TestComputeEffectSize_UnweightedPooling(t *testing.T) {
	group1 := []float64{10, 12, 14, 16}
	group2 := []float64{8, 9, 10, 11}

	tester := NewTester(group1, group2)
	_, err := tester.ComputeTest()
	require.NoError(t, err)

	d, err := tester.ComputeEffectSize()
	require.NoError(t, err)

	// mean1=13, s1=sqrt(20/3); mean2=9.5, s2=sqrt(5/3)
	// pooled = sqrt((20/3 + 5/3)/2) = sqrt(25/6)
	want := (13.0 - 9.5) / math.Sqrt(25.0/6.0)
	assert.InDelta(t, want, d, 1e-12)
}

func TestComputeEffectSize_ZeroVarianceIsExplicitError(t *testing.T) {
	// Two identical constant groups make every spread-based quantity 0/0;
	// the pipeline stops at the first step that divides by spread.
	tester := NewTester([]float64{10, 10, 10}, []float64{10, 10, 10})
	_, err := tester.ComputeTest()
	assert.ErrorIs(t, err, core.ErrZeroVariance, "0/0 must surface as an error, not silent zero")

	_, err = tester.ComputeEffectSize()
	assert.ErrorIs(t, err, core.ErrNotComputed, "effect size stays unavailable after the failed test")
}

func TestComputePower_RequiresEffectSizeFirst(t *testing.T) {
	tester := NewTester([]float64{1, 2, 3}, []float64{4, 5, 6})
	_, err := tester.ComputeTest()
	require.NoError(t, err)

	_, err = tester.ComputePower(0.05)
	assert.ErrorIs(t, err, core.ErrNotComputed)
}

func TestComputePower_Properties(t *testing.T) {
	group1 := []float64{140, 145, 150, 138, 142, 148, 151, 139}
	group2 := []float64{120, 118, 125, 122, 119, 121, 124, 117}

	tester := NewTester(group1, group2)
	_, err := tester.ComputeTest()
	require.NoError(t, err)
	_, err = tester.ComputeEffectSize()
	require.NoError(t, err)

	power, err := tester.ComputePower(0.05)
	require.NoError(t, err)

	assert.Equal(t, 0.05, power.Alpha)
	assert.Greater(t, power.TwoSided, 0.0)
	assert.LessOrEqual(t, power.TwoSided, 1.0)
	// One-sided (greater) test is at least as powerful when the effect is positive
	assert.GreaterOrEqual(t, power.OneSided, power.TwoSided)

	// Default alpha kicks in for non-positive input
	defPower, err := tester.ComputePower(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPowerAlpha, defPower.Alpha)

	_, err = tester.ComputePower(1.5)
	assert.Error(t, err)
}

func TestTTestPower_ZeroEffectEqualsAlpha(t *testing.T) {
	// With no effect the rejection probability is exactly the significance level
	for _, alpha := range []float64{0.01, 0.05, 0.5} {
		assert.InDelta(t, alpha, ttestPower(0, 20, 20, alpha, true), 1e-9, "two-sided at alpha=%v", alpha)
		assert.InDelta(t, alpha, ttestPower(0, 20, 20, alpha, false), 1e-9, "one-sided at alpha=%v", alpha)
	}
}

func TestTTestPower_MonotoneInEffectAndN(t *testing.T) {
	pSmall := ttestPower(0.2, 20, 20, 0.05, true)
	pMedium := ttestPower(0.5, 20, 20, 0.05, true)
	pLarge := ttestPower(0.8, 20, 20, 0.05, true)
	assert.Less(t, pSmall, pMedium)
	assert.Less(t, pMedium, pLarge)

	pBigger := ttestPower(0.5, 100, 100, 0.05, true)
	assert.Greater(t, pBigger, pMedium, "more data means more power")

	// Sanity anchor: d=0.8, n=26 per group, alpha=0.05 is the textbook ~0.8 power point
	p := ttestPower(0.8, 26, 26, 0.05, true)
	assert.InDelta(t, 0.8, p, 0.03)
}

func TestTesterWriteReport(t *testing.T) {
	tester := NewTester(
		[]float64{140, 145, 150, 138, 142, 148},
		[]float64{120, 118, 125, 122, 119, 121})
	tester.Unit = "mmHg"

	var buf bytes.Buffer
	err := tester.WriteReport(&buf)
	assert.ErrorIs(t, err, core.ErrNotComputed, "report before any compute step")

	_, err = tester.ComputeTest()
	require.NoError(t, err)
	err = tester.WriteReport(&buf)
	assert.ErrorIs(t, err, core.ErrNotComputed, "report before effect size")

	_, err = tester.ComputeEffectSize()
	require.NoError(t, err)
	_, err = tester.ComputePower(0.05)
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, tester.WriteReport(&buf))
	report := buf.String()
	for _, want := range []string{"Group 1 mean", "t-statistic", "p-value (two-sided)", "p-value (one-sided)", "Cohen's d", "Power (two-sided)", "Power (one-sided)", "mmHg"} {
		assert.Contains(t, report, want)
	}
}

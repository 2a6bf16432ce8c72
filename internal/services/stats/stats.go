// Package stats provides the descriptive statistics, time-value-of-money and
// risk functions used by the forecasting services. Every function is pure.
//
// Standard deviation is the population form (divide by n) throughout.
package stats

import (
	"math"
	"slices"

	"forecast/internal/models"
)

// Mean returns the arithmetic mean. It panics on empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		panic("stats: Mean of empty slice")
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation. It panics on empty input.
func StdDev(values []float64) float64 {
	m := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Min returns the smallest value. It panics on empty input.
func Min(values []float64) float64 {
	if len(values) == 0 {
		panic("stats: Min of empty slice")
	}
	return slices.Min(values)
}

// Max returns the largest value. It panics on empty input.
func Max(values []float64) float64 {
	if len(values) == 0 {
		panic("stats: Max of empty slice")
	}
	return slices.Max(values)
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between closest ranks (Hyndman-Fan type 7). The input is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		panic("stats: Percentile of empty slice")
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return PercentileSorted(sorted, p)
}

// PercentileSorted is Percentile for input already in ascending order
func PercentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		panic("stats: Percentile of empty slice")
	}
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}
	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	lower, upper := sorted[lo], sorted[lo+1]
	if lower == upper {
		return lower
	}
	return min(lower+(h-float64(lo))*(upper-lower), upper)
}

// Summarize computes the distribution summary of values. When every value is
// identical all statistics equal that value exactly.
func Summarize(values []float64) models.Summary {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return SummarizeSorted(sorted)
}

// SummarizeSorted is Summarize for input already in ascending order
func SummarizeSorted(sorted []float64) models.Summary {
	if len(sorted) == 0 {
		panic("stats: Summarize of empty slice")
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return models.Summary{
			Mean: lo, Min: lo, Max: lo,
			P10: lo, P25: lo, Median: lo, P75: lo, P90: lo,
		}
	}
	return models.Summary{
		Mean:   Mean(sorted),
		StdDev: StdDev(sorted),
		Min:    lo,
		Max:    hi,
		P10:    PercentileSorted(sorted, 10),
		P25:    PercentileSorted(sorted, 25),
		Median: PercentileSorted(sorted, 50),
		P75:    PercentileSorted(sorted, 75),
		P90:    PercentileSorted(sorted, 90),
	}
}

// SummarizePeriod computes the cross-iteration statistics for one month.
// sorted must be in ascending order.
func SummarizePeriod(period int, sorted []float64) models.PeriodSummary {
	s := SummarizeSorted(sorted)
	return models.PeriodSummary{
		Period: period,
		Mean:   s.Mean,
		P10:    s.P10,
		P25:    s.P25,
		Median: s.Median,
		P75:    s.P75,
		P90:    s.P90,
	}
}

package simulation

import (
	"fmt"
	"sort"
	"strconv"

	"forecast/internal/models"
)

// bucketBoundaries picks histogram edges for the observed range, with finer
// detail at the low end where most household balances fall.
func bucketBoundaries(maxVal float64) []float64 {
	switch {
	case maxVal <= 0:
		return []float64{0}
	case maxVal < 10000:
		return []float64{0, 1000, 2500, 5000, 7500, 10000}
	case maxVal < 100000:
		return []float64{0, 10000, 25000, 50000, 75000, 100000}
	case maxVal < 1000000:
		return []float64{0, 100000, 250000, 500000, 750000, 1000000}
	case maxVal < 3000000:
		return []float64{0, 250000, 500000, 1000000, 1500000, 2000000, 2500000, 3000000}
	}
	edges := []float64{0, 250000, 500000, 1000000, 2000000, 3000000, 5000000, 10000000}
	for _, extra := range []float64{20000000, 50000000} {
		if maxVal > edges[len(edges)-1] {
			edges = append(edges, extra)
		}
	}
	return edges
}

// DistributionBuckets groups sorted final balances into histogram buckets.
// The first bucket is always present; later ones only when populated.
func DistributionBuckets(sorted []float64) []models.DistributionBucket {
	total := len(sorted)
	if total == 0 {
		return nil
	}
	edges := bucketBoundaries(sorted[total-1])
	buckets := make([]models.DistributionBucket, 0, len(edges))

	for i := 0; i < len(edges)-1; i++ {
		low, high := edges[i], edges[i+1]
		count := sort.SearchFloat64s(sorted, high) - sort.SearchFloat64s(sorted, low)
		if count > 0 || i == 0 {
			buckets = append(buckets, newBucket(low, high, count, total))
		}
	}

	last := edges[len(edges)-1]
	if count := total - sort.SearchFloat64s(sorted, last); count > 0 {
		buckets = append(buckets, newBucket(last, -1, count, total))
	}
	return buckets
}

func newBucket(low, high float64, count, total int) models.DistributionBucket {
	return models.DistributionBucket{
		Label:      bucketLabel(low, high),
		Low:        low,
		High:       high,
		Count:      count,
		Percentage: float64(count) / float64(total) * 100,
	}
}

// bucketLabel formats a bucket range, "$250K-$500K" or "$10.0M+"
func bucketLabel(low, high float64) string {
	if high < 0 {
		return compactDollars(low) + "+"
	}
	return compactDollars(low) + "-" + compactDollars(high)
}

func compactDollars(v float64) string {
	switch {
	case v >= 1000000:
		return fmt.Sprintf("$%.1fM", v/1000000)
	case v >= 1000:
		return "$" + strconv.FormatFloat(v/1000, 'f', -1, 64) + "K"
	}
	return fmt.Sprintf("$%.0f", v)
}

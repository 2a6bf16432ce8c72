package simulation

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"forecast/internal/models"
	"forecast/internal/services/stats"
)

// reduce turns the iteration-major balance matrix into a result. Period
// statistics are computed columnwise across iterations, in parallel blocks
// of periods.
func (e *Engine) reduce(ctx context.Context, j *job, matrix []float64, depletion []int) (*models.SimulationResult, error) {
	n, p := j.cfg.Iterations, j.cfg.Periods

	series := make([]models.PeriodSummary, p)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	block := max(1, p/e.workers)
	for lo := 0; lo < p; lo += block {
		hi := min(lo+block, p)
		g.Go(func() error {
			col := make([]float64, n)
			for t := lo; t < hi; t++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := range col {
					col[i] = matrix[i*p+t]
				}
				slices.Sort(col)
				series[t] = stats.SummarizePeriod(t+1, col)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	finals := make([]float64, n)
	for i := range finals {
		finals[i] = matrix[i*p+p-1]
	}
	sorted := slices.Clone(finals)
	slices.Sort(sorted)

	starts := j.starts
	if starts == nil {
		starts = make([]float64, n)
		for i := range starts {
			starts[i] = j.cfg.InitialBalance
		}
	} else {
		starts = slices.Clone(starts)
	}

	medians := make([]float64, 0, p+1)
	medians = append(medians, stats.PercentileSorted(sortedCopy(starts), 50))
	for _, ps := range series {
		medians = append(medians, ps.Median)
	}

	return &models.SimulationResult{
		Seed:              j.seed,
		Iterations:        n,
		Periods:           p,
		Summary:           stats.SummarizeSorted(sorted),
		TimeSeries:        series,
		Distribution:      DistributionBuckets(sorted),
		MedianMaxDrawdown: stats.MaxDrawdown(medians),
		ComputedAt:        e.now().UTC(),
		StartingBalances:  starts,
		FinalBalances:     finals,
		DepletionMonths:   depletion,
	}, nil
}

func sortedCopy(values []float64) []float64 {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

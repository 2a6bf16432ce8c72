package retirement

import (
	"context"
	"math"

	"forecast/internal/models"
)

// Search range and precision for MinimumReturnForThreshold, as annual rates
const (
	returnSearchFloor     = -0.05
	returnSearchHeadroom  = 0.15
	returnSearchPrecision = 0.001
)

// MinimumReturnForThreshold finds the lowest accumulation expected return at
// which the plan still meets its success threshold. A separate withdrawal
// return moves by the same amount. Every probe reuses the plan's seed, so
// survival only rises with the return.
func (s *Simulator) MinimumReturnForThreshold(ctx context.Context, p models.RetirementParams) (*models.ReturnThreshold, error) {
	pl, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	current := pl.accumulation.ExpectedReturn

	survives := func(r float64) (bool, error) {
		probe := *pl
		shift := r - current
		probe.accumulation.ExpectedReturn = r
		probe.withdrawal.ExpectedReturn = pl.withdrawal.ExpectedReturn + shift
		runs, err := s.runPhases(ctx, &probe)
		if err != nil {
			return false, err
		}
		return successRate(runs.withdrawal.FinalBalances) >= probe.params.SuccessThreshold, nil
	}

	low, high := returnSearchFloor, current+returnSearchHeadroom

	ok, err := survives(low)
	if err != nil {
		return nil, err
	}
	if ok {
		return newReturnThreshold(current, low, false), nil
	}

	ok, err = survives(high)
	if err != nil {
		return nil, err
	}
	if !ok {
		return newReturnThreshold(current, high, false), nil
	}

	for high-low > returnSearchPrecision {
		mid := (low + high) / 2
		ok, err := survives(mid)
		if err != nil {
			return nil, err
		}
		if ok {
			high = mid
		} else {
			low = mid
		}
	}

	return newReturnThreshold(current, math.Round(high*1000)/1000, true), nil
}

func newReturnThreshold(current, threshold float64, bounded bool) *models.ReturnThreshold {
	margin := current - threshold
	level := "safe"
	switch {
	case margin < 0:
		level = "failing"
	case margin < 0.01:
		level = "critical"
	case margin < 0.02:
		level = "marginal"
	}
	return &models.ReturnThreshold{
		CurrentValue: current,
		Threshold:    threshold,
		Margin:       margin,
		SafetyLevel:  level,
		Bounded:      bounded,
	}
}

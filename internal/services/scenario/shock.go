package scenario

import (
	"math"

	"forecast/internal/models"
	"forecast/internal/services/simulation"
)

// ShockReturns builds the return override for a scenario on a market whose
// monthly drift is monthlyDrift. During the decline window the index moves
// by a constant monthly rate that compounds to the peak change. During the
// recovery window it moves by the constant rate that puts it back on the
// pre-shock growth trajectory, (1+monthlyDrift)^(D+R), by the end of the
// window. Booms have no recovery window and their gain is on top of drift.
// Outside the windows the stochastic model applies.
func ShockReturns(s models.Scenario, monthlyDrift float64) simulation.ReturnFunc {
	level := 1 + s.PeakDeclinePercent
	end := s.DeclineMonths + s.RecoveryMonths

	decline := math.Pow(level, 1/float64(s.DeclineMonths)) - 1
	if !s.IsDecline() {
		decline = (1+monthlyDrift)*(1+decline) - 1
	}
	recovery := 0.0
	if s.RecoveryMonths > 0 {
		trajectory := math.Pow(1+monthlyDrift, float64(end))
		recovery = math.Pow(trajectory/level, 1/float64(s.RecoveryMonths)) - 1
	}

	return func(period int) (float64, bool) {
		switch {
		case period < s.DeclineMonths:
			return decline, true
		case period < end:
			return recovery, true
		}
		return 0, false
	}
}

package models

import "time"

// RecommendationMedianAnnuity labels the recommended contribution method
const RecommendationMedianAnnuity = "median-trajectory annuity approximation"

// GoalRequest asks how likely a savings plan is to reach a target
type GoalRequest struct {
	Config       SimulationConfig `json:"config"`
	TargetAmount float64          `json:"target_amount"`
	TargetDate   time.Time        `json:"target_date"`
}

// ConfidenceBand is the P10-P90 range of outcomes
type ConfidenceBand struct {
	P10 float64 `json:"p10"`
	P90 float64 `json:"p90"`
}

// GoalProbabilityResult summarizes the chance of reaching a savings target
type GoalProbabilityResult struct {
	TargetAmount         float64        `json:"target_amount"`
	TargetDate           time.Time      `json:"target_date"`
	MonthsRemaining      int            `json:"months_remaining"`
	ProbabilityOfSuccess float64        `json:"probability_of_success"`
	MedianOutcome        float64        `json:"median_outcome"`
	ExpectedShortfall    float64        `json:"expected_shortfall"`
	ConfidenceBand       ConfidenceBand `json:"confidence_band"`
	// RecommendedMonthlyContribution is a deterministic approximation, not a
	// contribution calibrated to a success probability.
	RecommendedMonthlyContribution float64           `json:"recommended_monthly_contribution"`
	RecommendationMethod           string            `json:"recommendation_method"`
	ImpliedMonthlyReturn           float64           `json:"implied_monthly_return"`
	Simulation                     *SimulationResult `json:"simulation"`
}

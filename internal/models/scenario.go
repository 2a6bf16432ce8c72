package models

// ScenarioKind distinguishes market declines from booms
type ScenarioKind string

const (
	ScenarioShock ScenarioKind = "shock"
	ScenarioBoom  ScenarioKind = "boom"
)

// Scenario is a stylized market event applied from the first month
type Scenario struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	Version            int          `json:"version"`
	PeakDeclinePercent float64      `json:"peak_decline_percent"` // Signed fraction: -0.50 is a 50% fall
	DeclineMonths      int          `json:"decline_months"`
	RecoveryMonths     int          `json:"recovery_months"`
	Kind               ScenarioKind `json:"kind"`
}

// IsDecline reports whether the scenario moves the market down
func (s Scenario) IsDecline() bool {
	return s.PeakDeclinePercent < 0
}

// ScenarioComparisonResult compares a baseline run with its shocked twin
type ScenarioComparisonResult struct {
	Scenario                Scenario          `json:"scenario"`
	Baseline                *SimulationResult `json:"baseline"`
	Shocked                 *SimulationResult `json:"shocked"`
	MedianDifference        float64           `json:"median_difference"`
	MedianDifferencePercent float64           `json:"median_difference_percent"`
	P10Difference           float64           `json:"p10_difference"`
	RecoveryMonths          *int              `json:"recovery_months"`
	RecoveredWithinHorizon  bool              `json:"recovered_within_horizon"`
	MaterialImpact          bool              `json:"material_impact"`
}

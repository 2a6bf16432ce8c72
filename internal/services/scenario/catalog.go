package scenario

import (
	"slices"

	"forecast/internal/apperrors"
	"forecast/internal/models"
)

// canonical is the read-only scenario library. Callers only ever receive
// copies.
var canonical = []models.Scenario{
	{
		ID:                 "severe_recession",
		Name:               "Severe Recession",
		Description:        "Deep, broad-based contraction with a slow multi-year recovery",
		Version:            1,
		PeakDeclinePercent: -0.50,
		DeclineMonths:      12,
		RecoveryMonths:     36,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "great_recession_2008",
		Name:               "Great Recession (2008)",
		Description:        "Credit crisis sell-off from the 2007 peak to the March 2009 trough",
		Version:            1,
		PeakDeclinePercent: -0.55,
		DeclineMonths:      17,
		RecoveryMonths:     48,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "dotcom_crash",
		Name:               "Dot-com Crash (2000-2002)",
		Description:        "Prolonged unwinding of a technology valuation bubble",
		Version:            1,
		PeakDeclinePercent: -0.45,
		DeclineMonths:      30,
		RecoveryMonths:     54,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "covid_crash_2020",
		Name:               "COVID Crash (2020)",
		Description:        "Sudden pandemic sell-off followed by a rapid rebound",
		Version:            1,
		PeakDeclinePercent: -0.34,
		DeclineMonths:      1,
		RecoveryMonths:     5,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "black_monday_1987",
		Name:               "Black Monday (1987)",
		Description:        "Single-day crash with losses recovered over the following two years",
		Version:            1,
		PeakDeclinePercent: -0.22,
		DeclineMonths:      1,
		RecoveryMonths:     20,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "stagflation_1970s",
		Name:               "Stagflation (1970s)",
		Description:        "High inflation and weak growth grinding real returns down",
		Version:            1,
		PeakDeclinePercent: -0.40,
		DeclineMonths:      20,
		RecoveryMonths:     60,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "mild_recession",
		Name:               "Mild Recession",
		Description:        "Shallow cyclical downturn",
		Version:            1,
		PeakDeclinePercent: -0.20,
		DeclineMonths:      6,
		RecoveryMonths:     18,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "market_correction",
		Name:               "Market Correction",
		Description:        "Routine 10% pullback",
		Version:            1,
		PeakDeclinePercent: -0.10,
		DeclineMonths:      1,
		RecoveryMonths:     4,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "flash_crash",
		Name:               "Flash Crash",
		Description:        "Brief liquidity-driven plunge that reverses within a month",
		Version:            1,
		PeakDeclinePercent: -0.07,
		DeclineMonths:      1,
		RecoveryMonths:     1,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "lost_decade",
		Name:               "Lost Decade",
		Description:        "Moderate decline followed by eight years of going nowhere",
		Version:            1,
		PeakDeclinePercent: -0.25,
		DeclineMonths:      24,
		RecoveryMonths:     96,
		Kind:               models.ScenarioShock,
	},
	{
		ID:                 "bull_run",
		Name:               "Bull Run",
		Description:        "Two years of strong, steady gains",
		Version:            1,
		PeakDeclinePercent: 0.40,
		DeclineMonths:      24,
		RecoveryMonths:     0,
		Kind:               models.ScenarioBoom,
	},
	{
		ID:                 "tech_boom",
		Name:               "Tech Boom",
		Description:        "Three-year speculative rally led by technology",
		Version:            1,
		PeakDeclinePercent: 0.60,
		DeclineMonths:      36,
		RecoveryMonths:     0,
		Kind:               models.ScenarioBoom,
	},
}

// Catalog returns a copy of every canonical scenario
func Catalog() []models.Scenario {
	return slices.Clone(canonical)
}

// Lookup returns the canonical scenario with the given ID
func Lookup(id string) (models.Scenario, error) {
	for _, s := range canonical {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Scenario{}, &apperrors.ConfigError{
		Field:  "scenario_id",
		Reason: "no scenario named " + id,
		Err:    apperrors.ErrUnknownScenario,
	}
}

// Validate checks a scenario, canonical or custom, before it is applied
func Validate(s models.Scenario) error {
	switch {
	case s.PeakDeclinePercent <= -1:
		return apperrors.NewConfigError("peak_decline_percent", "must be above -100%%, got %g", s.PeakDeclinePercent)
	case s.DeclineMonths < 1:
		return apperrors.NewConfigError("decline_months", "must be at least 1, got %d", s.DeclineMonths)
	case s.RecoveryMonths < 0:
		return apperrors.NewConfigError("recovery_months", "must not be negative, got %d", s.RecoveryMonths)
	}
	return nil
}

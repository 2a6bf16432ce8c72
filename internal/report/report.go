// Package report renders engine results as plain-text reports or JSON.
// Currency figures are rounded to cents with decimal arithmetic before
// they are printed.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"forecast/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer writes reports from the embedded templates
type Renderer struct {
	templates *template.Template
}

// New parses the embedded report templates
func New() (*Renderer, error) {
	t, err := template.New("report").Funcs(funcMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing report templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money":       formatMoney,
		"whole":       formatWhole,
		"percent":     formatPercent,
		"probability": formatProbability,
		"date":        formatDate,
		"deref":       deref,
		"derefInt":    derefInt,
		"yearly":      yearly,
	}
}

// RetirementReport pairs a retirement result with its optional return
// sensitivity
type RetirementReport struct {
	Result    *models.RetirementResult
	Threshold *models.ReturnThreshold
}

// Simulation writes a projection report
func (r *Renderer) Simulation(w io.Writer, res *models.SimulationResult) error {
	return r.templates.ExecuteTemplate(w, "simulation", res)
}

// Goal writes a goal probability report
func (r *Renderer) Goal(w io.Writer, res *models.GoalProbabilityResult) error {
	return r.templates.ExecuteTemplate(w, "goal", res)
}

// Retirement writes a retirement report. threshold may be nil.
func (r *Renderer) Retirement(w io.Writer, res *models.RetirementResult, threshold *models.ReturnThreshold) error {
	return r.templates.ExecuteTemplate(w, "retirement", RetirementReport{Result: res, Threshold: threshold})
}

// Scenarios writes a stress-test comparison table
func (r *Renderer) Scenarios(w io.Writer, results []*models.ScenarioComparisonResult) error {
	return r.templates.ExecuteTemplate(w, "scenarios", results)
}

// Catalog writes the scenario library
func (r *Renderer) Catalog(w io.Writer, scenarios []models.Scenario) error {
	return r.templates.ExecuteTemplate(w, "catalog", scenarios)
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// yearly keeps every twelfth month and the final month
func yearly(series []models.PeriodSummary) []models.PeriodSummary {
	var out []models.PeriodSummary
	for i, ps := range series {
		if ps.Period%12 == 0 || i == len(series)-1 {
			out = append(out, ps)
		}
	}
	return out
}

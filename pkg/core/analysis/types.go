package analysis

import (
	"amplify_roi/pkg/core/calc"
	"amplify_roi/pkg/core/projection"
	"amplify_roi/pkg/core/valuation"
	"amplify_roi/pkg/models"
)

// BreakdownItem is one line of a revenue or expense breakdown.
type BreakdownItem struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Percentage  float64 `json:"percentage"` // share of the breakdown total
	Description string  `json:"description"`
}

// Subject bundles everything the rules look at for one calculation.
type Subject struct {
	Input        calc.CalculationInput
	Projections  []projection.MonthlyProjection
	Metrics      valuation.ROIMetrics
	Country      models.CountryData
	BusinessType string // business type id
	Scenario     string // scenario id
}

// Report is the qualitative half of a calculation result.
type Report struct {
	RevenueBreakdown []BreakdownItem    `json:"revenue_breakdown"`
	ExpenseBreakdown []BreakdownItem    `json:"expense_breakdown"`
	Insights         []string           `json:"insights"`
	Recommendations  []string           `json:"recommendations"`
	RiskFactors      []string           `json:"risk_factors"`
	Benchmarks       map[string]float64 `json:"industry_benchmarks"`
}

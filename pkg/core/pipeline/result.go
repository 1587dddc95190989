package pipeline

import (
	"time"

	"amplify_roi/pkg/core/analysis"
	"amplify_roi/pkg/core/projection"
	"amplify_roi/pkg/core/tax"
	"amplify_roi/pkg/core/valuation"
)

// InputSummary echoes the resolved headline assumptions of a calculation.
type InputSummary struct {
	Country           string  `json:"country"`
	Currency          string  `json:"currency"`
	BusinessType      string  `json:"business_type"` // scenario display name
	MonthlyRevenue    float64 `json:"monthly_revenue"`
	InitialInvestment float64 `json:"initial_investment"`
	GrossMargin       float64 `json:"gross_margin"`
	GrowthRate        float64 `json:"growth_rate"`
	TimeframeMonths   int     `json:"timeframe_months"`
}

// Result is the full output of one calculation. Apart from CalculationID and
// Timestamp it is a pure function of the request and reference data.
type Result struct {
	CalculationID string    `json:"calculation_id"`
	Timestamp     time.Time `json:"timestamp"`

	InputSummary       InputSummary                   `json:"input_summary"`
	Metrics            valuation.ROIMetrics           `json:"metrics"`
	TaxCalculation     tax.TaxCalculation             `json:"tax_calculation"`
	RevenueBreakdown   []analysis.BreakdownItem       `json:"revenue_breakdown"`
	ExpenseBreakdown   []analysis.BreakdownItem       `json:"expense_breakdown"`
	MonthlyProjections []projection.MonthlyProjection `json:"monthly_projections"`

	Insights           []string           `json:"insights"`
	Recommendations    []string           `json:"recommendations"`
	RiskFactors        []string           `json:"risk_factors"`
	IndustryBenchmarks map[string]float64 `json:"industry_benchmarks"`

	CurrencyCode    string            `json:"currency_code"`
	FormattedValues map[string]string `json:"formatted_values"`
}

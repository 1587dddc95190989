package pipeline

import (
	"math"
	"time"

	"amplify_roi/pkg/core/analysis"
	"amplify_roi/pkg/core/calc"
	"amplify_roi/pkg/core/projection"
	"amplify_roi/pkg/core/tax"
	"amplify_roi/pkg/core/validate"
	"amplify_roi/pkg/core/valuation"
	"amplify_roi/pkg/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CurrencyFormatter renders an amount for display in the given currency.
type CurrencyFormatter interface {
	Format(amount float64, currencyCode string) string
}

// Calculator runs the full calculation:
// Validate -> Normalize -> Project -> {Aggregate, Tax} -> Analyze -> Assemble.
// It holds no per-call state and is safe for concurrent use once configured.
type Calculator struct {
	projector *projection.ProjectionEngine
	analyzer  *analysis.AnalysisEngine
	formatter CurrencyFormatter
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger
}

// NewCalculator creates a calculator that formats display values with formatter.
func NewCalculator(formatter CurrencyFormatter) *Calculator {
	return &Calculator{
		projector: projection.NewProjectionEngine(),
		analyzer:  analysis.NewAnalysisEngine(),
		formatter: formatter,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
		log:       zerolog.Nop(),
	}
}

// SetClock overrides the timestamp source (e.g., for testing).
func (c *Calculator) SetClock(now func() time.Time) {
	c.now = now
}

// SetIDGenerator overrides how calculation ids are minted.
func (c *Calculator) SetIDGenerator(newID func() string) {
	c.newID = newID
}

// SetLogger attaches a logger.
func (c *Calculator) SetLogger(log zerolog.Logger) {
	c.log = log.With().Str("component", "calculator").Logger()
}

// stages holds the numeric output of one run, before the text rules.
type stages struct {
	input       calc.CalculationInput
	projections []projection.MonthlyProjection
	metrics     valuation.ROIMetrics
}

// run validates and executes the numeric stages.
func (c *Calculator) run(req models.CalculationRequest, country models.CountryData, scenario models.ScenarioData) (stages, error) {
	// 1. Boundary validation
	if err := validate.ValidateRequest(req); err != nil {
		return stages{}, err
	}
	if err := validate.ValidateCountry(country); err != nil {
		return stages{}, err
	}
	if err := validate.ValidateScenario(scenario); err != nil {
		return stages{}, err
	}

	// 2. Normalize
	in, err := calc.NormalizeInput(req, *scenario.Metrics)
	if err != nil {
		return stages{}, errors.Wrap(err, "normalize input")
	}

	// 3. Project
	p, err := c.projector.Project(in, req.Timeframe())
	if err != nil {
		return stages{}, errors.Wrap(err, "project")
	}

	// 4. Aggregate
	metrics := valuation.Aggregate(p, in.InitialInvestment)
	if err := metrics.CheckFinite(); err != nil {
		return stages{}, errors.Wrap(err, "aggregate")
	}
	return stages{
		input:       in,
		projections: p,
		metrics:     metrics,
	}, nil
}

// Compute produces the full result for one request. Reference data is only
// read. IRR non-convergence is not an error: the result carries a null IRR.
func (c *Calculator) Compute(req models.CalculationRequest, country models.CountryData, scenario models.ScenarioData) (*Result, error) {
	s, err := c.run(req, country, scenario)
	if err != nil {
		return nil, err
	}

	if s.metrics.IRR.Status == valuation.IRRNotConverged {
		c.log.Debug().
			Str("country", country.Code).
			Str("scenario", scenario.ID).
			Msg("IRR did not converge; reporting null")
	}

	// 5. Tax
	taxes, err := tax.Calculate(s.projections, country.TaxRates, s.input.EmployeeCosts)
	if err != nil {
		return nil, errors.Wrap(err, "tax")
	}
	if math.IsInf(taxes.TotalTax, 0) || math.IsNaN(taxes.TotalTax) || math.IsInf(taxes.AfterTaxProfit, 0) || math.IsNaN(taxes.AfterTaxProfit) {
		return nil, models.InvalidInputf("tax totals are out of range; inputs are too large")
	}

	// 6. Analyze
	scenarioID := scenario.ID
	if scenarioID == "" {
		scenarioID = req.Scenario
	}
	report := c.analyzer.Analyze(analysis.Subject{
		Input:        s.input,
		Projections:  s.projections,
		Metrics:      s.metrics,
		Country:      country,
		BusinessType: req.BusinessType,
		Scenario:     scenarioID,
	})

	// 7. Assemble
	code := country.Currency.Code
	result := &Result{
		CalculationID: c.newID(),
		Timestamp:     c.now(),
		InputSummary: InputSummary{
			Country:           country.Name,
			Currency:          code,
			BusinessType:      scenarioName(scenario),
			MonthlyRevenue:    s.input.MonthlyRevenue,
			InitialInvestment: s.input.InitialInvestment,
			GrossMargin:       s.input.GrossMargin,
			GrowthRate:        s.input.GrowthRate,
			TimeframeMonths:   len(s.projections),
		},
		Metrics:            s.metrics,
		TaxCalculation:     taxes,
		RevenueBreakdown:   report.RevenueBreakdown,
		ExpenseBreakdown:   report.ExpenseBreakdown,
		MonthlyProjections: s.projections,
		Insights:           report.Insights,
		Recommendations:    report.Recommendations,
		RiskFactors:        report.RiskFactors,
		IndustryBenchmarks: report.Benchmarks,
		CurrencyCode:       code,
		FormattedValues:    c.formatValues(s.metrics, taxes, code),
	}

	c.log.Debug().
		Str("calculation_id", result.CalculationID).
		Float64("roi_percentage", s.metrics.ROIPercentage).
		Int("months", len(s.projections)).
		Msg("calculation complete")

	return result, nil
}

func (c *Calculator) formatValues(m valuation.ROIMetrics, t tax.TaxCalculation, code string) map[string]string {
	if c.formatter == nil {
		return map[string]string{}
	}
	return map[string]string{
		"net_profit":       c.formatter.Format(m.NetProfit, code),
		"total_revenue":    c.formatter.Format(m.TotalRevenue, code),
		"total_expenses":   c.formatter.Format(m.TotalExpenses, code),
		"corporate_tax":    c.formatter.Format(t.CorporateTax, code),
		"after_tax_profit": c.formatter.Format(t.AfterTaxProfit, code),
		"npv":              c.formatter.Format(m.NPV, code),
	}
}

func scenarioName(s models.ScenarioData) string {
	if s.Name == "" {
		return "Unknown"
	}
	return s.Name
}

// Restamp returns a copy of r carrying a fresh calculation id and timestamp.
// Used when a cached result is served for an identical request.
func (c *Calculator) Restamp(r *Result) *Result {
	cp := *r
	cp.CalculationID = c.newID()
	cp.Timestamp = c.now()
	return &cp
}

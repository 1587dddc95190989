// Package validate checks calculation requests and reference data at the
// boundary, before anything reaches the engine.
package validate

import (
	"fmt"
	"strings"

	"amplify_roi/pkg/models"
)

// =============================================================================
// REQUEST VALIDATION
// =============================================================================

// ValidateRequest rejects requests the engine must never see. All problems are
// reported together in one ErrInvalidInput.
func ValidateRequest(req models.CalculationRequest) error {
	var problems []string

	if req.MonthlyRevenue <= 0 {
		problems = append(problems, fmt.Sprintf("monthly_revenue must be positive, got %v", req.MonthlyRevenue))
	}
	if req.InitialInvestment < 0 {
		problems = append(problems, fmt.Sprintf("initial_investment must not be negative, got %v", req.InitialInvestment))
	}
	if tf := req.Timeframe(); tf < 1 || tf > models.MaxTimeframeMonths {
		problems = append(problems, fmt.Sprintf("timeframe_months must be within [1,%d], got %d", models.MaxTimeframeMonths, tf))
	}

	rates := []struct {
		name string
		v    *float64
		max  float64
	}{
		{"gross_margin", req.GrossMargin, 1},
		{"churn_rate", req.ChurnRate, 1},
		{"payment_processing_rate", req.PaymentProcessingRate, models.MaxPaymentProcessingRate},
	}
	for _, r := range rates {
		if r.v != nil && (*r.v < 0 || *r.v > r.max) {
			problems = append(problems, fmt.Sprintf("%s must be within [0,%v], got %v", r.name, r.max, *r.v))
		}
	}

	amounts := []struct {
		name string
		v    *float64
	}{
		{"operating_expenses", req.OperatingExpenses},
		{"marketing_spend", req.MarketingSpend},
		{"customer_acquisition_cost", req.CustomerAcquisitionCost},
		{"average_order_value", req.AverageOrderValue},
		{"customer_lifetime_value", req.CustomerLifetimeValue},
		{"fulfillment_costs", req.FulfillmentCosts},
		{"employee_costs", req.EmployeeCosts},
	}
	for _, a := range amounts {
		if a.v != nil && *a.v < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative, got %v", a.name, *a.v))
		}
	}

	if len(problems) > 0 {
		return models.InvalidInputf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// =============================================================================
// REFERENCE DATA VALIDATION
// =============================================================================

// ValidateCountry checks the fields the engine reads from a country record.
func ValidateCountry(c models.CountryData) error {
	var missing []string

	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Currency.Code == "" {
		missing = append(missing, "currency.code")
	}
	if c.TaxRates.CorporateTax == nil {
		missing = append(missing, "tax_rates.corporate_tax")
	}
	if c.EconomicIndicators == nil {
		missing = append(missing, "economic_indicators")
	}
	if len(missing) > 0 {
		return models.MissingReferencef("country %q: missing %s", c.Code, strings.Join(missing, ", "))
	}

	rates := []struct {
		name string
		v    *float64
	}{
		{"corporate_tax", c.TaxRates.CorporateTax},
		{"vat", c.TaxRates.VAT},
		{"payroll_tax", c.TaxRates.PayrollTax},
		{"capital_gains", c.TaxRates.CapitalGains},
	}
	for _, r := range rates {
		if r.v != nil && (*r.v < 0 || *r.v > 1) {
			return models.MissingReferencef("country %q: tax_rates.%s out of range [0,1]: %v", c.Code, r.name, *r.v)
		}
	}
	return nil
}

// ValidateScenario checks that a scenario carries every default the
// normalizer relies on.
func ValidateScenario(s models.ScenarioData) error {
	m := s.Metrics
	if m == nil {
		return models.MissingReferencef("scenario %q: missing metrics", s.ID)
	}

	var missing []string
	if m.Revenue == nil {
		missing = append(missing, "revenue")
	}
	if m.GrossMargin == nil {
		missing = append(missing, "gross_margin")
	}
	if m.CAC == nil {
		missing = append(missing, "cac")
	}
	if m.MarketingBudget == nil {
		missing = append(missing, "marketing_budget")
	}
	if m.AOV == nil {
		missing = append(missing, "aov")
	}
	if m.OperatingExpenses == nil {
		missing = append(missing, "operating_expenses")
	}
	if m.GrowthRate == nil {
		missing = append(missing, "growth_rate")
	}
	if len(missing) > 0 {
		return models.MissingReferencef("scenario %q: missing %s", s.ID, strings.Join(missing, ", "))
	}

	if gm := *m.GrossMargin; gm < 0 || gm > 1 {
		return models.MissingReferencef("scenario %q: gross_margin out of range [0,1]: %v", s.ID, gm)
	}
	if c := models.Value(m.ChurnRate); c < 0 || c > 1 {
		return models.MissingReferencef("scenario %q: churn_rate out of range [0,1]: %v", s.ID, c)
	}
	return nil
}

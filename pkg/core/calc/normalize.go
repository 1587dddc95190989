package calc

import (
	"amplify_roi/pkg/models"
)

// DefaultPaymentProcessingRate is applied when the caller supplies no card rate (2.9%).
const DefaultPaymentProcessingRate = 0.029

// clvFallbackMonths annualizes per-order profit when churn is unknown.
const clvFallbackMonths = 12

// NormalizeInput merges the caller's overrides with the scenario defaults.
// Any override that is nil or zero falls back to the scenario value.
// The request is assumed validated; resolved values that still break an
// invariant are reported, never clamped.
func NormalizeInput(req models.CalculationRequest, m models.ScenarioMetrics) (CalculationInput, error) {
	if err := requireScenarioDefaults(m); err != nil {
		return CalculationInput{}, err
	}

	// 1. Revenue and margin
	monthlyRevenue := orDefault(req.MonthlyRevenue, m.Revenue.Default)
	if monthlyRevenue <= 0 {
		return CalculationInput{}, models.InvalidInputf("monthly_revenue must be positive, got %v", monthlyRevenue)
	}

	grossMargin := orDefault(models.Value(req.GrossMargin), *m.GrossMargin)
	if grossMargin < 0 || grossMargin > 1 {
		return CalculationInput{}, models.InvalidInputf("gross_margin must be in [0,1], got %v", grossMargin)
	}
	cac := orDefault(models.Value(req.CustomerAcquisitionCost), m.CAC.Default)
	aov := orDefault(models.Value(req.AverageOrderValue), m.AOV.Default)

	cogs := monthlyRevenue * (1 - grossMargin)
	grossProfit := monthlyRevenue * grossMargin

	// 2. Marketing and operating spend
	marketing := orDefault(models.Value(req.MarketingSpend), monthlyRevenue*m.MarketingBudget.Percentage)
	operatingPct := *m.OperatingExpenses
	operating := orDefault(models.Value(req.OperatingExpenses), monthlyRevenue*operatingPct)

	// 3. Customer metrics
	churn := orDefault(models.Value(req.ChurnRate), models.Value(m.ChurnRate))
	if churn < 0 || churn > 1 {
		return CalculationInput{}, models.InvalidInputf("churn_rate must be in [0,1], got %v", churn)
	}
	clv := CustomerLifetimeValue(aov, grossMargin, churn, models.Value(req.CustomerLifetimeValue))

	// 4. Additional costs
	fulfillment := models.Value(req.FulfillmentCosts)
	if fulfillment == 0 {
		fulfillment = monthlyRevenue * models.Value(m.FulfillmentCost)
	}
	processingRate := orDefault(models.Value(req.PaymentProcessingRate), DefaultPaymentProcessingRate)

	return CalculationInput{
		MonthlyRevenue:        monthlyRevenue,
		InitialInvestment:     req.InitialInvestment,
		GrossMargin:           grossMargin,
		COGS:                  cogs,
		GrossProfit:           grossProfit,
		MarketingSpend:        marketing,
		OperatingExpenses:     operating,
		CAC:                   cac,
		AOV:                   aov,
		CLV:                   clv,
		ChurnRate:             churn,
		GrowthRate:            *m.GrowthRate,
		FulfillmentCosts:      fulfillment,
		PaymentProcessingCost: monthlyRevenue * processingRate,
		EmployeeCosts:         models.Value(req.EmployeeCosts),
		PaymentTerms:          m.PaymentTerms,
	}, nil
}

// CustomerLifetimeValue estimates CLV.
// With churn > 0 it is monthly profit per customer over monthly churn
// (geometric retention). Without churn it uses the caller's CLV, or one year
// of per-order profit as a rough stand-in.
func CustomerLifetimeValue(aov, grossMargin, churn, userCLV float64) float64 {
	if churn > 0 {
		return (aov * grossMargin) / churn
	}
	if userCLV > 0 {
		return userCLV
	}
	return aov * grossMargin * clvFallbackMonths
}

func requireScenarioDefaults(m models.ScenarioMetrics) error {
	switch {
	case m.Revenue == nil:
		return models.MissingReferencef("scenario metrics: revenue range")
	case m.GrossMargin == nil:
		return models.MissingReferencef("scenario metrics: gross_margin")
	case m.CAC == nil:
		return models.MissingReferencef("scenario metrics: cac range")
	case m.MarketingBudget == nil:
		return models.MissingReferencef("scenario metrics: marketing_budget")
	case m.AOV == nil:
		return models.MissingReferencef("scenario metrics: aov range")
	case m.OperatingExpenses == nil:
		return models.MissingReferencef("scenario metrics: operating_expenses")
	case m.GrowthRate == nil:
		return models.MissingReferencef("scenario metrics: growth_rate")
	}
	return nil
}

// orDefault treats zero as "not supplied".
func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

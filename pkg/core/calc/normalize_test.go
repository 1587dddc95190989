package calc

import (
	"errors"
	"math"
	"testing"

	"amplify_roi/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedMetrics mirrors the startup "seed" scenario of the bundled data.
func seedMetrics() models.ScenarioMetrics {
	return models.ScenarioMetrics{
		Revenue:           &models.Range{Min: 5000, Max: 50000, Default: 15000},
		GrossMargin:       models.Float(0.7),
		CAC:               &models.Range{Min: 50, Max: 500, Default: 200},
		MarketingBudget:   &models.MarketingBudget{Percentage: 0.3, Default: 5000},
		AOV:               &models.Range{Min: 100, Max: 1000, Default: 350},
		PaymentTerms:      15,
		OperatingExpenses: models.Float(0.5),
		GrowthRate:        models.Float(0.2),
	}
}

func TestNormalizeInput_Defaults(t *testing.T) {
	in, err := NormalizeInput(models.CalculationRequest{MonthlyRevenue: 10000, InitialInvestment: 25000}, seedMetrics())
	require.NoError(t, err)

	assert.Equal(t, 10000.0, in.MonthlyRevenue)
	assert.Equal(t, 25000.0, in.InitialInvestment)
	assert.Equal(t, 0.7, in.GrossMargin)
	assert.InDelta(t, 3000, in.COGS, 1e-9)
	assert.InDelta(t, 7000, in.GrossProfit, 1e-9)
	assert.InDelta(t, 3000, in.MarketingSpend, 1e-9)
	assert.InDelta(t, 5000, in.OperatingExpenses, 1e-9)
	assert.Equal(t, 200.0, in.CAC)
	assert.Equal(t, 350.0, in.AOV)
	assert.Equal(t, 0.0, in.FulfillmentCosts)
	assert.InDelta(t, 290, in.PaymentProcessingCost, 1e-9)
	assert.Equal(t, 0.0, in.EmployeeCosts)
	assert.Equal(t, 0.2, in.GrowthRate)
	assert.Equal(t, 15, in.PaymentTerms)
}

func TestNormalizeInput_Overrides(t *testing.T) {
	req := models.CalculationRequest{
		MonthlyRevenue:          10000,
		GrossMargin:             models.Float(0.5),
		CustomerAcquisitionCost: models.Float(80),
		AverageOrderValue:       models.Float(60),
		MarketingSpend:          models.Float(1200),
		OperatingExpenses:       models.Float(2500),
		ChurnRate:               models.Float(0.1),
		FulfillmentCosts:        models.Float(300),
		PaymentProcessingRate:   models.Float(0.015),
		EmployeeCosts:           models.Float(4000),
	}

	in, err := NormalizeInput(req, seedMetrics())
	require.NoError(t, err)

	assert.Equal(t, 0.5, in.GrossMargin)
	assert.Equal(t, 80.0, in.CAC)
	assert.Equal(t, 60.0, in.AOV)
	assert.Equal(t, 1200.0, in.MarketingSpend)
	assert.Equal(t, 2500.0, in.OperatingExpenses)
	assert.Equal(t, 300.0, in.FulfillmentCosts)
	assert.InDelta(t, 150, in.PaymentProcessingCost, 1e-9)
	assert.Equal(t, 4000.0, in.EmployeeCosts)
	assert.InDelta(t, 60*0.5/0.1, in.CLV, 1e-9)
}

func TestNormalizeInput_ZeroOverrideFallsBack(t *testing.T) {
	req := models.CalculationRequest{
		MonthlyRevenue:        10000,
		GrossMargin:           models.Float(0),
		MarketingSpend:        models.Float(0),
		PaymentProcessingRate: models.Float(0),
	}

	in, err := NormalizeInput(req, seedMetrics())
	require.NoError(t, err)
	assert.Equal(t, 0.7, in.GrossMargin)
	assert.InDelta(t, 3000, in.MarketingSpend, 1e-9)
	assert.InDelta(t, 10000*DefaultPaymentProcessingRate, in.PaymentProcessingCost, 1e-9)
}

func TestNormalizeInput_ScenarioFulfillmentAndChurn(t *testing.T) {
	m := seedMetrics()
	m.FulfillmentCost = models.Float(0.15)
	m.ChurnRate = models.Float(0.08)

	in, err := NormalizeInput(models.CalculationRequest{MonthlyRevenue: 20000}, m)
	require.NoError(t, err)
	assert.InDelta(t, 3000, in.FulfillmentCosts, 1e-9)
	assert.Equal(t, 0.08, in.ChurnRate)
	assert.InDelta(t, 350*0.7/0.08, in.CLV, 1e-9)
}

func TestCustomerLifetimeValue_Fallbacks(t *testing.T) {
	// No churn and no user CLV: one year of per-order profit.
	if got := CustomerLifetimeValue(350, 0.7, 0, 0); math.Abs(got-350*0.7*12) > 1e-9 {
		t.Errorf("CLV fallback expected %f, got %f", 350*0.7*12, got)
	}
	assert.Equal(t, 999.0, CustomerLifetimeValue(350, 0.7, 0, 999))
	// Churn wins over a user-supplied CLV.
	assert.InDelta(t, 350*0.7/0.05, CustomerLifetimeValue(350, 0.7, 0.05, 999), 1e-9)
}

func TestNormalizeInput_CLVWithoutChurn(t *testing.T) {
	in, err := NormalizeInput(models.CalculationRequest{MonthlyRevenue: 1000}, seedMetrics())
	require.NoError(t, err)
	assert.InDelta(t, 350*0.7*12, in.CLV, 1e-9)

	ratio, ok := in.CLVToCAC()
	assert.True(t, ok)
	assert.InDelta(t, 350*0.7*12/200, ratio, 1e-9)
}

func TestNormalizeInput_FailsLoudly(t *testing.T) {
	m := seedMetrics()

	_, err := NormalizeInput(models.CalculationRequest{MonthlyRevenue: 1000, GrossMargin: models.Float(1.5)}, m)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = NormalizeInput(models.CalculationRequest{MonthlyRevenue: 1000, ChurnRate: models.Float(2)}, m)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	m.Revenue.Default = 0
	_, err = NormalizeInput(models.CalculationRequest{}, m)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	m = seedMetrics()
	m.CAC = nil
	_, err = NormalizeInput(models.CalculationRequest{MonthlyRevenue: 1000}, m)
	assert.True(t, errors.Is(err, models.ErrMissingReferenceData))
}

func TestCLVToCAC_Undefined(t *testing.T) {
	_, ok := CalculationInput{CLV: 100}.CLVToCAC()
	assert.False(t, ok)
}

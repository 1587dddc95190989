package projection_test

import (
	"errors"
	"math"
	"testing"

	"amplify_roi/pkg/core/calc"
	"amplify_roi/pkg/core/projection"
	"amplify_roi/pkg/core/valuation"
	"amplify_roi/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input() calc.CalculationInput {
	return calc.CalculationInput{
		MonthlyRevenue:        8000,
		InitialInvestment:     15000,
		GrossMargin:           0.65,
		MarketingSpend:        900,
		OperatingExpenses:     1500,
		GrowthRate:            0.03,
		FulfillmentCosts:      400,
		PaymentProcessingCost: 232,
		EmployeeCosts:         700,
	}
}

func TestProject_LengthAndOrder(t *testing.T) {
	engine := projection.NewProjectionEngine()
	for _, n := range []int{1, 12, 37, models.MaxTimeframeMonths} {
		p, err := engine.Project(input(), n)
		require.NoError(t, err)
		require.Len(t, p, n)
		for i, m := range p {
			if m.Month != i+1 {
				t.Fatalf("month %d at index %d", m.Month, i)
			}
		}
	}
}

func TestProject_CumulativeIsExactRunningSum(t *testing.T) {
	in := input()
	p, err := projection.NewProjectionEngine().Project(in, 48)
	require.NoError(t, err)

	cum := -in.InitialInvestment
	for _, m := range p {
		cum += m.Profit
		if m.CumulativeProfit != cum {
			t.Fatalf("month %d: cumulative %v, expected %v", m.Month, m.CumulativeProfit, cum)
		}
		assert.Equal(t, m.Revenue-m.Expenses, m.Profit)
	}
}

func TestProject_ZeroGrowthIsFlat(t *testing.T) {
	in := input()
	in.GrowthRate = 0

	p, err := projection.NewProjectionEngine().Project(in, 24)
	require.NoError(t, err)
	for _, m := range p {
		assert.Equal(t, in.MonthlyRevenue, m.Revenue)
		assert.Equal(t, p[0].Expenses, m.Expenses)
	}
}

func TestProject_FixedCostsDoNotGrow(t *testing.T) {
	in := input()
	in.GrowthRate = 0.1

	p, err := projection.NewProjectionEngine().Project(in, 3)
	require.NoError(t, err)

	f := math.Pow(1.1, 2)
	variable := (in.MarketingSpend + in.FulfillmentCosts + in.PaymentProcessingCost) * f
	fixed := in.OperatingExpenses + in.EmployeeCosts
	cogs := in.MonthlyRevenue * f * (1 - in.GrossMargin)

	assert.InDelta(t, in.MonthlyRevenue*f, p[2].Revenue, 1e-9)
	assert.InDelta(t, cogs, p[2].COGS, 1e-9)
	assert.InDelta(t, cogs+variable+fixed, p[2].Expenses, 1e-9)
}

func TestProject_ROI(t *testing.T) {
	in := input()
	p, err := projection.NewProjectionEngine().Project(in, 6)
	require.NoError(t, err)
	assert.InDelta(t, p[5].CumulativeProfit/in.InitialInvestment*100, p[5].ROI, 1e-9)

	// Without investment ROI is measured against the month's revenue.
	in.InitialInvestment = 0
	p, err = projection.NewProjectionEngine().Project(in, 6)
	require.NoError(t, err)
	assert.InDelta(t, p[5].CumulativeProfit/p[5].Revenue*100, p[5].ROI, 1e-9)
}

func TestProject_ROIFloorsTinyRevenue(t *testing.T) {
	in := calc.CalculationInput{MonthlyRevenue: 0.5, GrossMargin: 1, OperatingExpenses: 1}

	p, err := projection.NewProjectionEngine().Project(in, 1)
	require.NoError(t, err)
	// Denominator is max(0.5, MinorUnitFloor) = 1.
	assert.InDelta(t, -0.5*100/projection.MinorUnitFloor, p[0].ROI, 1e-12)
}

func TestProject_RejectsTimeframe(t *testing.T) {
	for _, n := range []int{0, -1, models.MaxTimeframeMonths + 1} {
		_, err := projection.NewProjectionEngine().Project(input(), n)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInvalidInput))
	}
}

func TestProject_RejectsOverflow(t *testing.T) {
	in := input()
	in.GrowthRate = 1e300

	_, err := projection.NewProjectionEngine().Project(in, 12)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

// investment 10000, revenue 5000, margin 0.7, no growth, 1000/mo operating and
// no other costs: 2500/mo profit, recovered after exactly four months.
func TestProject_PaybackAfterFourMonths(t *testing.T) {
	in := calc.CalculationInput{
		MonthlyRevenue:    5000,
		InitialInvestment: 10000,
		GrossMargin:       0.7,
		OperatingExpenses: 1000,
	}

	p, err := projection.NewProjectionEngine().Project(in, 12)
	require.NoError(t, err)
	for _, m := range p {
		assert.InDelta(t, 2500, m.Profit, 1e-9)
	}
	assert.InDelta(t, 0, p[3].CumulativeProfit, 1e-9)

	months, ok := valuation.Aggregate(p, in.InitialInvestment).Payback.Value()
	require.True(t, ok)
	assert.InDelta(t, 4.0, months, 1e-9)
}

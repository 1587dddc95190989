package projection

import (
	"math"

	"amplify_roi/pkg/core/calc"
	"amplify_roi/pkg/models"
)

// ProjectionEngine turns a resolved CalculationInput into a month-by-month
// cash-flow series. It keeps no state between calls.
type ProjectionEngine struct{}

// NewProjectionEngine creates a new projection engine
func NewProjectionEngine() *ProjectionEngine {
	return &ProjectionEngine{}
}

// Project compounds growth over months 1..n and returns exactly n records.
//
// Revenue, marketing, fulfillment and payment processing scale with the
// growth factor; operating expenses and employee costs stay fixed.
func (e *ProjectionEngine) Project(in calc.CalculationInput, months int) ([]MonthlyProjection, error) {
	if months < 1 || months > models.MaxTimeframeMonths {
		return nil, models.InvalidInputf("timeframe must be within [1,%d] months, got %d", models.MaxTimeframeMonths, months)
	}

	projections := make([]MonthlyProjection, 0, months)
	cumulative := -in.InitialInvestment

	for month := 1; month <= months; month++ {
		factor := growthFactor(in.GrowthRate, month)

		// 1. Revenue and direct costs
		revenue := in.MonthlyRevenue * factor
		cogs := revenue * (1 - in.GrossMargin)

		// 2. Variable expenses scale with revenue
		marketing := in.MarketingSpend * factor
		fulfillment := in.FulfillmentCosts * factor
		processing := in.PaymentProcessingCost * factor

		// 3. Fixed expenses
		operating := in.OperatingExpenses
		employee := in.EmployeeCosts

		expenses := cogs + marketing + fulfillment + processing + operating + employee
		profit := revenue - expenses
		if math.IsNaN(profit) || math.IsInf(profit, 0) {
			return nil, models.InvalidInputf("projection overflowed at month %d (growth_rate %v)", month, in.GrowthRate)
		}

		cumulative += profit

		projections = append(projections, MonthlyProjection{
			Month:            month,
			Revenue:          revenue,
			COGS:             cogs,
			Expenses:         expenses,
			Profit:           profit,
			CumulativeProfit: cumulative,
			ROI:              monthlyROI(cumulative, in.InitialInvestment, revenue),
		})
	}

	return projections, nil
}

// monthlyROI is cumulative profit against the investment, or against the
// month's revenue (floored at MinorUnitFloor) when nothing was invested.
func monthlyROI(cumulative, investment, revenue float64) float64 {
	if investment > 0 {
		return cumulative / investment * 100
	}
	return cumulative / math.Max(revenue, MinorUnitFloor) * 100
}

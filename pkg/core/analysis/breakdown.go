package analysis

import (
	"amplify_roi/pkg/core/calc"
	"amplify_roi/pkg/core/projection"

	"gonum.org/v1/gonum/floats"
)

// RevenueBreakdown reports all revenue as a single primary stream; the model
// does not track separate revenue sources.
func RevenueBreakdown(p []projection.MonthlyProjection) []BreakdownItem {
	return []BreakdownItem{{
		Category:    "Primary Revenue",
		Amount:      floats.Sum(projection.Revenues(p)),
		Percentage:  100.0,
		Description: "Main business revenue stream",
	}}
}

// ExpenseBreakdown splits total expenses into their cost categories. Only
// categories with a positive amount are listed. Growth-scaled costs are summed
// with the same factors the projector applied, so the lines add up to the
// projected total.
func ExpenseBreakdown(in calc.CalculationInput, p []projection.MonthlyProjection) []BreakdownItem {
	totalExpenses := floats.Sum(projection.Expenses(p))
	if totalExpenses <= 0 {
		return []BreakdownItem{}
	}

	months := float64(len(p))
	// Sum of growth factors over the horizon.
	var scaled float64
	if in.MonthlyRevenue > 0 {
		scaled = floats.Sum(projection.Revenues(p)) / in.MonthlyRevenue
	}

	lines := []struct {
		category, description string
		amount                float64
	}{
		{"Cost of Goods Sold", "Direct costs of producing goods/services", floats.Sum(projection.COGS(p))},
		{"Marketing & Advertising", "Customer acquisition and marketing costs", in.MarketingSpend * scaled},
		{"Operating Expenses", "General business operating costs", in.OperatingExpenses * months},
		{"Fulfillment & Shipping", "Order fulfillment and shipping costs", in.FulfillmentCosts * scaled},
		{"Payment Processing", "Credit card and payment processing fees", in.PaymentProcessingCost * scaled},
		{"Employee Costs", "Salary, benefits, and payroll taxes", in.EmployeeCosts * months},
	}

	items := make([]BreakdownItem, 0, len(lines))
	for _, l := range lines {
		if l.amount <= 0 {
			continue
		}
		items = append(items, BreakdownItem{
			Category:    l.category,
			Amount:      l.amount,
			Percentage:  l.amount / totalExpenses * 100,
			Description: l.description,
		})
	}
	return items
}

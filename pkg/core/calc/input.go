package calc

// CalculationInput is the fully resolved set of business assumptions for one
// calculation. All monetary amounts are monthly and in the country's currency.
// It is built once by NormalizeInput and treated as read-only afterwards.
type CalculationInput struct {
	MonthlyRevenue    float64 `json:"monthly_revenue"`
	InitialInvestment float64 `json:"initial_investment"`
	GrossMargin       float64 `json:"gross_margin"` // [0,1]
	COGS              float64 `json:"cogs"`
	GrossProfit       float64 `json:"gross_profit"`

	MarketingSpend    float64 `json:"marketing_spend"`
	OperatingExpenses float64 `json:"operating_expenses"`

	// Unit economics
	CAC       float64 `json:"cac"`
	AOV       float64 `json:"aov"`
	CLV       float64 `json:"clv"`
	ChurnRate float64 `json:"churn_rate"` // monthly, [0,1]

	GrowthRate float64 `json:"growth_rate"` // monthly, may be negative

	FulfillmentCosts      float64 `json:"fulfillment_costs"`
	PaymentProcessingCost float64 `json:"payment_processing_cost"`
	EmployeeCosts         float64 `json:"employee_costs"`
	PaymentTerms          int     `json:"payment_terms"` // days
}

// CLVToCAC returns the CLV:CAC ratio and whether it is defined (both sides > 0).
func (in CalculationInput) CLVToCAC() (float64, bool) {
	if in.CLV > 0 && in.CAC > 0 {
		return in.CLV / in.CAC, true
	}
	return 0, false
}

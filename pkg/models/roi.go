package models

const (
	DefaultTimeframeMonths = 12
	MaxTimeframeMonths     = 120

	// MaxPaymentProcessingRate caps the user-supplied card processing rate.
	MaxPaymentProcessingRate = 0.1
)

// CalculationRequest is the caller-facing input for one ROI calculation.
// Optional overrides are pointers; nil or zero means "use the scenario default".
type CalculationRequest struct {
	// Basic setup
	Country      string `json:"country"`
	BusinessType string `json:"business_type"`
	Scenario     string `json:"scenario"`

	// Financial inputs
	MonthlyRevenue    float64  `json:"monthly_revenue"`
	InitialInvestment float64  `json:"initial_investment"`
	OperatingExpenses *float64 `json:"operating_expenses,omitempty"`
	MarketingSpend    *float64 `json:"marketing_spend,omitempty"`

	// Business metrics
	GrossMargin             *float64 `json:"gross_margin,omitempty"`
	CustomerAcquisitionCost *float64 `json:"customer_acquisition_cost,omitempty"`
	AverageOrderValue       *float64 `json:"average_order_value,omitempty"`
	CustomerLifetimeValue   *float64 `json:"customer_lifetime_value,omitempty"`
	ChurnRate               *float64 `json:"churn_rate,omitempty"`

	TimeframeMonths int `json:"timeframe_months,omitempty"`

	// Additional costs
	FulfillmentCosts      *float64 `json:"fulfillment_costs,omitempty"`
	PaymentProcessingRate *float64 `json:"payment_processing_rate,omitempty"`
	EmployeeCosts         *float64 `json:"employee_costs,omitempty"`
}

// Timeframe returns the requested horizon, defaulting to 12 months.
func (r CalculationRequest) Timeframe() int {
	if r.TimeframeMonths == 0 {
		return DefaultTimeframeMonths
	}
	return r.TimeframeMonths
}

// RequestOverrides is a partial request used by what-if analysis. Every
// non-nil field replaces the matching field of the base request.
type RequestOverrides struct {
	Label string `json:"label,omitempty"`

	MonthlyRevenue    *float64 `json:"monthly_revenue,omitempty"`
	InitialInvestment *float64 `json:"initial_investment,omitempty"`
	OperatingExpenses *float64 `json:"operating_expenses,omitempty"`
	MarketingSpend    *float64 `json:"marketing_spend,omitempty"`

	GrossMargin             *float64 `json:"gross_margin,omitempty"`
	CustomerAcquisitionCost *float64 `json:"customer_acquisition_cost,omitempty"`
	AverageOrderValue       *float64 `json:"average_order_value,omitempty"`
	CustomerLifetimeValue   *float64 `json:"customer_lifetime_value,omitempty"`
	ChurnRate               *float64 `json:"churn_rate,omitempty"`

	TimeframeMonths *int `json:"timeframe_months,omitempty"`

	FulfillmentCosts      *float64 `json:"fulfillment_costs,omitempty"`
	PaymentProcessingRate *float64 `json:"payment_processing_rate,omitempty"`
	EmployeeCosts         *float64 `json:"employee_costs,omitempty"`
}

// Apply returns a copy of base with the overrides laid on top.
func (o RequestOverrides) Apply(base CalculationRequest) CalculationRequest {
	out := base
	if o.MonthlyRevenue != nil {
		out.MonthlyRevenue = *o.MonthlyRevenue
	}
	if o.InitialInvestment != nil {
		out.InitialInvestment = *o.InitialInvestment
	}
	if o.TimeframeMonths != nil {
		out.TimeframeMonths = *o.TimeframeMonths
	}
	out.OperatingExpenses = pick(o.OperatingExpenses, base.OperatingExpenses)
	out.MarketingSpend = pick(o.MarketingSpend, base.MarketingSpend)
	out.GrossMargin = pick(o.GrossMargin, base.GrossMargin)
	out.CustomerAcquisitionCost = pick(o.CustomerAcquisitionCost, base.CustomerAcquisitionCost)
	out.AverageOrderValue = pick(o.AverageOrderValue, base.AverageOrderValue)
	out.CustomerLifetimeValue = pick(o.CustomerLifetimeValue, base.CustomerLifetimeValue)
	out.ChurnRate = pick(o.ChurnRate, base.ChurnRate)
	out.FulfillmentCosts = pick(o.FulfillmentCosts, base.FulfillmentCosts)
	out.PaymentProcessingRate = pick(o.PaymentProcessingRate, base.PaymentProcessingRate)
	out.EmployeeCosts = pick(o.EmployeeCosts, base.EmployeeCosts)
	return out
}

func pick(override, base *float64) *float64 {
	if override != nil {
		v := *override
		return &v
	}
	return base
}

// Float returns a pointer to v. Handy for building requests in code and tests.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// Value dereferences an optional field, treating nil as zero.
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

package models

// Reference data is supplied whole by the caller and never mutated by the engine.

type Currency struct {
	Code          string `json:"code" yaml:"code"`
	Symbol        string `json:"symbol" yaml:"symbol"`
	Name          string `json:"name" yaml:"name"`
	DecimalPlaces int    `json:"decimal_places" yaml:"decimal_places"`
}

// TaxRates holds fractional rates in [0,1]. Only the corporate rate is required.
type TaxRates struct {
	CorporateTax  *float64 `json:"corporate_tax" yaml:"corporate_tax"`
	VAT           *float64 `json:"vat,omitempty" yaml:"vat"`
	CapitalGains  *float64 `json:"capital_gains,omitempty" yaml:"capital_gains"`
	PayrollTax    *float64 `json:"payroll_tax,omitempty" yaml:"payroll_tax"`
	VariesByState bool     `json:"varies_by_state" yaml:"varies_by_state"`
}

// VATRate is the VAT/sales tax rate, 0 when the country has none.
func (t TaxRates) VATRate() float64 { return Value(t.VAT) }

// PayrollRate is the payroll tax rate, 0 when absent.
func (t TaxRates) PayrollRate() float64 { return Value(t.PayrollTax) }

type FinancialYear struct {
	Start string `json:"start" yaml:"start"` // MM-DD
	End   string `json:"end" yaml:"end"`
}

type EconomicIndicators struct {
	Inflation        float64 `json:"inflation" yaml:"inflation"`
	GDPGrowth        float64 `json:"gdp_growth" yaml:"gdp_growth"`
	BusinessEaseRank int     `json:"business_ease_rank" yaml:"business_ease_rank"`
	MinimumWage      float64 `json:"minimum_wage" yaml:"minimum_wage"`
}

type CountryData struct {
	Code               string              `json:"code" yaml:"code"`
	Name               string              `json:"name" yaml:"name"`
	Flag               string              `json:"flag,omitempty" yaml:"flag"`
	Currency           Currency            `json:"currency" yaml:"currency"`
	TaxRates           TaxRates            `json:"tax_rates" yaml:"tax_rates"`
	FinancialYear      *FinancialYear      `json:"financial_year,omitempty" yaml:"financial_year"`
	EconomicIndicators *EconomicIndicators `json:"economic_indicators" yaml:"economic_indicators"`
}

type Range struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Default float64 `json:"default" yaml:"default"`
}

type MarketingBudget struct {
	Percentage float64 `json:"percentage" yaml:"percentage"` // share of revenue
	Default    float64 `json:"default" yaml:"default"`
}

// ScenarioMetrics are the scenario defaults. Pointer fields are required;
// ChurnRate and FulfillmentCost are genuinely optional.
type ScenarioMetrics struct {
	Revenue           *Range           `json:"revenue" yaml:"revenue"`
	GrossMargin       *float64         `json:"gross_margin" yaml:"gross_margin"`
	CAC               *Range           `json:"cac" yaml:"cac"`
	MarketingBudget   *MarketingBudget `json:"marketing_budget" yaml:"marketing_budget"`
	AOV               *Range           `json:"aov" yaml:"aov"`
	ChurnRate         *float64         `json:"churn_rate,omitempty" yaml:"churn_rate"`
	FulfillmentCost   *float64         `json:"fulfillment_cost,omitempty" yaml:"fulfillment_cost"`
	PaymentTerms      int              `json:"payment_terms" yaml:"payment_terms"` // days
	OperatingExpenses *float64         `json:"operating_expenses" yaml:"operating_expenses"`
	GrowthRate        *float64         `json:"growth_rate" yaml:"growth_rate"` // monthly
}

type ScenarioData struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Metrics     *ScenarioMetrics `json:"metrics" yaml:"metrics"`
}

// BusinessCategory groups business types in the catalogue.
type BusinessCategory string

const (
	CategoryStage    BusinessCategory = "stage"
	CategoryIndustry BusinessCategory = "industry"
	CategorySize     BusinessCategory = "size"
	CategoryModel    BusinessCategory = "model"
)

type BusinessType struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Icon        string           `json:"icon,omitempty" yaml:"icon"`
	Category    BusinessCategory `json:"category" yaml:"category"`
	Scenarios   []ScenarioData   `json:"scenarios" yaml:"scenarios"`
}

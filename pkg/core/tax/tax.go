// Package tax applies a country's tax table to a monthly projection.
package tax

import (
	"math"

	"amplify_roi/pkg/core/projection"
	"amplify_roi/pkg/models"

	"gonum.org/v1/gonum/floats"
)

// TaxCalculation is the tax breakdown for one projection. Amounts are totals
// over the whole horizon; EffectiveTaxRate is a percentage.
type TaxCalculation struct {
	CorporateTax     float64 `json:"corporate_tax"`
	VATTax           float64 `json:"vat_tax"`
	PayrollTax       float64 `json:"payroll_tax"`
	TotalTax         float64 `json:"total_tax"`
	EffectiveTaxRate float64 `json:"effective_tax_rate"`
	AfterTaxProfit   float64 `json:"after_tax_profit"`
}

// Calculate computes corporate, VAT and payroll tax.
//
// Only profitable months count towards taxable profit; losses are not carried
// against gains. AfterTaxProfit subtracts corporate tax alone, since it is the
// only tax levied on profit.
func Calculate(p []projection.MonthlyProjection, rates models.TaxRates, employeeCosts float64) (TaxCalculation, error) {
	if rates.CorporateTax == nil {
		return TaxCalculation{}, models.MissingReferencef("tax_rates.corporate_tax")
	}

	corporateRate := *rates.CorporateTax
	totalProfit := taxableProfit(p)
	totalRevenue := floats.Sum(projection.Revenues(p))

	corporate := math.Max(0, totalProfit*corporateRate)
	vat := totalRevenue * rates.VATRate()
	payroll := employeeCosts * float64(len(p)) * rates.PayrollRate()

	var effective float64
	if totalProfit > 0 {
		effective = corporate / totalProfit * 100
	}

	return TaxCalculation{
		CorporateTax:     corporate,
		VATTax:           vat,
		PayrollTax:       payroll,
		TotalTax:         corporate + vat + payroll,
		EffectiveTaxRate: effective,
		AfterTaxProfit:   totalProfit - corporate,
	}, nil
}

func taxableProfit(p []projection.MonthlyProjection) float64 {
	var total float64
	for _, m := range p {
		if m.Profit > 0 {
			total += m.Profit
		}
	}
	return total
}

package valuation

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultAnnualDiscountRate is the hurdle rate used for NPV (10% p.a.).
const DefaultAnnualDiscountRate = 0.10

// MonthlyDiscountRate converts an annual rate to the simple monthly rate used
// for discounting (annual / 12).
func MonthlyDiscountRate(annual float64) float64 {
	return annual / 12
}

// CalculateNPV discounts each month's profit at monthlyRate and subtracts the
// upfront investment:
//
//	NPV = -I + sum(profit_i / (1+r)^i), i = 1..N
func CalculateNPV(profits []float64, initialInvestment, monthlyRate float64) float64 {
	if len(profits) == 0 {
		return -initialInvestment
	}
	return -initialInvestment + floats.Dot(profits, discountFactors(len(profits), monthlyRate))
}

// discountFactors returns (1+r)^-i for i = 1..n.
func discountFactors(n int, rate float64) []float64 {
	factors := make([]float64, n)
	cum := 1.0
	for i := range factors {
		cum /= 1 + rate
		factors[i] = cum
	}
	return factors
}

// presentValue evaluates a cash-flow series whose first element sits at t=0.
func presentValue(cashFlows []float64, rate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1+rate, float64(t))
	}
	return pv
}

// presentValueDerivative is d(PV)/d(rate) for the same series.
func presentValueDerivative(cashFlows []float64, rate float64) float64 {
	var d float64
	for t, cf := range cashFlows {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return d
}

package valuation

import (
	"encoding/json"
	"math"
)

// IRRStatus tags how an IRR computation ended.
type IRRStatus string

const (
	IRRConverged    IRRStatus = "converged"
	IRRNoInvestment IRRStatus = "no_investment"
	IRRNotConverged IRRStatus = "not_converged"
)

// IRR solver parameters.
const (
	irrTolerance     = 1e-6
	irrMaxIterations = 100
	newtonGuess      = 0.1
	bisectionLow     = -0.99
	bisectionHigh    = 10.0
)

// IRR is the outcome of the IRR solver. AnnualPercent is only meaningful
// when Status is IRRConverged; it marshals to JSON as a number or null.
type IRR struct {
	Status        IRRStatus `json:"status"`
	MonthlyRate   float64   `json:"monthly_rate"`
	AnnualPercent float64   `json:"annual_percent"`
	Method        string    `json:"method,omitempty"` // newton | bisection
}

// Value returns the annualized IRR in percent and whether it exists.
func (r IRR) Value() (float64, bool) {
	return r.AnnualPercent, r.Status == IRRConverged
}

// MarshalJSON keeps the wire contract: a number, or null when unavailable.
func (r IRR) MarshalJSON() ([]byte, error) {
	if v, ok := r.Value(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}

// CalculateIRR solves NPV([-I, p1..pN], r) = 0 for the monthly rate r and
// reports it annualized (r * 12 * 100).
//
// Newton-Raphson runs first. If it leaves the domain or stalls, bisection over
// [-0.99, 10] takes over for up to 100 iterations, accepting |NPV| < 1e-6.
// Bisection assumes NPV decreases in the rate over that bracket, which holds
// for a single outflow followed by inflows.
func CalculateIRR(profits []float64, initialInvestment float64) IRR {
	if initialInvestment <= 0 {
		return IRR{Status: IRRNoInvestment}
	}

	cashFlows := make([]float64, 0, len(profits)+1)
	cashFlows = append(cashFlows, -initialInvestment)
	cashFlows = append(cashFlows, profits...)

	if rate, ok := newtonIRR(cashFlows); ok {
		return converged(rate, "newton")
	}
	if rate, ok := bisectionIRR(cashFlows); ok {
		return converged(rate, "bisection")
	}
	return IRR{Status: IRRNotConverged}
}

func converged(rate float64, method string) IRR {
	return IRR{
		Status:        IRRConverged,
		MonthlyRate:   rate,
		AnnualPercent: rate * 12 * 100,
		Method:        method,
	}
}

func newtonIRR(cashFlows []float64) (float64, bool) {
	rate := newtonGuess
	for i := 0; i < irrMaxIterations; i++ {
		npv := presentValue(cashFlows, rate)
		if math.Abs(npv) < irrTolerance {
			return rate, true
		}

		d := presentValueDerivative(cashFlows, rate)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, false
		}

		next := rate - npv/d
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			return 0, false
		}
		// Step below float resolution: accept only if we are actually on the root.
		if math.Abs(next-rate) < 1e-15 {
			return next, math.Abs(presentValue(cashFlows, next)) < irrTolerance*math.Max(1, residualScale(cashFlows))
		}
		rate = next
	}
	return 0, false
}

func bisectionIRR(cashFlows []float64) (float64, bool) {
	low, high := bisectionLow, bisectionHigh
	for i := 0; i < irrMaxIterations; i++ {
		mid := (low + high) / 2
		npv := presentValue(cashFlows, mid)
		if math.Abs(npv) < irrTolerance {
			return mid, true
		}
		if npv > 0 {
			low = mid
		} else {
			high = mid
		}
	}
	return 0, false
}

// residualScale is a rough magnitude of the series, used to judge float-level residuals.
func residualScale(cashFlows []float64) float64 {
	var m float64
	for _, cf := range cashFlows {
		m = math.Max(m, math.Abs(cf))
	}
	return m * 1e-9
}

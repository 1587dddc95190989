package valuation

import (
	"encoding/json"

	"amplify_roi/pkg/core/projection"
)

// PaybackStatus tags how a payback computation ended.
type PaybackStatus string

const (
	PaybackReached      PaybackStatus = "reached"
	PaybackNoInvestment PaybackStatus = "no_investment"
	PaybackNotReached   PaybackStatus = "not_reached"
)

// Payback is the time needed to recover the initial investment.
// Months is fractional and only meaningful when Status is PaybackReached.
type Payback struct {
	Status PaybackStatus `json:"status"`
	Months float64       `json:"months"`
}

// Value returns the payback period in months and whether it exists.
func (p Payback) Value() (float64, bool) {
	return p.Months, p.Status == PaybackReached
}

// MarshalJSON renders a number, or null when payback is undefined.
func (p Payback) MarshalJSON() ([]byte, error) {
	if v, ok := p.Value(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}

// CalculatePayback finds the first month where cumulative cash flow, starting
// at -initialInvestment, reaches zero, interpolating linearly inside that month.
// A crossing in the very first month reports exactly 1.0.
func CalculatePayback(p []projection.MonthlyProjection, initialInvestment float64) Payback {
	if initialInvestment <= 0 {
		return Payback{Status: PaybackNoInvestment}
	}

	cumulative := -initialInvestment
	for i, proj := range p {
		before := cumulative
		cumulative += proj.Profit
		if cumulative < 0 {
			continue
		}
		if i == 0 {
			return Payback{Status: PaybackReached, Months: 1.0}
		}
		// before < 0 <= cumulative, so Profit > 0 here.
		fraction := -before / proj.Profit
		return Payback{Status: PaybackReached, Months: float64(i) + fraction}
	}

	return Payback{Status: PaybackNotReached}
}

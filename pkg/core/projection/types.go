package projection

// MonthlyProjection is one month of the cash-flow projection.
// Profit = Revenue - Expenses; CumulativeProfit starts at -InitialInvestment.
type MonthlyProjection struct {
	Month            int     `json:"month"` // 1-based
	Revenue          float64 `json:"revenue"`
	COGS             float64 `json:"cogs"`
	Expenses         float64 `json:"expenses"` // includes COGS
	Profit           float64 `json:"profit"`
	CumulativeProfit float64 `json:"cumulative_profit"`
	ROI              float64 `json:"roi"` // percent
}

// Profits extracts the monthly profit series, in month order.
func Profits(p []MonthlyProjection) []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = p[i].Profit
	}
	return out
}

// Revenues extracts the monthly revenue series.
func Revenues(p []MonthlyProjection) []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = p[i].Revenue
	}
	return out
}

// Expenses extracts the monthly total expense series.
func Expenses(p []MonthlyProjection) []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = p[i].Expenses
	}
	return out
}

// COGS extracts the monthly cost-of-goods series.
func COGS(p []MonthlyProjection) []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = p[i].COGS
	}
	return out
}

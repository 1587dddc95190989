package valuation

import (
	"math"

	"amplify_roi/pkg/core/projection"
	"amplify_roi/pkg/models"

	"gonum.org/v1/gonum/floats"
)

// ROIMetrics is the aggregate summary of a projection.
type ROIMetrics struct {
	ROIPercentage   float64 `json:"roi_percentage"`
	ROIRatio        float64 `json:"roi_ratio"`
	NetProfit       float64 `json:"net_profit"`
	GrossProfit     float64 `json:"gross_profit"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalExpenses   float64 `json:"total_expenses"`
	TotalInvestment float64 `json:"total_investment"`
	Payback         Payback `json:"payback_period_months"`
	IRR             IRR     `json:"irr"`
	NPV             float64 `json:"npv"`
}

// Aggregate reduces a monthly projection into ROIMetrics.
//
// ROI is measured against all capital deployed: the initial investment plus
// every expense incurred over the horizon.
func Aggregate(p []projection.MonthlyProjection, initialInvestment float64) ROIMetrics {
	profits := projection.Profits(p)

	totalRevenue := floats.Sum(projection.Revenues(p))
	totalExpenses := floats.Sum(projection.Expenses(p))
	netProfit := floats.Sum(profits)
	grossProfit := totalRevenue - floats.Sum(projection.COGS(p))

	totalInvestment := initialInvestment + totalExpenses
	var roiRatio float64
	if totalInvestment > 0 {
		roiRatio = netProfit / totalInvestment
	}

	return ROIMetrics{
		ROIPercentage:   roiRatio * 100,
		ROIRatio:        roiRatio,
		NetProfit:       netProfit,
		GrossProfit:     grossProfit,
		TotalRevenue:    totalRevenue,
		TotalExpenses:   totalExpenses,
		TotalInvestment: totalInvestment,
		Payback:         CalculatePayback(p, initialInvestment),
		IRR:             CalculateIRR(profits, initialInvestment),
		NPV:             CalculateNPV(profits, initialInvestment, MonthlyDiscountRate(DefaultAnnualDiscountRate)),
	}
}

// CheckFinite reports the first aggregate that is NaN or infinite. Every month
// can be finite while the sum over the horizon overflows.
func (m ROIMetrics) CheckFinite() error {
	totals := []struct {
		name string
		v    float64
	}{
		{"total_revenue", m.TotalRevenue},
		{"total_expenses", m.TotalExpenses},
		{"net_profit", m.NetProfit},
		{"gross_profit", m.GrossProfit},
		{"total_investment", m.TotalInvestment},
		{"roi_percentage", m.ROIPercentage},
		{"npv", m.NPV},
	}
	for _, t := range totals {
		if math.IsNaN(t.v) || math.IsInf(t.v, 0) {
			return models.InvalidInputf("%s is out of range (%v); inputs are too large", t.name, t.v)
		}
	}
	return nil
}

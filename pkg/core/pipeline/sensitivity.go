package pipeline

import (
	"math"
	"sort"

	"amplify_roi/pkg/core/calc"
	"amplify_roi/pkg/models"
)

// DefaultSensitivityDelta flexes each driver by +/-10%.
const DefaultSensitivityDelta = 0.1

// DriverSensitivity is the NPV and ROI response to flexing one driver.
type DriverSensitivity struct {
	Driver    string  `json:"driver"`
	BaseValue float64 `json:"base_value"`
	LowValue  float64 `json:"low_value"`
	HighValue float64 `json:"high_value"`
	LowNPV    float64 `json:"low_npv"`
	HighNPV   float64 `json:"high_npv"`
	LowROI    float64 `json:"low_roi"`
	HighROI   float64 `json:"high_roi"`
	NPVSwing  float64 `json:"npv_swing"` // |HighNPV - LowNPV|
	ROISwing  float64 `json:"roi_swing"`
}

// SensitivityReport lists drivers from the largest NPV swing to the smallest.
type SensitivityReport struct {
	Delta   float64             `json:"delta"`
	BaseNPV float64             `json:"base_npv"`
	BaseROI float64             `json:"base_roi"`
	Drivers []DriverSensitivity `json:"drivers"`
}

type driver struct {
	name string
	base func(in calc.CalculationInput) float64
	set  func(req *models.CalculationRequest, v float64)
	max  float64 // upper bound for the flexed value, 0 for none
}

var sensitivityDrivers = []driver{
	{
		name: "monthly_revenue",
		base: func(in calc.CalculationInput) float64 { return in.MonthlyRevenue },
		set:  func(req *models.CalculationRequest, v float64) { req.MonthlyRevenue = v },
	},
	{
		name: "gross_margin",
		base: func(in calc.CalculationInput) float64 { return in.GrossMargin },
		set:  func(req *models.CalculationRequest, v float64) { req.GrossMargin = models.Float(v) },
		max:  1,
	},
	{
		name: "marketing_spend",
		base: func(in calc.CalculationInput) float64 { return in.MarketingSpend },
		set:  func(req *models.CalculationRequest, v float64) { req.MarketingSpend = models.Float(v) },
	},
	{
		name: "operating_expenses",
		base: func(in calc.CalculationInput) float64 { return in.OperatingExpenses },
		set:  func(req *models.CalculationRequest, v float64) { req.OperatingExpenses = models.Float(v) },
	},
	{
		name: "initial_investment",
		base: func(in calc.CalculationInput) float64 { return in.InitialInvestment },
		set:  func(req *models.CalculationRequest, v float64) { req.InitialInvestment = v },
	},
}

// Sensitivity flexes each key driver by +/-delta around its resolved value
// (defaults included) and records the NPV and ROI at both ends. A delta of 0
// means DefaultSensitivityDelta.
func (c *Calculator) Sensitivity(req models.CalculationRequest, country models.CountryData, scenario models.ScenarioData, delta float64) (*SensitivityReport, error) {
	if delta == 0 {
		delta = DefaultSensitivityDelta
	}
	if delta < 0 || delta >= 1 {
		return nil, models.InvalidInputf("sensitivity delta must be within (0,1), got %v", delta)
	}

	base, err := c.run(req, country, scenario)
	if err != nil {
		return nil, err
	}

	report := &SensitivityReport{
		Delta:   delta,
		BaseNPV: base.metrics.NPV,
		BaseROI: base.metrics.ROIPercentage,
		Drivers: make([]DriverSensitivity, 0, len(sensitivityDrivers)),
	}

	for _, d := range sensitivityDrivers {
		v := d.base(base.input)
		low, high := v*(1-delta), v*(1+delta)
		if d.max > 0 {
			high = math.Min(high, d.max)
		}

		lowRun, err := c.flex(req, d, low, country, scenario)
		if err != nil {
			return nil, err
		}
		highRun, err := c.flex(req, d, high, country, scenario)
		if err != nil {
			return nil, err
		}

		report.Drivers = append(report.Drivers, DriverSensitivity{
			Driver:    d.name,
			BaseValue: v,
			LowValue:  low,
			HighValue: high,
			LowNPV:    lowRun.metrics.NPV,
			HighNPV:   highRun.metrics.NPV,
			LowROI:    lowRun.metrics.ROIPercentage,
			HighROI:   highRun.metrics.ROIPercentage,
			NPVSwing:  math.Abs(highRun.metrics.NPV - lowRun.metrics.NPV),
			ROISwing:  math.Abs(highRun.metrics.ROIPercentage - lowRun.metrics.ROIPercentage),
		})
	}

	sort.SliceStable(report.Drivers, func(i, j int) bool {
		return report.Drivers[i].NPVSwing > report.Drivers[j].NPVSwing
	})
	return report, nil
}

func (c *Calculator) flex(req models.CalculationRequest, d driver, v float64, country models.CountryData, scenario models.ScenarioData) (stages, error) {
	flexed := req
	d.set(&flexed, v)
	return c.run(flexed, country, scenario)
}

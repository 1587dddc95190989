package pipeline

import (
	"fmt"

	"amplify_roi/pkg/models"
)

// WhatIfResult is the outcome of one variation. Exactly one of Result and
// Error is set.
type WhatIfResult struct {
	Label     string                  `json:"label"`
	Overrides models.RequestOverrides `json:"overrides"`
	Result    *Result                 `json:"result,omitempty"`
	Error     string                  `json:"error,omitempty"`

	// Differences against the base calculation.
	ROIDelta       float64 `json:"roi_delta"`
	NetProfitDelta float64 `json:"net_profit_delta"`
	NPVDelta       float64 `json:"npv_delta"`
}

// WhatIfAnalysis pairs the base calculation with its variations, in input order.
type WhatIfAnalysis struct {
	Base       *Result        `json:"base"`
	Variations []WhatIfResult `json:"variations"`
}

// WhatIf computes the base request and then each variation laid over it.
// An invalid base fails the whole call; an invalid variation only marks its
// own entry.
func (c *Calculator) WhatIf(base models.CalculationRequest, variations []models.RequestOverrides, country models.CountryData, scenario models.ScenarioData) (*WhatIfAnalysis, error) {
	baseResult, err := c.Compute(base, country, scenario)
	if err != nil {
		return nil, err
	}

	out := &WhatIfAnalysis{
		Base:       baseResult,
		Variations: make([]WhatIfResult, 0, len(variations)),
	}

	for i, v := range variations {
		label := v.Label
		if label == "" {
			label = fmt.Sprintf("Scenario %d", i+1)
		}
		entry := WhatIfResult{Label: label, Overrides: v}

		r, err := c.Compute(v.Apply(base), country, scenario)
		if err != nil {
			c.log.Debug().Err(err).Str("label", label).Msg("what-if variation rejected")
			entry.Error = err.Error()
			out.Variations = append(out.Variations, entry)
			continue
		}

		entry.Result = r
		entry.ROIDelta = r.Metrics.ROIPercentage - baseResult.Metrics.ROIPercentage
		entry.NetProfitDelta = r.Metrics.NetProfit - baseResult.Metrics.NetProfit
		entry.NPVDelta = r.Metrics.NPV - baseResult.Metrics.NPV
		out.Variations = append(out.Variations, entry)
	}

	return out, nil
}

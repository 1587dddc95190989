package analysis

import (
	"fmt"
	"strings"

	"amplify_roi/pkg/models"
)

// Thresholds used by the insight, recommendation and risk rules.
const (
	excellentROI = 100.0
	strongROI    = 50.0
	moderateROI  = 20.0

	fastPayback       = 6.0
	reasonablePayback = 12.0
	slowPayback       = 18.0

	highMargin   = 0.7
	targetMargin = 0.5
	lowMargin    = 0.3

	highGrowth       = 0.1
	minGrowth        = 0.05
	aggressiveGrowth = 0.2

	minCLVToCAC = 3.0
	maxCLVToCAC = 5.0

	highChurn        = 0.1
	highInflation    = 0.05
	capitalIntensity = 24.0 // months of revenue
)

// stableCurrencies are treated as free of currency risk.
var stableCurrencies = map[string]bool{"USD": true, "EUR": true, "GBP": true}

// Insights describes the headline results in plain language. Exactly one ROI
// line is always present and the country note is always last.
func Insights(s Subject) []string {
	var out []string
	roi := s.Metrics.ROIPercentage

	switch {
	case roi > excellentROI:
		out = append(out, fmt.Sprintf("Excellent ROI of %.1f%% indicates a highly profitable investment.", roi))
	case roi > strongROI:
		out = append(out, fmt.Sprintf("Strong ROI of %.1f%% shows good investment potential.", roi))
	case roi > moderateROI:
		out = append(out, fmt.Sprintf("Moderate ROI of %.1f%% suggests acceptable returns.", roi))
	default:
		out = append(out, fmt.Sprintf("Low ROI of %.1f%% may indicate room for optimization.", roi))
	}

	if months, ok := s.Metrics.Payback.Value(); ok {
		switch {
		case months < fastPayback:
			out = append(out, fmt.Sprintf("Fast payback period of %.1f months indicates quick capital recovery.", months))
		case months < reasonablePayback:
			out = append(out, fmt.Sprintf("Reasonable payback period of %.1f months.", months))
		default:
			out = append(out, fmt.Sprintf("Extended payback period of %.1f months requires patience.", months))
		}
	}

	gm := s.Input.GrossMargin
	if gm > highMargin {
		out = append(out, "High gross margin suggests strong pricing power and efficient operations.")
	} else if gm < lowMargin {
		out = append(out, "Low gross margin indicates potential for cost optimization or pricing adjustments.")
	}

	g := s.Input.GrowthRate
	if g > highGrowth {
		out = append(out, "High growth rate projections amplify long-term returns significantly.")
	} else if g < 0 {
		out = append(out, "Negative growth projections pose risks to long-term profitability.")
	}

	corporate := models.Value(s.Country.TaxRates.CorporateTax) * 100
	out = append(out, fmt.Sprintf("Operating in %s with %.1f%% corporate tax rate affects after-tax returns.", s.Country.Name, corporate))

	return out
}

// Recommendations lists actions suggested by the results. Each rule fires
// independently.
func Recommendations(s Subject) []string {
	out := []string{}

	if s.Metrics.ROIPercentage < moderateROI {
		out = append(out,
			"Consider reducing operating expenses or increasing revenue to improve ROI.",
			"Evaluate pricing strategy to maximize profit margins.",
		)
	}

	if s.Input.GrossMargin < targetMargin {
		out = append(out, "Focus on improving gross margins through cost reduction or premium pricing.")
	}

	if s.Input.GrowthRate < minGrowth {
		out = append(out, "Invest in marketing and product development to accelerate growth.")
	}

	if ratio, ok := s.Input.CLVToCAC(); ok {
		if ratio < minCLVToCAC {
			out = append(out, "Improve customer lifetime value or reduce acquisition costs to achieve 3:1 CLV:CAC ratio.")
		} else if ratio > maxCLVToCAC {
			out = append(out, "Consider increasing marketing spend to accelerate growth with strong unit economics.")
		}
	}

	if months, ok := s.Metrics.Payback.Value(); ok && months > slowPayback {
		out = append(out, "Focus on faster customer acquisition and revenue recognition to improve cash flow.")
	}

	model := strings.ToLower(s.BusinessType + " " + s.Scenario)
	if strings.Contains(model, "subscription") {
		out = append(out, "Focus on reducing churn rate to maximize subscription value.")
	} else if strings.Contains(model, "ecommerce") {
		out = append(out, "Optimize conversion rates and average order value for better unit economics.")
	}

	return out
}

// RiskFactors flags structural risks in the assumptions and the country.
func RiskFactors(s Subject) []string {
	out := []string{}
	in := s.Input

	if in.InitialInvestment > in.MonthlyRevenue*capitalIntensity {
		out = append(out, "High initial investment relative to revenue creates capital intensity risk.")
	}
	if in.GrossMargin < lowMargin {
		out = append(out, "Low gross margins provide little buffer for cost increases.")
	}
	if in.GrowthRate > aggressiveGrowth {
		out = append(out, "Aggressive growth assumptions may not materialize in competitive markets.")
	}
	if in.ChurnRate > highChurn {
		out = append(out, "High churn rate poses risk to customer retention and CLV calculations.")
	}

	if ei := s.Country.EconomicIndicators; ei != nil && ei.Inflation > highInflation {
		out = append(out, fmt.Sprintf("High inflation rate of %.1f%% may increase operational costs.", ei.Inflation*100))
	}

	if !stableCurrencies[s.Country.Currency.Code] {
		out = append(out, "Currency volatility may affect international business operations.")
	}

	return out
}

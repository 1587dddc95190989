package analysis

var industryBenchmarks = map[string]map[string]float64{
	"saas": {
		"average_roi":          150.0,
		"average_gross_margin": 0.80,
		"average_churn_rate":   0.05,
		"average_cac_payback":  12.0,
	},
	"ecommerce": {
		"average_roi":             80.0,
		"average_gross_margin":    0.45,
		"average_conversion_rate": 0.025,
		"average_aov":             75.0,
	},
	"startup": {
		"average_roi":          200.0,
		"average_gross_margin": 0.70,
		"average_burn_rate":    50000.0,
		"average_growth_rate":  0.15,
	},
}

// Benchmarks returns the static industry figures for a business type id, or
// nil when none are known. The returned map is a copy.
func Benchmarks(businessType string) map[string]float64 {
	table, ok := industryBenchmarks[businessType]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

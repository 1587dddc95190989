package projection

import "math"

// MinorUnitFloor is the smallest revenue used as the per-month ROI denominator
// when there is no initial investment. It is one whole currency unit regardless
// of the currency's scale, which keeps month-level ROI finite for tiny revenues.
const MinorUnitFloor = 1.0

// growthFactor is (1+g)^(month-1): month 1 is always the base month.
func growthFactor(growthRate float64, month int) float64 {
	return math.Pow(1+growthRate, float64(month-1))
}

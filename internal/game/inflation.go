package game

import mathrand "math/rand"

// nextPriceLevel advances the bounded inflation random walk: a uniform step
// with a fair sign, clamped into [floor, cap]. The realized delta can be
// smaller than the drawn step when the clamp bites, or exactly zero at a
// bound.
func nextPriceLevel(r Rules, prev float64, rng *mathrand.Rand) (next, delta float64) {
	step := r.InflationStepMin + rng.Float64()*(r.InflationStepMax-r.InflationStepMin)
	if rng.Float64() < 0.5 {
		step = -step
	}
	next = clampFloat(prev+step, r.InflationFloor, r.InflationCap)
	return next, next - prev
}

// escalateFixedCost applies a realized inflation delta to next month's
// mandatory living cost, never letting it go negative.
func escalateFixedCost(cost int64, delta float64) int64 {
	next := mulMicros(cost, 1+delta)
	if next < 0 {
		return 0
	}
	return next
}

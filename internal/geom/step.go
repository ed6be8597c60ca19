package geom

import "math"

// stepMultipliers are the accepted "round" tick multipliers per decade.
var stepMultipliers = [...]float64{1, 2, 2.5, 5, 10}

// NiceStep picks a human-friendly tick interval for the given numeric range:
// the multiple of 1/2/2.5/5/10 times a power of ten whose magnitude is
// closest to rng/maxTicks. Non-positive or non-finite ranges fall back to 1.
func NiceStep(rng float64, maxTicks int) float64 {
	if maxTicks < 1 {
		maxTicks = 1
	}
	target := rng / float64(maxTicks)
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return 1
	}

	pow := math.Pow(10, math.Floor(math.Log10(target)))
	best := stepMultipliers[0] * pow
	for _, m := range stepMultipliers[1:] {
		if math.Abs(m*pow-target) < math.Abs(best-target) {
			best = m * pow
		}
	}
	return best
}

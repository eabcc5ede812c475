package sim

import (
	"math"
	"math/rand"
)

// rateDecay shapes the per-second budget distribution: budget = max·(1 − E/rateDecay)
// with E ~ Exp(1), so most seconds run close to the cap and a tail runs much lower.
const rateDecay = 3.0

// MillisPerSecond is the number of ticks in one simulated second.
const MillisPerSecond = 1000

// SampleRequestBudget draws the request budget for one simulated second,
// bounded above by max. Draws below 1 are discarded and redrawn.
// max <= 0 means unlimited and returns -1; max == 1 always returns 1.
func SampleRequestBudget(rng *rand.Rand, max int) int {
	if max <= 0 {
		return -1
	}
	if max == 1 {
		return 1
	}
	for {
		e := -math.Log(1 - rng.Float64())
		budget := int(float64(max) - e/rateDecay*float64(max))
		if budget >= 1 {
			return budget
		}
	}
}

// DistributeBudget splits budget over n processes one unit at a time starting
// from index 0: each gets budget/n, and the first budget%n get one more.
// A negative budget (unlimited) yields -1 for every process.
func DistributeBudget(budget, n int) []int {
	shares := make([]int, n)
	if n == 0 {
		return shares
	}
	if budget < 0 {
		for i := range shares {
			shares[i] = -1
		}
		return shares
	}
	base, rem := budget/n, budget%n
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
	}
	return shares
}

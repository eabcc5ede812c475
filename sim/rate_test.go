package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRequestBudget_Unlimited(t *testing.T) {
	rng := newTestRand(1)
	assert.Equal(t, -1, SampleRequestBudget(rng, 0))
	assert.Equal(t, -1, SampleRequestBudget(rng, -5))
}

func TestSampleRequestBudget_CapOfOne_AlwaysOne(t *testing.T) {
	rng := newTestRand(1)
	for i := 0; i < 100; i++ {
		require.Equal(t, 1, SampleRequestBudget(rng, 1))
	}
}

func TestSampleRequestBudget_BoundedAndSkewedTowardCap(t *testing.T) {
	// GIVEN a cap of 100
	rng := newTestRand(7)
	const max, draws = 100, 20_000

	sum := 0
	for i := 0; i < draws; i++ {
		b := SampleRequestBudget(rng, max)
		require.GreaterOrEqual(t, b, 1)
		require.LessOrEqual(t, b, max)
		sum += b
	}

	// THEN the mean sits near max·(1 − E[X | X ≤ 2.97]/rateDecay), X ~ Exp(1), less truncation
	mean := float64(sum) / draws
	assert.InDelta(t, 71.5, mean, 2.0)
}

func TestSampleRequestBudget_Deterministic(t *testing.T) {
	a, b := newTestRand(3), newTestRand(3)
	for i := 0; i < 50; i++ {
		require.Equal(t, SampleRequestBudget(a, 40), SampleRequestBudget(b, 40))
	}
}

func TestDistributeBudget(t *testing.T) {
	tests := []struct {
		name   string
		budget int
		n      int
		want   []int
	}{
		{"even", 6, 3, []int{2, 2, 2}},
		{"remainder to earliest", 7, 3, []int{3, 2, 2}},
		{"fewer than processes", 2, 3, []int{1, 1, 0}},
		{"zero", 0, 2, []int{0, 0}},
		{"unlimited", -1, 2, []int{-1, -1}},
		{"no processes", 5, 0, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DistributeBudget(tt.budget, tt.n))
		})
	}
}

func TestDistributeBudget_SharesSumToBudget(t *testing.T) {
	for budget := 0; budget < 50; budget++ {
		for n := 1; n < 12; n++ {
			sum := 0
			shares := DistributeBudget(budget, n)
			for _, s := range shares {
				require.True(t, s == budget/n || s == budget/n+1)
				sum += s
			}
			require.Equal(t, budget, sum)
		}
	}
}

package distribution

import (
	"math"
	"sort"
)

// Apportionment is the result of splitting an integer total across weighted entities
type Apportionment struct {
	// Shares are the exact proportional shares before rounding
	Shares []float64

	// Awards are the integer awards; they always sum to the requested total
	// when at least one entity has positive weight
	Awards []int
}

// LargestRemainder splits total into integer awards proportional to weights (Hamilton's method).
// Each entity gets the floor of its share, then the leftover units go one each to the entities
// with the largest fractional remainders. Ties keep input order.
// Negative and NaN weights count as zero and infinite weights are capped at the largest float.
// If no weight is positive, every award is zero.
func LargestRemainder(weights []float64, total int) Apportionment {
	n := len(weights)
	result := Apportionment{
		Shares: make([]float64, n),
		Awards: make([]int, n),
	}
	if n == 0 || total <= 0 {
		return result
	}

	clipped := make([]float64, n)
	maxWeight := 0.0
	for i, w := range weights {
		switch {
		case math.IsNaN(w) || w < 0:
			w = 0
		case math.IsInf(w, 1):
			w = math.MaxFloat64
		}
		clipped[i] = w
		maxWeight = math.Max(maxWeight, w)
	}

	sum := pairwiseSum(clipped)
	if math.IsInf(sum, 1) || maxWeight > math.MaxFloat64/float64(total) {
		// rescale so the sum and total*weight stay finite; proportions are unchanged
		for i := range clipped {
			clipped[i] /= maxWeight
		}
		sum = pairwiseSum(clipped)
	}
	if sum <= 0 {
		return result
	}

	allocated := 0
	for i, w := range clipped {
		share := float64(total) * w / sum
		result.Shares[i] = share
		result.Awards[i] = int(math.Floor(share))
		allocated += result.Awards[i]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	fraction := func(i int) float64 {
		return result.Shares[i] - float64(result.Awards[i])
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fraction(order[a]) > fraction(order[b])
	})

	remainder := total - allocated

	// remainder is normally in [0, n); the loops also absorb float drift so the total is exact
	for k := 0; remainder > 0; k++ {
		result.Awards[order[k%n]]++
		remainder--
	}
	for k := 0; remainder < 0; k++ {
		i := order[n-1-k%n]
		if result.Awards[i] > 0 {
			result.Awards[i]--
			remainder++
		}
	}

	return result
}

// EqualSplit divides total across n entities with equal weight.
// Every entity gets floor(total/n) and the first total mod n entities get one more.
func EqualSplit(total, n int) []int {
	if n <= 0 {
		return nil
	}

	awards := make([]int, n)
	if total <= 0 {
		return awards
	}

	base := total / n
	extra := total % n
	for i := range awards {
		awards[i] = base
		if i < extra {
			awards[i]++
		}
	}
	return awards
}

// pairwiseSum adds values by recursive halving to limit accumulated rounding error
func pairwiseSum(values []float64) float64 {
	switch len(values) {
	case 0:
		return 0
	case 1:
		return values[0]
	case 2:
		return values[0] + values[1]
	}
	mid := len(values) / 2
	return pairwiseSum(values[:mid]) + pairwiseSum(values[mid:])
}

package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// rank assigns 1-based ranks to the pooled values, averaging ranks over
// ties. It also returns the tie term Σ(t³−t) needed for variance
// corrections.
func rank(values []float64) (ranks []float64, tieTerm float64) {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Average rank for the tie group spanning positions i..j.
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		t := float64(j - i + 1)
		if t > 1 {
			tieTerm += t*t*t - t
		}
		i = j + 1
	}
	return ranks, tieTerm
}

// MannWhitneyU runs the two-sided Mann-Whitney U test using the
// tie-corrected normal approximation with continuity correction. Returns
// the U statistic of the first sample and the p-value.
func MannWhitneyU(x, y []float64) (u, p float64) {
	n1, n2 := float64(len(x)), float64(len(y))
	pooled := make([]float64, 0, len(x)+len(y))
	pooled = append(pooled, x...)
	pooled = append(pooled, y...)

	ranks, tieTerm := rank(pooled)

	var r1 float64
	for i := range x {
		r1 += ranks[i]
	}
	u = r1 - n1*(n1+1)/2

	mean := n1 * n2 / 2
	ntot := n1 + n2
	variance := n1 * n2 / 12 * ((ntot + 1) - tieTerm/(ntot*(ntot-1)))
	if variance <= 0 {
		return u, 1
	}

	diff := u - mean
	// Continuity correction toward the mean.
	switch {
	case diff > 0:
		diff -= 0.5
	case diff < 0:
		diff += 0.5
	}
	z := diff / math.Sqrt(variance)

	p = 2 * stdNormal.Survival(math.Abs(z))
	if p > 1 {
		p = 1
	}
	return u, p
}

// KruskalWallis runs the Kruskal-Wallis H test across k groups with tie
// correction. Returns the H statistic and the chi-squared p-value with
// k-1 degrees of freedom.
func KruskalWallis(groups [][]float64) (h, p float64) {
	var total int
	for _, g := range groups {
		total += len(g)
	}
	pooled := make([]float64, 0, total)
	for _, g := range groups {
		pooled = append(pooled, g...)
	}

	ranks, tieTerm := rank(pooled)

	ntot := float64(total)
	var offset int
	for _, g := range groups {
		var rsum float64
		for i := range g {
			rsum += ranks[offset+i]
		}
		offset += len(g)
		h += rsum * rsum / float64(len(g))
	}
	h = 12/(ntot*(ntot+1))*h - 3*(ntot+1)

	// Tie correction.
	correction := 1 - tieTerm/(ntot*ntot*ntot-ntot)
	if correction <= 0 {
		return 0, 1
	}
	h /= correction

	df := float64(len(groups) - 1)
	chi2 := distuv.ChiSquared{K: df}
	return h, chi2.Survival(h)
}

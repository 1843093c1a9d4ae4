package stats

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OneWayANOVA runs a one-way analysis of variance across k groups.
// Returns the F statistic and its p-value with (k-1, N-k) degrees of
// freedom.
func OneWayANOVA(groups [][]float64) (f, p float64) {
	var total int
	var grandSum float64
	for _, g := range groups {
		total += len(g)
		for _, v := range g {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(total)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		mean := stat.Mean(g, nil)
		d := mean - grandMean
		ssBetween += float64(len(g)) * d * d
		for _, v := range g {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	dfBetween := float64(len(groups) - 1)
	dfWithin := float64(total - len(groups))
	if dfWithin <= 0 || ssWithin == 0 {
		return 0, 1
	}

	f = (ssBetween / dfBetween) / (ssWithin / dfWithin)
	dist := distuv.F{D1: dfBetween, D2: dfWithin}
	return f, dist.Survival(f)
}

// Package stats provides the normality test, the two- and k-sample
// hypothesis tests, and the comparison engine that selects between them.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ShapiroWilk tests the sample for normality using Royston's 1995
// approximation (AS R94), valid for 3 <= n <= 5000. It returns the W
// statistic and the p-value of the null hypothesis that the data are
// normally distributed.
func ShapiroWilk(values []float64) (w, p float64, err error) {
	n := len(values)
	if n < 3 {
		return 0, 0, fmt.Errorf("shapiro-wilk needs at least 3 values, got %d", n)
	}
	if n > 5000 {
		return 0, 0, fmt.Errorf("shapiro-wilk supports at most 5000 values, got %d", n)
	}

	x := make([]float64, n)
	copy(x, values)
	sort.Float64s(x)

	if x[n-1] == x[0] {
		return 0, 0, fmt.Errorf("shapiro-wilk requires non-constant data")
	}

	// Expected normal order statistics (Blom approximation).
	m := make([]float64, n)
	var ssm float64
	for i := 0; i < n; i++ {
		m[i] = stdNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		ssm += m[i] * m[i]
	}

	// Weights a_i per Royston's polynomial corrections for the two
	// (for n > 5) outermost coefficients.
	a := make([]float64, n)
	rsn := 1 / math.Sqrt(float64(n))
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		a[2] = -a[0]
	} else {
		cn := m[n-1] / math.Sqrt(ssm)
		an := cn + poly(rsn, 0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056)
		if n <= 5 {
			phi := (ssm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
			for i := 1; i < n-1; i++ {
				a[i] = m[i] / math.Sqrt(phi)
			}
			a[n-1] = an
			a[0] = -an
		} else {
			cn1 := m[n-2] / math.Sqrt(ssm)
			an1 := cn1 + poly(rsn, 0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633)
			phi := (ssm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
				(1 - 2*an*an - 2*an1*an1)
			for i := 2; i < n-2; i++ {
				a[i] = m[i] / math.Sqrt(phi)
			}
			a[n-1] = an
			a[n-2] = an1
			a[0] = -an
			a[1] = -an1
		}
	}

	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	var num, den float64
	for i, v := range x {
		num += a[i] * v
		den += (v - mean) * (v - mean)
	}
	w = num * num / den
	if w > 1 {
		w = 1
	}

	// p-value of W via Royston's normalizing transformations.
	switch {
	case n == 3:
		p = 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
	case n <= 11:
		fn := float64(n)
		gamma := 0.459*fn - 2.273
		wt := -math.Log(gamma - math.Log(1-w))
		mu := poly(fn, 0.5440, -0.39978, 0.025054, -0.0006714)
		sigma := math.Exp(poly(fn, 1.3822, -0.77857, 0.062767, -0.0020322))
		p = stdNormal.Survival((wt - mu) / sigma)
	default:
		lnn := math.Log(float64(n))
		wt := math.Log(1 - w)
		mu := poly(lnn, -1.5861, -0.31082, -0.083751, 0.0038915)
		sigma := math.Exp(poly(lnn, -0.4803, -0.082676, 0.0030302))
		p = stdNormal.Survival((wt - mu) / sigma)
	}

	return w, p, nil
}

// poly evaluates c0 + c1*x + c2*x² + ... .
func poly(x float64, coeffs ...float64) float64 {
	var sum, pow float64
	pow = 1
	for _, c := range coeffs {
		sum += c * pow
		pow *= x
	}
	return sum
}

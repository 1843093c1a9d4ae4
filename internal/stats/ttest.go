package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchTTest runs the two-sample t-test without assuming equal variances,
// with Welch-Satterthwaite degrees of freedom. Returns the t statistic
// and the two-sided p-value.
func WelchTTest(x, y []float64) (t, p float64) {
	nx, ny := float64(len(x)), float64(len(y))
	mx, my := stat.Mean(x, nil), stat.Mean(y, nil)
	vx, vy := stat.Variance(x, nil), stat.Variance(y, nil)

	sex := vx / nx
	sey := vy / ny
	se := math.Sqrt(sex + sey)
	if se == 0 {
		// Two constant, equal-variance-zero samples. Identical means
		// carry no evidence against the null.
		return 0, 1
	}

	t = (mx - my) / se
	df := (sex + sey) * (sex + sey) /
		(sex*sex/(nx-1) + sey*sey/(ny-1))

	return t, twoSidedT(t, df)
}

// PooledTTest runs the classical Student's t-test assuming equal
// variances.
func PooledTTest(x, y []float64) (t, p float64) {
	nx, ny := float64(len(x)), float64(len(y))
	mx, my := stat.Mean(x, nil), stat.Mean(y, nil)
	vx, vy := stat.Variance(x, nil), stat.Variance(y, nil)

	df := nx + ny - 2
	pooled := ((nx-1)*vx + (ny-1)*vy) / df
	se := math.Sqrt(pooled * (1/nx + 1/ny))
	if se == 0 {
		return 0, 1
	}

	t = (mx - my) / se
	return t, twoSidedT(t, df)
}

func twoSidedT(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	if p > 1 {
		p = 1
	}
	return p
}

package geometry

import "math"

// EllipseFit describes the second-moment ellipse of a closed polygon: the
// ellipse with the same normalized central moments as the enclosed region.
type EllipseFit struct {
	Center Point2D
	// Major and Minor are full axis lengths, Major >= Minor.
	Major float64
	Minor float64
	// OrientationDeg is the angle of the major axis measured from the
	// image x-axis, in degrees, normalized to [0, 180).
	OrientationDeg float64
}

// FitEllipse computes the second-moment ellipse of a closed polygon using
// Green's theorem for the area integrals, so both dense contours and
// 4-corner box polygons are handled uniformly. Returns false when the
// polygon encloses no area.
func FitEllipse(polygon []Point2D) (EllipseFit, bool) {
	a := signedArea(polygon)
	if a == 0 {
		return EllipseFit{}, false
	}

	c := Centroid(polygon)

	// Area integrals of x², y² and xy over the polygon interior.
	var ixx, iyy, ixy float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y
		cross := xi*yj - xj*yi

		iyy += (xi*xi + xi*xj + xj*xj) * cross
		ixx += (yi*yi + yi*yj + yj*yj) * cross
		ixy += (xi*yj + 2*xi*yi + 2*xj*yj + xj*yi) * cross
	}
	iyy /= 12
	ixx /= 12
	ixy /= 24

	// Normalized central second moments (divide by signed area so the
	// result is orientation-independent).
	uxx := iyy/a - c.X*c.X
	uyy := ixx/a - c.Y*c.Y
	uxy := ixy/a - c.X*c.Y

	// Eigenvalues of the covariance matrix [[uxx uxy] [uxy uyy]].
	common := (uxx + uyy) / 2
	diff := math.Sqrt(((uxx-uyy)/2)*((uxx-uyy)/2) + uxy*uxy)
	l1 := common + diff
	l2 := common - diff
	if l2 < 0 {
		l2 = 0
	}

	// Full axis length of the equivalent ellipse is 4*sqrt(eigenvalue):
	// an ellipse with semi-axis s has normalized second moment s²/4.
	major := 4 * math.Sqrt(l1)
	minor := 4 * math.Sqrt(l2)

	theta := 0.5 * math.Atan2(2*uxy, uxx-uyy)
	deg := theta * 180 / math.Pi
	for deg < 0 {
		deg += 180
	}
	for deg >= 180 {
		deg -= 180
	}

	return EllipseFit{
		Center:         c,
		Major:          major,
		Minor:          minor,
		OrientationDeg: deg,
	}, true
}

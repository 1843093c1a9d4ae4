package geometry

import "math"

// Area returns the unsigned area enclosed by the polygon (shoelace formula).
// The polygon is treated as closed; the last vertex connects back to the first.
func Area(polygon []Point2D) float64 {
	return math.Abs(signedArea(polygon))
}

// signedArea returns the signed shoelace area: positive for counter-clockwise
// vertex order, negative for clockwise.
func signedArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return sum / 2
}

// Perimeter returns the length of the closed polygon boundary.
func Perimeter(polygon []Point2D) float64 {
	if len(polygon) < 2 {
		return 0
	}
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		sum += polygon[i].Distance(polygon[(i+1)%n])
	}
	return sum
}

// Centroid returns the area centroid of the closed polygon. For degenerate
// polygons (zero area) it falls back to the vertex average.
func Centroid(polygon []Point2D) Point2D {
	a := signedArea(polygon)
	if a == 0 {
		var sx, sy float64
		for _, p := range polygon {
			sx += p.X
			sy += p.Y
		}
		n := float64(len(polygon))
		if n == 0 {
			return Point2D{}
		}
		return Point2D{X: sx / n, Y: sy / n}
	}

	var cx, cy float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
		cx += (polygon[i].X + polygon[j].X) * cross
		cy += (polygon[i].Y + polygon[j].Y) * cross
	}
	return Point2D{X: cx / (6 * a), Y: cy / (6 * a)}
}

// ConvexHull computes the convex hull of a set of points using Graham scan.
// Returns the points forming the convex hull in counter-clockwise order.
func ConvexHull(points []Point2D) []Point2D {
	if len(points) < 3 {
		return points
	}

	// Make a copy to avoid modifying the input
	pts := make([]Point2D, len(points))
	copy(pts, points)

	// Find the point with lowest y (and leftmost if tied)
	lowest := 0
	for i := 1; i < len(pts); i++ {
		if pts[i].Y < pts[lowest].Y ||
			(pts[i].Y == pts[lowest].Y && pts[i].X < pts[lowest].X) {
			lowest = i
		}
	}

	// Swap to front
	pts[0], pts[lowest] = pts[lowest], pts[0]
	pivot := pts[0]

	// Sort by polar angle with respect to pivot
	sorted := make([]Point2D, len(pts)-1)
	copy(sorted, pts[1:])

	// Sort by angle (bubble sort for simplicity)
	for i := 0; i < len(sorted)-1; i++ {
		for j := i + 1; j < len(sorted); j++ {
			cross := crossProduct(pivot, sorted[i], sorted[j])
			if cross < 0 || (cross == 0 && distSq(pivot, sorted[i]) > distSq(pivot, sorted[j])) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}

	// Build hull
	hull := []Point2D{pivot}
	for _, p := range sorted {
		for len(hull) > 1 && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull
}

// Dedupe removes consecutive duplicate vertices (and a duplicated closing
// vertex) from a polygon. Detector backends may emit closed rings where the
// first point repeats at the end.
func Dedupe(polygon []Point2D) []Point2D {
	if len(polygon) == 0 {
		return polygon
	}
	out := polygon[:0:0]
	for _, p := range polygon {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// distSq computes the squared distance between two points.
func distSq(a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// core/coverage/simplify.go
package coverage

import "math"

// Simplify thins a coordinate polyline with Visvalingam-Wyatt area
// elimination, keeping ratio of the original points (at least the two
// endpoints).
func Simplify(points []Point, ratio float64) []Point {
	return SimplifyTo(points, int(float64(len(points))*ratio))
}

// SimplifyTo reduces the polyline to n points by repeatedly removing
// the interior point whose triangle with its neighbours has the
// smallest area. Endpoints are always kept.
func SimplifyTo(points []Point, n int) []Point {
	if n >= len(points) {
		return append([]Point(nil), points...)
	}
	if n < 2 {
		n = 2
	}

	// Doubly linked indices over the original slice.
	prev := make([]int, len(points))
	next := make([]int, len(points))
	alive := len(points)
	for i := range points {
		prev[i] = i - 1
		next[i] = i + 1
	}

	removed := make([]bool, len(points))

	for alive > n {
		minIdx := -1
		minArea := math.Inf(1)

		for i := next[0]; i > 0 && i < len(points)-1; i = next[i] {
			a := triangleArea(points[prev[i]], points[i], points[next[i]])
			if a < minArea {
				minArea = a
				minIdx = i
			}
		}

		if minIdx < 0 {
			break
		}

		removed[minIdx] = true
		next[prev[minIdx]] = next[minIdx]
		if next[minIdx] < len(points) {
			prev[next[minIdx]] = prev[minIdx]
		}
		alive--
	}

	out := make([]Point, 0, alive)
	for i, p := range points {
		if !removed[i] {
			out = append(out, p)
		}
	}
	return out
}

func triangleArea(a, b, c Point) float64 {
	return math.Abs(float64(
		a[0]*(b[1]-c[1])+b[0]*(c[1]-a[1])+c[0]*(a[1]-b[1]),
	)) / 2
}

// core/coverage/coordinates.go
package coverage

import "sort"

// Point is one (position, depth) coordinate.
type Point [2]int

// maxPoints is the largest coordinate set stored without
// simplification.
const maxPoints = 100

// simplifyRatio is the share of points kept when a coordinate set is
// simplified.
const simplifyRatio = 0.4

// ToCoordinates collapses a depth vector into the coordinates of its
// breakpoints: the start, both sides of every depth change, and the
// final position. Sets larger than 100 points are thinned with
// Visvalingam-Wyatt simplification keeping 40% of the points.
func ToCoordinates(depth []int) []Point {
	if len(depth) == 0 {
		return nil
	}

	seen := map[Point]struct{}{
		{0, depth[0]}: {},
	}

	previous := depth[0]
	last := len(depth) - 1

	for i, d := range depth {
		if d != previous || i == last {
			// A single-element vector would otherwise emit x = -1.
			if i > 0 {
				seen[Point{i - 1, previous}] = struct{}{}
			}
			seen[Point{i, d}] = struct{}{}
			previous = d
		}
	}

	coordinates := make([]Point, 0, len(seen))
	for p := range seen {
		coordinates = append(coordinates, p)
	}

	sort.Slice(coordinates, func(i, j int) bool {
		if coordinates[i][0] != coordinates[j][0] {
			return coordinates[i][0] < coordinates[j][0]
		}
		return coordinates[i][1] < coordinates[j][1]
	})

	if len(coordinates) > maxPoints {
		return Simplify(coordinates, simplifyRatio)
	}

	return coordinates
}

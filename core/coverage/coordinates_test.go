// core/coverage/coordinates_test.go
package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		depth []int
		want  []Point
	}{
		{
			name:  "ends on a change",
			depth: []int{0, 0, 1, 1, 2, 3, 3, 3, 4, 4, 3, 2},
			want: []Point{
				{0, 0}, {1, 0}, {2, 1}, {3, 1}, {4, 2}, {5, 3},
				{7, 3}, {8, 4}, {9, 4}, {10, 3}, {11, 2},
			},
		},
		{
			name:  "ends on a plateau",
			depth: []int{0, 0, 1, 1, 2, 3, 3, 3, 4, 4, 3, 2, 1, 1},
			want: []Point{
				{0, 0}, {1, 0}, {2, 1}, {3, 1}, {4, 2}, {5, 3},
				{7, 3}, {8, 4}, {9, 4}, {10, 3}, {11, 2}, {12, 1}, {13, 1},
			},
		},
		{
			name:  "flat",
			depth: []int{5, 5, 5, 5},
			want:  []Point{{0, 5}, {2, 5}, {3, 5}},
		},
		{
			name:  "single position stays at x=0",
			depth: []int{3},
			want:  []Point{{0, 3}},
		},
		{
			name:  "empty",
			depth: nil,
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToCoordinates(tc.depth))
		})
	}
}

func TestToCoordinatesSimplifiesLargeSets(t *testing.T) {
	// A sawtooth produces two points per tooth; 150 teeth is well past
	// the 100-point limit.
	depth := make([]int, 300)
	for i := range depth {
		if i%2 == 0 {
			depth[i] = 1
		}
	}

	coordinates := ToCoordinates(depth)

	assert.LessOrEqual(t, len(coordinates), 150)
	for i := 1; i < len(coordinates); i++ {
		assert.Less(t, coordinates[i-1][0], coordinates[i][0])
	}
}

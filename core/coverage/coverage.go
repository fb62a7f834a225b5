// core/coverage/coverage.go

// Package coverage computes per-reference read depth from VTA
// alignments and collapses depth vectors into compact coordinate sets
// for storage and plotting.
package coverage

import (
	"pathoscope/core/vta"
)

// Calculate builds a depth vector for every reference appearing in the
// VTA file at path. refLengths gives the vector length per reference;
// alignments to unknown references are skipped and positions past the
// end of a reference are ignored.
func Calculate(path string, refLengths map[string]int) (map[string][]int, error) {
	depths := make(map[string][]int)

	err := vta.ForEach(path, func(r vta.Record) error {
		depth, ok := depths[r.RefID]
		if !ok {
			length, known := refLengths[r.RefID]
			if !known {
				return nil
			}
			depth = make([]int, length)
			depths[r.RefID] = depth
		}

		for i := r.Pos; i < r.Pos+r.Length && i < len(depth); i++ {
			if i >= 0 {
				depth[i]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return depths, nil
}

// Fraction is the covered share of the vector: 1 - zeros/len.
func Fraction(depth []int) float64 {
	if len(depth) == 0 {
		return 0
	}
	zeros := 0
	for _, d := range depth {
		if d == 0 {
			zeros++
		}
	}
	return 1 - float64(zeros)/float64(len(depth))
}

// MeanDepth is the average depth across the vector.
func MeanDepth(depth []int) float64 {
	if len(depth) == 0 {
		return 0
	}
	sum := 0
	for _, d := range depth {
		sum += d
	}
	return float64(sum) / float64(len(depth))
}

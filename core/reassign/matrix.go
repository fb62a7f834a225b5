// core/reassign/matrix.go

// Package reassign implements the Pathoscope read-reassignment model:
// an alignment matrix over reads and reference sequences, the EM
// estimation of genome priors, best-hit summaries and the rewrite of
// the alignment file with updated scores.
package reassign

import (
	"math"

	"pathoscope/core/vta"
)

// DefaultCutoff is the minimum p-score an alignment needs to enter the
// matrix.
const DefaultCutoff = 0.01

// Unique is a read aligned to exactly one reference.
type Unique struct {
	Ref    int
	Weight float64
}

// Ambiguous is a read aligned to several references. Refs, Weights and
// Probs are parallel; Probs starts as the weight fractions and is
// replaced by posteriors during EM. Best is the maximum weight.
type Ambiguous struct {
	Refs    []int
	Weights []float64
	Probs   []float64
	Best    float64
}

// Matrix indexes every read and reference seen in a VTA file. Indices
// are dense and assigned in first-seen order, so a second pass over the
// same file with the same cutoff reproduces them.
type Matrix struct {
	U     map[int]Unique
	NU    map[int]*Ambiguous
	Refs  []string
	Reads []string
}

// entry accumulates hits for one read before it is known whether the
// read is unique or ambiguous.
type entry struct {
	refs    []int
	weights []float64
	best    float64
}

// BuildMatrix reads the VTA file at path and builds the alignment
// matrix from records with p_score >= cutoff. Raw aligner scores are
// rescaled to exp(score * 100/max) so that EM weights are comparable
// across libraries; negative scores shift the scale by the minimum.
func BuildMatrix(path string, cutoff float64) (*Matrix, error) {
	m := &Matrix{
		U:  make(map[int]Unique),
		NU: make(map[int]*Ambiguous),
	}

	refIndexes := make(map[string]int)
	readIndexes := make(map[string]int)
	entries := make(map[int]*entry)
	ambiguous := make(map[int]bool)

	var maxScore, minScore float64

	err := vta.ForEach(path, func(r vta.Record) error {
		if r.PScore < cutoff {
			return nil
		}

		minScore = math.Min(minScore, r.PScore)
		maxScore = math.Max(maxScore, r.PScore)

		refIndex, ok := refIndexes[r.RefID]
		if !ok {
			refIndex = len(m.Refs)
			refIndexes[r.RefID] = refIndex
			m.Refs = append(m.Refs, r.RefID)
		}

		readIndex, ok := readIndexes[r.ReadID]
		if !ok {
			readIndex = len(m.Reads)
			readIndexes[r.ReadID] = readIndex
			m.Reads = append(m.Reads, r.ReadID)
			entries[readIndex] = &entry{
				refs:    []int{refIndex},
				weights: []float64{r.PScore},
				best:    r.PScore,
			}
			return nil
		}

		e := entries[readIndex]
		for _, existing := range e.refs {
			if existing == refIndex {
				// Duplicate (read, ref) pair; the first alignment wins.
				return nil
			}
		}

		ambiguous[readIndex] = true
		e.refs = append(e.refs, refIndex)
		e.weights = append(e.weights, r.PScore)
		if r.PScore > e.best {
			e.best = r.PScore
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rescale(entries, maxScore, minScore)

	for readIndex, e := range entries {
		if !ambiguous[readIndex] {
			m.U[readIndex] = Unique{Ref: e.refs[0], Weight: e.weights[0]}
			continue
		}

		var sum float64
		for _, w := range e.weights {
			sum += w
		}
		probs := make([]float64, len(e.weights))
		if sum > 0 {
			for i, w := range e.weights {
				probs[i] = w / sum
			}
		}

		m.NU[readIndex] = &Ambiguous{
			Refs:    e.refs,
			Weights: e.weights,
			Probs:   probs,
			Best:    e.best,
		}
	}

	return m, nil
}

// rescale maps raw aligner scores onto exp(score * 100/max), shifting
// by the minimum when scores go negative, and refreshes each entry's
// best weight.
func rescale(entries map[int]*entry, maxScore, minScore float64) {
	denom := maxScore
	if minScore < 0 {
		denom = maxScore - minScore
	}
	if denom == 0 {
		denom = 1
	}
	factor := 100.0 / denom

	for _, e := range entries {
		e.best = 0
		for i, w := range e.weights {
			if minScore < 0 {
				w -= minScore
			}
			w = math.Exp(w * factor)
			e.weights[i] = w
			if w > e.best {
				e.best = w
			}
		}
	}
}

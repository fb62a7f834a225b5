// core/reassign/rewrite.go
package reassign

import (
	"fmt"
	"os"

	"pathoscope/core/vta"
)

// RewriteAlign re-reads the VTA file the matrix was built from and
// writes a reassigned copy to outPath. Unique reads keep their records
// unchanged; ambiguous reads get their p_score replaced with the
// posterior share of the read's total weight, and records whose
// updated score falls below cutoff are dropped.
//
// The cutoff must match the one used by BuildMatrix so the read and
// reference indices line up.
func (m *Matrix) RewriteAlign(vtaPath string, cutoff float64, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	w := vta.NewWriter(out)

	refIndexes := make(map[string]int)
	readIndexes := make(map[string]int)

	err = vta.ForEach(vtaPath, func(r vta.Record) error {
		if r.PScore < cutoff {
			return nil
		}

		refIndex, ok := refIndexes[r.RefID]
		if !ok {
			refIndex = len(refIndexes)
			refIndexes[r.RefID] = refIndex
		}

		readIndex, ok := readIndexes[r.ReadID]
		if !ok {
			readIndex = len(readIndexes)
			readIndexes[r.ReadID] = readIndex
		}

		if _, unique := m.U[readIndex]; unique {
			return w.Write(r)
		}

		a, ok := m.NU[readIndex]
		if !ok {
			return nil
		}

		updated := updatedScore(a, refIndex)
		if updated < cutoff {
			return nil
		}

		r.PScore = updated
		return w.Write(r)
	})
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("rewrite align: %w", err)
	}

	if err := w.Flush(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// updatedScore is the read's posterior for refIndex scaled by the sum
// of its weights; zero when the read was never aligned to refIndex.
func updatedScore(a *Ambiguous, refIndex int) float64 {
	idx := -1
	for i, r := range a.Refs {
		if r == refIndex {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0
	}

	var sum float64
	for _, w := range a.Weights {
		sum += w
	}

	return a.Probs[idx] * sum
}

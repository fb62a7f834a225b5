// core/reassign/besthit.go
package reassign

// BestHit summarizes read support per reference. Reads holds best-hit
// read counts (ambiguous reads split evenly among their maximal-prob
// references); Best, Level1 and Level2 are the same counts normalized
// by the total read count, with Level1 counting posteriors >= 0.5 and
// Level2 posteriors in [0.01, 0.5).
type BestHit struct {
	Reads  []float64
	Best   []float64
	Level1 []float64
	Level2 []float64
}

// ComputeBestHit derives the best-hit summary from the current state
// of the matrix. Called before EM it reflects the raw alignment, after
// EM the reassigned posteriors.
func (m *Matrix) ComputeBestHit() BestHit {
	refCount := len(m.Refs)

	bestHitReads := make([]float64, refCount)
	level1Reads := make([]float64, refCount)
	level2Reads := make([]float64, refCount)

	for _, u := range m.U {
		bestHitReads[u.Ref]++
		level1Reads[u.Ref]++
	}

	for _, a := range m.NU {
		var best float64
		for _, p := range a.Probs {
			if p > best {
				best = p
			}
		}

		numBest := 0
		for _, p := range a.Probs {
			if p == best {
				numBest++
			}
		}
		if numBest == 0 {
			numBest = 1
		}

		for k, p := range a.Probs {
			if p != best {
				continue
			}
			bestHitReads[a.Refs[k]] += 1.0 / float64(numBest)
			if p >= 0.5 {
				level1Reads[a.Refs[k]]++
			} else if p >= 0.01 {
				level2Reads[a.Refs[k]]++
			}
		}
	}

	bh := BestHit{
		Reads:  bestHitReads,
		Best:   make([]float64, refCount),
		Level1: make([]float64, refCount),
		Level2: make([]float64, refCount),
	}

	readCount := float64(len(m.Reads))
	if readCount == 0 {
		return bh
	}

	for k := 0; k < refCount; k++ {
		bh.Best[k] = bestHitReads[k] / readCount
		bh.Level1[k] = level1Reads[k] / readCount
		bh.Level2[k] = level2Reads[k] / readCount
	}

	return bh
}

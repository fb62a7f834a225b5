// core/reassign/em.go
package reassign

import "math"

// Options tunes the EM estimation.
type Options struct {
	MaxIter    int
	Epsilon    float64
	PiPrior    float64
	ThetaPrior float64
}

// DefaultOptions are the parameters the pipeline runs with.
func DefaultOptions() Options {
	return Options{MaxIter: 50, Epsilon: 1e-7}
}

// EM estimates the genome mixing proportions pi by
// expectation-maximization over the ambiguous reads. It returns the
// proportions after the first iteration (initPi), the converged
// proportions (pi) and the ambiguous-only proportions (theta). The
// posteriors of every ambiguous read (Probs) are updated in place.
//
// Iteration stops after MaxIter rounds, when the L1 change in pi drops
// to Epsilon or below, or immediately after one round when at most one
// ambiguous read exists.
func (m *Matrix) EM(opts Options) (initPi, pi, theta []float64) {
	genomeCount := len(m.Refs)
	if genomeCount == 0 {
		return nil, nil, nil
	}

	pi = make([]float64, genomeCount)
	for i := range pi {
		pi[i] = 1.0 / float64(genomeCount)
	}
	initPi = append([]float64(nil), pi...)
	theta = append([]float64(nil), pi...)

	// Unique-read mass per genome never changes across iterations.
	piSum0 := make([]float64, genomeCount)
	var maxUWeight, uTotal float64
	for _, u := range m.U {
		piSum0[u.Ref] += u.Weight
		uTotal += u.Weight
		if u.Weight > maxUWeight {
			maxUWeight = u.Weight
		}
	}

	var maxNUWeight, nuTotal float64
	for _, a := range m.NU {
		nuTotal += a.Best
		if a.Best > maxNUWeight {
			maxNUWeight = a.Best
		}
	}

	priorWeight := math.Max(maxUWeight, maxNUWeight)

	nuLength := len(m.NU)
	if nuLength == 0 {
		nuLength = 1
	}

	for iter := 0; iter < opts.MaxIter; iter++ {
		piOld := pi
		thetaSum := make([]float64, genomeCount)

		// E step: posterior of each ambiguous read over its genomes.
		for _, a := range m.NU {
			var xSum float64
			x := make([]float64, len(a.Refs))
			for k, ref := range a.Refs {
				x[k] = pi[ref] * theta[ref] * a.Weights[k]
				xSum += x[k]
			}

			if xSum == 0 {
				for k := range x {
					x[k] = 0
				}
			} else {
				for k := range x {
					x[k] /= xSum
				}
			}

			a.Probs = x

			for k, ref := range a.Refs {
				thetaSum[ref] += x[k] * a.Best
			}
		}

		// M step: fold in unique mass and prior smoothing.
		piP := opts.PiPrior * priorWeight
		piDenom := uTotal + nuTotal + piP*float64(genomeCount)
		if piDenom == 0 {
			piDenom = 1
		}
		pi = make([]float64, genomeCount)
		for k := range pi {
			pi[k] = (thetaSum[k] + piSum0[k] + piP) / piDenom
		}

		if iter == 0 {
			initPi = append([]float64(nil), pi...)
		}

		thetaP := opts.ThetaPrior * priorWeight
		thetaDenom := nuTotal
		if thetaDenom == 0 {
			thetaDenom = 1
		}
		thetaDenom += thetaP * float64(genomeCount)
		theta = make([]float64, genomeCount)
		for k := range theta {
			theta[k] = (thetaSum[k] + thetaP) / thetaDenom
		}

		var change float64
		for k := range pi {
			change += math.Abs(piOld[k] - pi[k])
		}

		if change <= opts.Epsilon || nuLength == 1 {
			break
		}
	}

	return initPi, pi, theta
}

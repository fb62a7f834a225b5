// internal/analysis/results.go
package analysis

import (
	"fmt"
	"math"
	"os"

	"pathoscope/core/coverage"
	"pathoscope/core/reassign"
	"pathoscope/core/report"
	"pathoscope/pkg/api"
)

type diagnoseInput struct {
	vtaPath        string
	reassignedPath string
	reportPath     string
	refLengths     map[string]int
	otus           map[string]api.OTURefV1
	sequenceOTUMap map[string]string
}

// diagnose runs the reassignment model over the subtracted VTA file and
// produces the diagnosis hits, writing the report table and the
// reassigned alignment file alongside. The returned read count is the
// number of distinct reads in the alignment matrix.
func diagnose(in diagnoseInput) ([]api.HitV1, int, error) {
	m, err := reassign.BuildMatrix(in.vtaPath, reassign.DefaultCutoff)
	if err != nil {
		return nil, 0, err
	}

	readCount := len(m.Reads)

	initial := m.ComputeBestHit()
	initPi, pi, _ := m.EM(reassign.DefaultOptions())
	final := m.ComputeBestHit()

	if err := m.RewriteAlign(in.vtaPath, reassign.DefaultCutoff, in.reassignedPath); err != nil {
		return nil, 0, err
	}

	entries := report.Compose(m.Refs, initPi, pi, initial, final)

	f, err := os.Create(in.reportPath)
	if err != nil {
		return nil, 0, err
	}
	if err := report.WriteTSV(f, readCount, entries); err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if err := f.Close(); err != nil {
		return nil, 0, err
	}

	depths, err := coverage.Calculate(in.reassignedPath, in.refLengths)
	if err != nil {
		return nil, 0, err
	}

	hits := make([]api.HitV1, 0, len(entries))
	for _, e := range entries {
		otuID, ok := in.sequenceOTUMap[e.Ref]
		if !ok {
			return nil, 0, fmt.Errorf("sequence %s missing from sequence_otu_map", e.Ref)
		}
		otu, ok := in.otus[otuID]
		if !ok {
			return nil, 0, fmt.Errorf("otu %s missing from task", otuID)
		}

		depth := depths[e.Ref]

		hits = append(hits, api.HitV1{
			ID:       e.Ref,
			OTU:      otu,
			Pi:       e.FinalPi,
			Best:     e.FinalBest,
			High:     e.FinalHigh,
			Low:      e.FinalLow,
			Reads:    int(math.Round(e.FinalReads)),
			Align:    toPairs(coverage.ToCoordinates(depth)),
			Coverage: round3(coverage.Fraction(depth)),
			Depth:    int(math.Round(coverage.MeanDepth(depth))),
		})
	}

	return hits, readCount, nil
}

func toPairs(points []coverage.Point) [][2]int {
	if points == nil {
		return nil
	}
	pairs := make([][2]int, len(points))
	for i, p := range points {
		pairs[i] = [2]int{p[0], p[1]}
	}
	return pairs
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

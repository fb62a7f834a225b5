// core/reassign/rewrite_test.go
package reassign

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathoscope/core/vta"
)

func readAll(t *testing.T, path string) []vta.Record {
	t.Helper()
	var out []vta.Record
	require.NoError(t, vta.ForEach(path, func(r vta.Record) error {
		out = append(out, r)
		return nil
	}))
	return out
}

func TestRewriteAlign(t *testing.T) {
	path := writeVTA(t,
		"r1,A,1,50,50\n"+
			"r2,A,2,50,50\n"+
			"r2,B,3,50,50\n")

	m, err := BuildMatrix(path, DefaultCutoff)
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "reassigned.vta")
	require.NoError(t, m.RewriteAlign(path, DefaultCutoff, outPath))

	got := readAll(t, outPath)
	require.Len(t, got, 3)

	// Unique read keeps its original record.
	assert.Equal(t, vta.Record{ReadID: "r1", RefID: "A", Pos: 1, Length: 50, PScore: 50}, got[0])

	// Ambiguous records get posterior-weighted scores; the even split
	// leaves both halves of the total weight.
	assert.Equal(t, "r2", got[1].ReadID)
	assert.Equal(t, "r2", got[2].ReadID)
	assert.InEpsilon(t, got[1].PScore, got[2].PScore, 1e-9)
	assert.Greater(t, got[1].PScore, 1e40)
}

func TestRewriteAlignDropsBelowCutoff(t *testing.T) {
	path := writeVTA(t, "r1,A,1,10,5\n")

	// A read whose updated score falls under the cutoff is dropped.
	m := &Matrix{
		U: map[int]Unique{},
		NU: map[int]*Ambiguous{
			0: {Refs: []int{0}, Weights: []float64{0.5}, Probs: []float64{0.004}, Best: 0.5},
		},
		Refs:  []string{"A"},
		Reads: []string{"r1"},
	}

	outPath := filepath.Join(t.TempDir(), "reassigned.vta")
	require.NoError(t, m.RewriteAlign(path, DefaultCutoff, outPath))

	assert.Empty(t, readAll(t, outPath))
}

func TestUpdatedScore(t *testing.T) {
	a := &Ambiguous{
		Refs:    []int{2, 7},
		Weights: []float64{3, 1},
		Probs:   []float64{0.75, 0.25},
	}

	assert.InDelta(t, 3.0, updatedScore(a, 2), 1e-12)
	assert.InDelta(t, 1.0, updatedScore(a, 7), 1e-12)
	assert.Zero(t, updatedScore(a, 5))
}

// core/report/report_test.go
package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathoscope/core/reassign"
)

func bestHit(reads, best, level1, level2 []float64) reassign.BestHit {
	return reassign.BestHit{Reads: reads, Best: best, Level1: level1, Level2: level2}
}

func TestCompose(t *testing.T) {
	refs := []string{"A", "B", "C"}
	initPi := []float64{0.3, 0.5, 0.2}
	pi := []float64{0.6, 0.399, 0.001}

	initial := bestHit(
		[]float64{3, 5, 0.1},
		[]float64{0.3, 0.5, 0.001},
		[]float64{0.3, 0.5, 0},
		[]float64{0, 0, 0.001},
	)
	final := bestHit(
		[]float64{6, 4, 0.05},
		[]float64{0.6, 0.4, 0.005},
		[]float64{0.6, 0.4, 0},
		[]float64{0, 0, 0.005},
	)

	entries := Compose(refs, initPi, pi, initial, final)

	// C never clears the best-hit floor on either side.
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Ref)
	assert.Equal(t, "B", entries[1].Ref)

	assert.InDelta(t, 0.6, entries[0].FinalPi, 1e-9)
	assert.InDelta(t, 0.3, entries[0].InitialPi, 1e-9)
	assert.InDelta(t, 6.0, entries[0].FinalReads, 1e-9)
}

func TestComposeSortsByFinalPiDescending(t *testing.T) {
	refs := []string{"low", "high"}
	initPi := []float64{0.5, 0.5}
	pi := []float64{0.2, 0.8}
	bh := bestHit([]float64{1, 1}, []float64{0.5, 0.5}, []float64{0, 0}, []float64{0, 0})

	entries := Compose(refs, initPi, pi, bh, bh)

	require.Len(t, entries, 2)
	assert.Equal(t, "high", entries[0].Ref)
	assert.Equal(t, "low", entries[1].Ref)
}

func TestComposeTieBreaksOnRefDescending(t *testing.T) {
	refs := []string{"a", "b"}
	even := []float64{0.5, 0.5}
	bh := bestHit([]float64{1, 1}, []float64{0.5, 0.5}, []float64{0, 0}, []float64{0, 0})

	entries := Compose(refs, even, even, bh, bh)

	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Ref)
	assert.Equal(t, "a", entries[1].Ref)
}

func TestWriteTSV(t *testing.T) {
	entries := []Entry{
		{
			Ref:     "A",
			FinalPi: 0.75, FinalBest: 0.5, FinalReads: 10, FinalHigh: 0.5, FinalLow: 0,
			InitialPi: 0.5, InitialBest: 0.4, InitialReads: 8, InitialHigh: 0.4, InitialLow: 0.1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, 20, entries))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Total Number of Aligned Reads: 20, Total Number of Mapped Genomes: 1", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Genome\tFinal Guess"))
	assert.Equal(t, "A\t0.75\t0.5\t10\t0.5\t0\t0.5\t0.4\t8\t0.4\t0.1", lines[2])
}

func TestWriteTSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, 0, nil))

	assert.Contains(t, buf.String(), "Total Number of Aligned Reads: 0, Total Number of Mapped Genomes: 0")
}

// internal/analysis/sam.go
package analysis

import (
	"io"

	"pathoscope/core/reassign"
	"pathoscope/core/sam"
	"pathoscope/core/vta"
	"pathoscope/internal/bowtie"
)

type samAlignment = sam.Alignment

// samLines adapts an alignment handler to the runner's line interface,
// dropping headers, unmapped segments, hits without a reference and
// scores below the matrix cutoff.
func samLines(fn func(samAlignment) error) bowtie.LineFunc {
	return func(line string) error {
		a, ok, err := sam.ParseLine(line)
		if err != nil {
			return err
		}
		if !ok || a.Unmapped() || a.RefID == "*" || a.Score < reassign.DefaultCutoff {
			return nil
		}
		return fn(a)
	}
}

// vtaWriter writes alignments in VTA record form.
type vtaWriter struct {
	w *vta.Writer
}

func newVTAWriter(w io.Writer) *vtaWriter {
	return &vtaWriter{w: vta.NewWriter(w)}
}

func (w *vtaWriter) write(a samAlignment) error {
	return w.w.Write(vta.Record{
		ReadID: a.ReadID,
		RefID:  a.RefID,
		Pos:    a.Pos,
		Length: a.SeqLen,
		PScore: a.Score,
	})
}

func (w *vtaWriter) flush() error { return w.w.Flush() }

func subtractVTA(path string, hostScores map[string]float64) (int, error) {
	return vta.Subtract(path, hostScores)
}

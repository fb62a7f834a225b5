// core/vta/subtract.go
package vta

import (
	"os"
)

// Subtract removes host-derived alignments from the VTA file at path.
// hostScores maps read IDs to the score the read achieved against the
// subtraction genome. A record survives when its read was never mapped
// to the host or when its p_score is at least the host score. The file
// is rewritten in place only after the filtered copy is complete.
// Returns the number of records removed.
func Subtract(path string, hostScores map[string]float64) (int, error) {
	outPath := path + ".subtracted"

	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}

	w := NewWriter(out)
	subtracted := 0

	err = ForEach(path, func(r Record) error {
		hostScore, mapped := hostScores[r.ReadID]
		if mapped && r.PScore < hostScore {
			subtracted++
			return nil
		}
		return w.Write(r)
	})
	if err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return 0, err
	}

	if err := w.Flush(); err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return 0, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(outPath)
		return 0, err
	}

	if err := os.Rename(outPath, path); err != nil {
		return 0, err
	}

	return subtracted, nil
}

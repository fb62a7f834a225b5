// cmd/pathoscope/reassign.go
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pathoscope/core/coverage"
	"pathoscope/core/fasta"
	"pathoscope/core/reassign"
	"pathoscope/core/report"
	"pathoscope/core/sam"
	"pathoscope/core/vta"
)

var reassignCmd = &cobra.Command{
	Use:   "reassign <alignment.sam|alignment.vta>",
	Short: "Reassign ambiguous reads in an existing alignment",
	Long: `Run only the read-reassignment model over an existing alignment,
without a database or sample layout. SAM input is converted first;
header lines, unmapped segments and hits without a reference are
dropped.

Writes report.tsv and reassigned.vta to the output directory, plus
coverage.json when a reference FASTA is given.

Example:
  pathoscope reassign --out results to_isolates.vta
  pathoscope reassign --out results --reference isolates.fa alignment.sam`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := cmd.Flags().GetString("out")
		reference, _ := cmd.Flags().GetString("reference")

		if err := runReassign(args[0], out, reference); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reassignCmd)
	reassignCmd.Flags().StringP("out", "o", ".", "Output directory")
	reassignCmd.Flags().StringP("reference", "r", "", "Reference FASTA used to compute coverage")
}

func runReassign(input, out, reference string) error {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	vtaPath := input
	if strings.HasSuffix(input, ".sam") {
		converted := filepath.Join(out, "alignment.vta")
		if err := samToVTA(input, converted); err != nil {
			return err
		}
		vtaPath = converted
	}

	m, err := reassign.BuildMatrix(vtaPath, reassign.DefaultCutoff)
	if err != nil {
		return err
	}

	initial := m.ComputeBestHit()
	initPi, pi, _ := m.EM(reassign.DefaultOptions())
	final := m.ComputeBestHit()

	reassignedPath := filepath.Join(out, "reassigned.vta")
	if err := m.RewriteAlign(vtaPath, reassign.DefaultCutoff, reassignedPath); err != nil {
		return err
	}

	entries := report.Compose(m.Refs, initPi, pi, initial, final)

	f, err := os.Create(filepath.Join(out, "report.tsv"))
	if err != nil {
		return err
	}
	if err := report.WriteTSV(f, len(m.Reads), entries); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if reference == "" {
		return nil
	}

	return writeCoverage(reassignedPath, reference, filepath.Join(out, "coverage.json"))
}

// samToVTA converts a SAM file to the VTA intermediate format.
func samToVTA(samPath, vtaPath string) error {
	in, err := os.Open(samPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(vtaPath)
	if err != nil {
		return err
	}

	w := vta.NewWriter(out)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for sc.Scan() {
		a, ok, err := sam.ParseLine(sc.Text())
		if err != nil {
			_ = out.Close()
			return err
		}
		if !ok || a.Unmapped() || a.RefID == "*" {
			continue
		}
		err = w.Write(vta.Record{
			ReadID: a.ReadID,
			RefID:  a.RefID,
			Pos:    a.Pos,
			Length: a.SeqLen,
			PScore: a.Score,
		})
		if err != nil {
			_ = out.Close()
			return err
		}
	}
	if err := sc.Err(); err != nil {
		_ = out.Close()
		return fmt.Errorf("sam scan: %w", err)
	}

	if err := w.Flush(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// refCoverage is one reference's entry in coverage.json.
type refCoverage struct {
	Align    [][2]int `json:"align"`
	Coverage float64  `json:"coverage"`
	Depth    int      `json:"depth"`
}

func writeCoverage(vtaPath, referencePath, outPath string) error {
	lengths, err := fasta.Lengths(referencePath)
	if err != nil {
		return err
	}

	depths, err := coverage.Calculate(vtaPath, lengths)
	if err != nil {
		return err
	}

	entries := make(map[string]refCoverage, len(depths))
	for ref, depth := range depths {
		points := coverage.ToCoordinates(depth)
		pairs := make([][2]int, len(points))
		for i, p := range points {
			pairs[i] = [2]int{p[0], p[1]}
		}
		entries[ref] = refCoverage{
			Align:    pairs,
			Coverage: math.Round(coverage.Fraction(depth)*1000) / 1000,
			Depth:    int(math.Round(coverage.MeanDepth(depth))),
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// core/report/report.go

// Package report renders the per-reference diagnosis table produced by
// the reassignment step.
package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"

	"pathoscope/core/reassign"
)

// minBestHit is the best-hit fraction below which a reference is left
// out of the report.
const minBestHit = 0.01

// Entry is one reference row, carrying both the initial (pre-EM) and
// final (post-EM) summaries.
type Entry struct {
	Ref string

	FinalPi    float64
	FinalBest  float64
	FinalReads float64
	FinalHigh  float64
	FinalLow   float64

	InitialPi    float64
	InitialBest  float64
	InitialReads float64
	InitialHigh  float64
	InitialLow   float64
}

// Compose builds the report rows: one per reference, sorted by final
// pi descending (ties by reference ID descending), keeping only
// references whose initial or final best-hit fraction exceeds 0.01.
func Compose(refs []string, initPi, pi []float64, initial, final reassign.BestHit) []Entry {
	entries := make([]Entry, 0, len(refs))

	for i, ref := range refs {
		e := Entry{
			Ref:          ref,
			FinalPi:      pi[i],
			FinalBest:    final.Best[i],
			FinalReads:   final.Reads[i],
			FinalHigh:    final.Level1[i],
			FinalLow:     final.Level2[i],
			InitialPi:    initPi[i],
			InitialBest:  initial.Best[i],
			InitialReads: initial.Reads[i],
			InitialHigh:  initial.Level1[i],
			InitialLow:   initial.Level2[i],
		}
		if e.InitialBest > minBestHit || e.FinalBest > minBestHit {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FinalPi != entries[j].FinalPi {
			return entries[i].FinalPi > entries[j].FinalPi
		}
		return entries[i].Ref > entries[j].Ref
	})

	return entries
}

// WriteTSV writes the report table: a totals line, a header row and one
// row per entry.
func WriteTSV(w io.Writer, readCount int, entries []Entry) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw,
		"Total Number of Aligned Reads: %d, Total Number of Mapped Genomes: %d\n",
		readCount, len(entries),
	); err != nil {
		return err
	}

	if _, err := bw.WriteString(
		"Genome\tFinal Guess\tFinal Best Hit\tFinal Best Hit Read Numbers\t" +
			"Final High Confidence Hits\tFinal Low Confidence Hits\t" +
			"Initial Guess\tInitial Best Hit\tInitial Best Hit Read Numbers\t" +
			"Initial High Confidence Hits\tInitial Low Confidence Hits\n",
	); err != nil {
		return err
	}

	for _, e := range entries {
		row := e.Ref + "\t" +
			ftoa(e.FinalPi) + "\t" +
			ftoa(e.FinalBest) + "\t" +
			ftoa(e.FinalReads) + "\t" +
			ftoa(e.FinalHigh) + "\t" +
			ftoa(e.FinalLow) + "\t" +
			ftoa(e.InitialPi) + "\t" +
			ftoa(e.InitialBest) + "\t" +
			ftoa(e.InitialReads) + "\t" +
			ftoa(e.InitialHigh) + "\t" +
			ftoa(e.InitialLow) + "\n"
		if _, err := bw.WriteString(row); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// internal/paths/paths.go

// Package paths centralizes the layout of the data tree shared with
// the rest of the Virtool toolchain.
package paths

import (
	"path/filepath"
	"strings"
)

// Sample is the parent folder for all data associated with a sample.
func Sample(dataPath, sampleID string) string {
	return filepath.Join(dataPath, "samples", sampleID)
}

// Analysis is the directory all result files for one analysis are
// written to.
func Analysis(dataPath, sampleID, analysisID string) string {
	return filepath.Join(Sample(dataPath, sampleID), "analysis", analysisID)
}

// ReadFiles returns the sample read paths: reads_1.fastq, and
// reads_2.fastq for paired libraries.
func ReadFiles(dataPath, sampleID string, paired bool) []string {
	sample := Sample(dataPath, sampleID)
	reads := []string{filepath.Join(sample, "reads_1.fastq")}
	if paired {
		reads = append(reads, filepath.Join(sample, "reads_2.fastq"))
	}
	return reads
}

// Index is the bowtie2 index prefix for a built reference index.
func Index(dataPath, refID, indexID string) string {
	return filepath.Join(dataPath, "references", refID, indexID, "reference")
}

// Subtraction is the bowtie2 index prefix for a subtraction genome.
// Subtraction IDs are folder-encoded lowercase with underscores.
func Subtraction(dataPath, subtractionID string) string {
	name := strings.ReplaceAll(strings.ToLower(subtractionID), " ", "_")
	return filepath.Join(dataPath, "subtractions", name, "reference")
}

// PathoscopeJSON is the on-disk fallback location for analysis results
// too large to store in the database.
func PathoscopeJSON(dataPath, analysisID, sampleID string) string {
	return filepath.Join(Analysis(dataPath, sampleID, analysisID), "pathoscope.json")
}

// internal/bowtie/command.go

// Package bowtie builds and runs the Bowtie2 invocations the pipeline
// depends on. Bowtie2 and bowtie2-build are expected on PATH.
package bowtie

import (
	"strconv"
	"strings"
)

// Local alignment parameters shared by the OTU and isolate mappings.
// These are fixed pipeline constants, not user knobs.
const (
	scoreMin   = "L,20,1.0"
	seedLength = "15"
)

// MapOTUsCommand maps the sample reads against the main reference
// index to find candidate OTU sequences.
func MapOTUsCommand(proc int, indexPath string, readPaths []string) []string {
	return []string{
		"bowtie2",
		"-p", strconv.Itoa(proc),
		"--no-unal",
		"--local",
		"--score-min", scoreMin,
		"-N", "0",
		"-L", seedLength,
		"-x", indexPath,
		"-U", strings.Join(readPaths, ","),
	}
}

// BuildCommand builds a bowtie2 index from fastaPath under prefix.
func BuildCommand(fastaPath, prefix string) []string {
	return []string{"bowtie2-build", fastaPath, prefix}
}

// MapIsolatesCommand maps the sample reads against the isolate index,
// reporting up to 100 alignments per read and writing aligned reads to
// mappedPath for the subtraction mapping.
func MapIsolatesCommand(proc int, indexPrefix, mappedPath string, readPaths []string) []string {
	return []string{
		"bowtie2",
		"-p", strconv.Itoa(proc - 1),
		"--no-unal",
		"--local",
		"--score-min", scoreMin,
		"-N", "0",
		"-L", seedLength,
		"-k", "100",
		"--al", mappedPath,
		"-x", indexPrefix,
		"-U", strings.Join(readPaths, ","),
	}
}

// MapSubtractionCommand maps the previously mapped reads against the
// subtraction (host) index.
func MapSubtractionCommand(proc int, subtractionPrefix, mappedPath string) []string {
	return []string{
		"bowtie2",
		"--local",
		"-N", "0",
		"-p", strconv.Itoa(proc - 1),
		"-x", subtractionPrefix,
		"-U", mappedPath,
	}
}

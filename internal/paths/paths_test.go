// internal/paths/paths_test.go
package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathoscopeJSON(t *testing.T) {
	// Layout shared with the wider toolchain; the shape is fixed.
	path := PathoscopeJSON("data_foo", "analysis_bar", "sample_foo")
	assert.Equal(t, "data_foo/samples/sample_foo/analysis/analysis_bar/pathoscope.json", path)
}

func TestAnalysis(t *testing.T) {
	assert.Equal(t, "data/samples/s1/analysis/a1", Analysis("data", "s1", "a1"))
}

func TestReadFiles(t *testing.T) {
	assert.Equal(t,
		[]string{"data/samples/s1/reads_1.fastq"},
		ReadFiles("data", "s1", false))

	assert.Equal(t,
		[]string{"data/samples/s1/reads_1.fastq", "data/samples/s1/reads_2.fastq"},
		ReadFiles("data", "s1", true))
}

func TestIndex(t *testing.T) {
	assert.Equal(t, "data/references/ref1/idx1/reference", Index("data", "ref1", "idx1"))
}

func TestSubtraction(t *testing.T) {
	assert.Equal(t,
		"data/subtractions/arabidopsis_thaliana/reference",
		Subtraction("data", "Arabidopsis Thaliana"))
}

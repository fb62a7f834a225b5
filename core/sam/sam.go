// core/sam/sam.go
package sam

import (
	"fmt"
	"strconv"
	"strings"
)

// FlagUnmapped is the SAM bitwise FLAG for an unmapped segment.
const FlagUnmapped = 0x4

// Alignment is one mapped SAM line reduced to the fields the pipeline
// consumes.
type Alignment struct {
	ReadID string
	Flag   int
	RefID  string
	Pos    int // 1-based leftmost position as reported by the aligner
	SeqLen int
	Score  float64 // alignment score: AS tag value + read length
}

// Unmapped reports whether the segment-unmapped FLAG bit is set.
func (a Alignment) Unmapped() bool { return a.Flag&FlagUnmapped != 0 }

// IsHeader reports whether line is a SAM header or comment line.
func IsHeader(line string) bool {
	return len(line) == 0 || line[0] == '@' || line[0] == '#'
}

// ParseLine parses a single SAM alignment line. Header and comment
// lines return ok=false with no error. Mapped lines without an AS tag
// are an error; unmapped lines are returned with a zero score so the
// caller can discard them by FLAG.
func ParseLine(line string) (Alignment, bool, error) {
	if IsHeader(line) {
		return Alignment{}, false, nil
	}

	fields := strings.Split(line, "\t")
	if len(fields) < 11 {
		return Alignment{}, false, fmt.Errorf("sam: short line (%d fields)", len(fields))
	}

	flag, err := strconv.Atoi(fields[1])
	if err != nil {
		return Alignment{}, false, fmt.Errorf("sam: bad flag %q: %w", fields[1], err)
	}

	a := Alignment{
		ReadID: fields[0],
		Flag:   flag,
		RefID:  fields[2],
		SeqLen: len(fields[9]),
	}

	if a.Unmapped() {
		return a, true, nil
	}

	a.Pos, err = strconv.Atoi(fields[3])
	if err != nil {
		return Alignment{}, false, fmt.Errorf("sam: bad position %q: %w", fields[3], err)
	}

	a.Score, err = alignScore(fields)
	if err != nil {
		return Alignment{}, false, err
	}

	return a, true, nil
}

// alignScore finds the AS:i: optional tag and returns its value plus
// the read length, the quantity used as the alignment p-score
// throughout the pipeline.
func alignScore(fields []string) (float64, error) {
	readLength := len(fields[9])

	for _, f := range fields {
		if strings.HasPrefix(f, "AS:i:") {
			v, err := strconv.Atoi(f[5:])
			if err != nil {
				return 0, fmt.Errorf("sam: bad AS tag %q: %w", f, err)
			}
			return float64(v + readLength), nil
		}
	}

	return 0, fmt.Errorf("sam: no alignment score on line for read %q", fields[0])
}

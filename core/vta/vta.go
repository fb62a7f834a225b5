// core/vta/vta.go

// Package vta reads and writes the VTA intermediate alignment format:
// one comma-separated record per line, read_id,ref_id,pos,length,p_score.
// VTA files carry the filtered alignments between the mapping, host
// subtraction and reassignment steps.
package vta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record is one alignment in a VTA file.
type Record struct {
	ReadID string
	RefID  string
	Pos    int
	Length int
	PScore float64
}

// String renders the record in VTA line format (no trailing newline).
func (r Record) String() string {
	return strings.Join([]string{
		r.ReadID,
		r.RefID,
		strconv.Itoa(r.Pos),
		strconv.Itoa(r.Length),
		strconv.FormatFloat(r.PScore, 'g', -1, 64),
	}, ",")
}

// ParseLine parses one VTA line.
func ParseLine(line string) (Record, error) {
	fields := strings.Split(strings.TrimRight(line, "\n"), ",")
	if len(fields) != 5 {
		return Record{}, fmt.Errorf("vta: expected 5 fields, got %d", len(fields))
	}

	pos, err := strconv.Atoi(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("vta: bad position %q: %w", fields[2], err)
	}

	length, err := strconv.Atoi(fields[3])
	if err != nil {
		return Record{}, fmt.Errorf("vta: bad length %q: %w", fields[3], err)
	}

	pScore, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Record{}, fmt.Errorf("vta: bad p_score %q: %w", fields[4], err)
	}

	return Record{
		ReadID: fields[0],
		RefID:  fields[1],
		Pos:    pos,
		Length: length,
		PScore: pScore,
	}, nil
}

// Writer appends VTA records to an underlying writer.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(r Record) error {
	if _, err := w.w.WriteString(r.String()); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Flush() error { return w.w.Flush() }

// ForEach streams every record in the file at path to fn, stopping at
// the first error.
func ForEach(path string, fn func(Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("vta scan: %w", err)
	}
	return nil
}

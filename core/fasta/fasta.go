// core/fasta/fasta.go

// Package fasta streams FASTA records and writes the single-line
// record form consumed by bowtie2-build.
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// Record is one FASTA sequence.
type Record struct {
	ID  string
	Seq []byte
}

// ForEach opens path (plain, gzip, or "-" for stdin) and emits every
// record to fn. The record ID is the first whitespace-delimited token
// of the header.
func ForEach(path string, fn func(Record) error) error {
	return ForEachCtx(context.Background(), path, fn)
}

// ForEachCtx is ForEach with cancellation between lines.
func ForEachCtx(ctx context.Context, path string, fn func(Record) error) error {
	rc, err := openReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	return forEachReader(ctx, rc, fn)
}

func forEachReader(ctx context.Context, r io.Reader, fn func(Record) error) error {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024 // allow very long single-line sequences (64 MiB)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		id  string
		seq = make([]byte, 0, 1<<20)
	)

	flush := func() error {
		if id == "" && len(seq) == 0 {
			return nil
		}
		return fn(Record{ID: id, Seq: append([]byte(nil), seq...)})
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if id != "" {
				if err := flush(); err != nil {
					return err
				}
				seq = seq[:0]
			}
			id = parseHeaderID(line[1:])
			continue
		}
		seq = append(seq, bytes.TrimSpace(line)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}

	return flush()
}

// Lengths maps every record ID in the file to its sequence length.
func Lengths(path string) (map[string]int, error) {
	lengths := make(map[string]int)
	err := ForEach(path, func(r Record) error {
		lengths[r.ID] = len(r.Seq)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lengths, nil
}

func parseHeaderID(hdr []byte) string {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}

// Writer emits records as ">id\nseq\n" with the sequence on one line,
// the layout the isolate index FASTA is built with.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(r Record) error {
	if _, err := fmt.Fprintf(w.w, ">%s\n%s\n", r.ID, r.Seq); err != nil {
		return err
	}
	return nil
}

func (w *Writer) Flush() error { return w.w.Flush() }

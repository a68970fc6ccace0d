// internal/writer/writer.go
// Package writer implements the record writer of spec.md §4.8/§6: a
// header describing the genome's chromosomes, followed by one
// TSV-encoded line per processed guide with an off-target table keyed
// by mismatch count.
package writer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"grnadb-core/genome"
	"grnadb-core/record"
)

// GuideHeader is the canonical header row for a guide's TSV columns.
// Keep this as the single source of truth for the output schema.
const GuideHeader = "chromosome\toffset\tstrand\tsequence\tpam\toff_targets"

// intsCSV joins a slice of int64 as a comma-separated list.
func intsCSV(a []int64) string {
	if len(a) == 0 {
		return ""
	}
	ss := make([]string, len(a))
	for i, v := range a {
		ss[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(ss, ",")
}

// FormatOffTargets encodes an off-target table grouped by mismatch
// count, e.g. "0:100,-204;1:305;2:" for a guide with a distance-0
// bucket of two positions, a distance-1 bucket of one, and an empty
// distance-2 bucket. Buckets are emitted in ascending distance order
// from 0 to maxMismatches inclusive, even when empty, so a reader can
// always find the on-target (distance-0) field at a fixed position.
func FormatOffTargets(hits []record.OffTargetHit, maxMismatches int) string {
	buckets := make([][]int64, maxMismatches+1)
	for _, h := range hits {
		buckets[h.Mismatches] = append(buckets[h.Mismatches], h.Position)
	}
	groups := make([]string, len(buckets))
	for d, positions := range buckets {
		groups[d] = fmt.Sprintf("%d:%s", d, intsCSV(positions))
	}
	return strings.Join(groups, ";")
}

// FormatGuideRowTSV returns the guide row (no trailing newline) for
// rec, whose off-target table is bucketed up to maxMismatches.
func FormatGuideRowTSV(rec *record.Record, maxMismatches int) string {
	return fmt.Sprintf("%s\t%d\t%c\t%s\t%s\t%s",
		rec.Chromosome, rec.Offset, byte(rec.Strand), rec.Sequence, rec.PAM,
		FormatOffTargets(rec.OffTargets, maxMismatches))
}

// Writer emits the chromosome preamble once, then one guide row per
// Write call. It is not safe for concurrent use; callers (internal/pipeline)
// serialize access under an output lock.
type Writer struct {
	bw            *bufio.Writer
	maxMismatches int
}

// New writes the chromosome preamble (one "##chrom\tname\tlength" line
// per chromosome) and the guide header, then returns a Writer ready
// for per-guide Write calls. maxMismatches must match the mismatch
// budget the guides were searched with, so every row's off-target
// table has the same number of buckets.
func New(w io.Writer, gs *genome.Structure, maxMismatches int) (*Writer, error) {
	bw := bufio.NewWriter(w)
	for _, c := range gs.Chroms {
		if _, err := fmt.Fprintf(bw, "##chrom\t%s\t%d\n", c.Name, c.Length); err != nil {
			return nil, fmt.Errorf("writer: preamble: %w", err)
		}
	}
	if _, err := fmt.Fprintln(bw, GuideHeader); err != nil {
		return nil, fmt.Errorf("writer: header: %w", err)
	}
	return &Writer{bw: bw, maxMismatches: maxMismatches}, nil
}

// Write emits one complete guide row. Each call writes a full line;
// there is no interleaving within a call, satisfying the
// atomic-per-record ordering guarantee of spec.md §5.
func (w *Writer) Write(rec *record.Record) error {
	if _, err := fmt.Fprintln(w.bw, FormatGuideRowTSV(rec, w.maxMismatches)); err != nil {
		return fmt.Errorf("writer: write record: %w", err)
	}
	return nil
}

// Flush flushes any buffered output. Callers must call Flush after the
// worker pool drains and before treating the write as durable.
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("writer: flush: %w", err)
	}
	return nil
}

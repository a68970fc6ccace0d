// Package kmer produces the lazy, finite, non-restartable stream of
// guide-candidate k-mers that the rest of the pipeline consumes: either
// scanned directly from a genome, or read back from a previously
// computed kmer file.
package kmer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"grnadb-core/dna"
)

// Strand is the orientation a Kmer's guide was found on.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

// Kmer is one candidate protospacer+PAM pair.
type Kmer struct {
	Sequence string // protospacer, length L
	PAM      string // adjacent motif, length P
	Absolute uint64 // 0-based genome position where guide+PAM begins on the + strand
	Strand   Strand
}

// Producer is the only interface the rest of the pipeline depends on:
// a single-threaded pull of the next Kmer. Callers serialize access
// under a lock (see internal/pipeline) since a Producer carries mutable
// cursor state.
type Producer interface {
	Next() (Kmer, bool)
}

// GenomicProducer slides a window of length len(pam)+guideLen over a
// raw, concatenated, uppercase genome sequence, yielding a Kmer for
// every window whose PAM-adjacent bases match pamPatterns (IUPAC-aware)
// on either strand. Windows whose protospacer contains an ambiguous
// base are dropped.
type GenomicProducer struct {
	seq        []byte
	guideLen   int
	pamPats    []string // concrete PAM realizations to match on the + strand
	rcPamPats  []string // their reverse complements, matched on the - strand
	pos        int
	pamLen     int
}

// NewGenomicProducer builds a producer over seq for protospacers of
// length guideLen adjacent to any PAM matching pamPattern (an
// IUPAC-coded motif, e.g. "NGG").
func NewGenomicProducer(seq []byte, guideLen int, pamPattern string) *GenomicProducer {
	pamPats := dna.ExpandIUPAC(pamPattern)
	rcPats := make([]string, len(pamPats))
	for i, p := range pamPats {
		rcPats[i] = dna.ReverseComplement(p)
	}
	return &GenomicProducer{
		seq:       seq,
		guideLen:  guideLen,
		pamPats:   pamPats,
		rcPamPats: rcPats,
		pamLen:    len(pamPattern),
	}
}

func containsAmbiguous(s []byte) bool {
	for _, c := range s {
		if c != 'A' && c != 'C' && c != 'G' && c != 'T' {
			return true
		}
	}
	return false
}

func matchesAny(window []byte, pats []string) bool {
	for _, p := range pats {
		if string(window) == p {
			return true
		}
	}
	return false
}

// Next returns the next window in the scan that yields a + or -
// strand guide, advancing past it; it returns (Kmer{}, false) once the
// sequence is exhausted.
func (p *GenomicProducer) Next() (Kmer, bool) {
	windowLen := p.guideLen + p.pamLen
	for ; p.pos+windowLen <= len(p.seq); p.pos++ {
		window := p.seq[p.pos : p.pos+windowLen]
		guideFwd := window[:p.guideLen]
		pamFwd := window[p.guideLen:]
		pamRev := window[:p.pamLen]
		guideRevWindow := window[p.pamLen:]

		if !containsAmbiguous(guideFwd) && matchesAny(pamFwd, p.pamPats) {
			k := Kmer{
				Sequence: string(guideFwd),
				PAM:      string(pamFwd),
				Absolute: uint64(p.pos),
				Strand:   Forward,
			}
			p.pos++
			return k, true
		}
		if !containsAmbiguous(guideRevWindow) && matchesAny(pamRev, p.rcPamPats) {
			k := Kmer{
				Sequence: dna.ReverseComplement(string(guideRevWindow)),
				PAM:      dna.ReverseComplement(string(pamRev)),
				Absolute: uint64(p.pos),
				Strand:   Reverse,
			}
			p.pos++
			return k, true
		}
	}
	return Kmer{}, false
}

// FileProducer reads kmers previously computed and stored in the
// kmer-file format: one kmer per line, four whitespace-separated
// fields (sequence, pam, absolute_coords, strand).
type FileProducer struct {
	sc   *bufio.Scanner
	line int
	path string
	err  error
}

// NewFileProducer wraps r (typically an open file) as a Producer. path
// is used only to annotate FormatError messages.
func NewFileProducer(r io.Reader, path string) *FileProducer {
	return &FileProducer{sc: bufio.NewScanner(r), path: path}
}

// Next returns the next well-formed line as a Kmer. A malformed line
// causes Next to return false; callers should check Err afterwards to
// distinguish "exhausted" from "malformed record".
func (p *FileProducer) Next() (Kmer, bool) {
	for p.sc.Scan() {
		p.line++
		line := strings.TrimSpace(p.sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			p.err = fmt.Errorf("%s:%d: expected 4 fields, got %d", p.path, p.line, len(fields))
			return Kmer{}, false
		}
		abs, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			p.err = fmt.Errorf("%s:%d: bad absolute_coords %q: %w", p.path, p.line, fields[2], err)
			return Kmer{}, false
		}
		var strand Strand
		switch fields[3] {
		case "+":
			strand = Forward
		case "-":
			strand = Reverse
		default:
			p.err = fmt.Errorf("%s:%d: bad strand %q (want '+' or '-')", p.path, p.line, fields[3])
			return Kmer{}, false
		}
		return Kmer{
			Sequence: strings.ToUpper(fields[0]),
			PAM:      strings.ToUpper(fields[1]),
			Absolute: abs,
			Strand:   strand,
		}, true
	}
	p.err = p.sc.Err()
	return Kmer{}, false
}

// Err returns the error, if any, that caused the stream to stop; nil
// means clean exhaustion.
func (p *FileProducer) Err() error { return p.err }

// Package genome models the ordered list of chromosomes that make up a
// reference genome and the mapping from an absolute genome offset to a
// (chromosome, offset) coordinate pair.
package genome

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Chromosome is immutable once loaded into a Structure.
type Chromosome struct {
	Name   string
	Length uint64
}

// Structure is the ordered sequence of a genome's chromosomes, plus the
// prefix sums needed to resolve an absolute offset to a chromosome.
type Structure struct {
	Chroms []Chromosome
	starts []uint64 // prefix sum of lengths; starts[i] is Chroms[i]'s absolute start
	total  uint64
}

// NewStructure builds a Structure from an ordered chromosome list,
// computing prefix sums once.
func NewStructure(chroms []Chromosome) *Structure {
	s := &Structure{Chroms: chroms}
	s.starts = make([]uint64, len(chroms))
	var acc uint64
	for i, c := range chroms {
		s.starts[i] = acc
		acc += c.Length
	}
	s.total = acc
	return s
}

// Total returns the combined length of all chromosomes.
func (s *Structure) Total() uint64 { return s.total }

// ResolveAbsolute returns the chromosome whose half-open absolute range
// [start, start+length) contains p, along with p's offset within it. It
// is undefined (and panics, indicating a caller bug) if p >= Total().
func (s *Structure) ResolveAbsolute(p uint64) (Chromosome, uint64) {
	if p >= s.total {
		panic(fmt.Sprintf("genome: ResolveAbsolute called with out-of-range position %d (total %d)", p, s.total))
	}
	// starts is sorted ascending; find the greatest start <= p.
	i := sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > p }) - 1
	if i < 0 {
		i = 0
	}
	return s.Chroms[i], p - s.starts[i]
}

// Parse reads a FASTA stream and returns the GenomeStructure implied by
// its headers and sequence line lengths. Each header line (starting
// with '>') opens a new chromosome named by the first whitespace-delimited
// token of the header; subsequent sequence lines contribute to its
// length. Parse fails if the stream is non-empty and its first
// non-blank line does not start with '>' (deciding spec.md §9 Open
// Question 2 toward explicit failure rather than a silently empty
// structure).
func Parse(r io.Reader) (*Structure, error) {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024
	buf := make([]byte, 64*1024)
	sc.Buffer(buf, maxLine)

	var (
		chroms  []Chromosome
		cur     = -1
		sawLine = false
	)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if !sawLine {
			sawLine = true
			if line[0] != '>' {
				return nil, fmt.Errorf("genome: malformed FASTA: expected header ('>') on first non-blank line, got %q", line)
			}
		}
		if line[0] == '>' {
			name := strings.Fields(line[1:])
			id := ""
			if len(name) > 0 {
				id = name[0]
			}
			chroms = append(chroms, Chromosome{Name: id})
			cur = len(chroms) - 1
			continue
		}
		if cur < 0 {
			return nil, fmt.Errorf("genome: sequence data before any header")
		}
		chroms[cur].Length += uint64(len(strings.TrimSpace(line)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("genome: scan error: %w", err)
	}
	return NewStructure(chroms), nil
}

// Serialize writes name and length on alternating lines, one chromosome
// per pair of lines.
func (s *Structure) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range s.Chroms {
		if _, err := fmt.Fprintln(bw, c.Name); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(bw, c.Length); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Deserialize is the inverse of Serialize.
func Deserialize(r io.Reader) (*Structure, error) {
	sc := bufio.NewScanner(r)
	var chroms []Chromosome
	for {
		if !sc.Scan() {
			break
		}
		name := sc.Text()
		if !sc.Scan() {
			return nil, fmt.Errorf("genome: deserialize: missing length for chromosome %q", name)
		}
		lenStr := sc.Text()
		length, err := strconv.ParseUint(strings.TrimSpace(lenStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("genome: deserialize: bad length %q for chromosome %q: %w", lenStr, name, err)
		}
		chroms = append(chroms, Chromosome{Name: name, Length: length})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("genome: deserialize: scan error: %w", err)
	}
	return NewStructure(chroms), nil
}

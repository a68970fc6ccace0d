// Package fmindex implements an FM-index (a compressed full-text
// self-index built on the Burrows-Wheeler transform) supporting the
// standard backward-search primitives: extending a suffix-array range
// left by one character, and locating the absolute text position of a
// suffix-array row.
//
// Construction and the LF-mapping arithmetic follow the textbook
// C/OCC-table layout (count of symbols lexicographically smaller than c,
// plus a cumulative occurrence table per symbol).
package fmindex

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"sort"
)

// sentinel terminates the indexed text; it must sort before every
// concrete DNA base.
const sentinel = 0x00

// Range is a contiguous interval of suffix-array rows, inclusive on
// both ends. SP > EP denotes the empty range and is never stored.
type Range struct {
	SP, EP int
}

// Empty reports whether r denotes no suffixes.
func (r Range) Empty() bool { return r.SP > r.EP }

// Count returns the number of suffixes covered by r.
func (r Range) Count() int {
	if r.Empty() {
		return 0
	}
	return r.EP - r.SP + 1
}

// Index is an FM-index over a fixed text. It is built once and is safe
// for concurrent read-only use afterwards.
type Index struct {
	n       int      // length of text including the sentinel
	sa      []int32  // suffix array over text+sentinel
	symbols []byte   // sorted distinct symbols appearing in text (excludes sentinel)
	c       map[byte]int
	occ     map[byte][]int32 // occ[sym][i] = count of sym in bwt[0:i)
}

// Build constructs an FM-index over seq. seq should contain only
// concrete DNA bases (A, C, G, T); the caller is responsible for
// resolving ambiguity codes before indexing, since the index itself has
// no notion of IUPAC expansion.
func Build(seq []byte) *Index {
	text := make([]byte, len(seq)+1)
	copy(text, seq)
	text[len(seq)] = sentinel

	sa := suffixArray(text)
	bwt := make([]byte, len(text))
	for i, s := range sa {
		if s == 0 {
			bwt[i] = text[len(text)-1]
		} else {
			bwt[i] = text[s-1]
		}
	}

	counts := make(map[byte]int)
	for _, b := range text {
		counts[b]++
	}
	symbols := make([]byte, 0, len(counts))
	for b := range counts {
		if b != sentinel {
			symbols = append(symbols, b)
		}
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })

	// C[c] = number of symbols in the text strictly smaller than c
	// (counting the sentinel, which is smaller than every base).
	c := make(map[byte]int, len(symbols))
	running := counts[sentinel]
	for _, s := range symbols {
		c[s] = running
		running += counts[s]
	}

	occ := make(map[byte][]int32, len(symbols))
	for _, s := range symbols {
		occ[s] = make([]int32, len(bwt)+1)
	}
	for i, b := range bwt {
		for _, s := range symbols {
			occ[s][i+1] = occ[s][i]
		}
		if b != sentinel {
			occ[b][i+1]++
		}
	}

	idx := &Index{
		n:       len(text),
		sa:      sa,
		symbols: symbols,
		c:       c,
		occ:     occ,
	}
	return idx
}

// Len returns the length of the indexed text, including the sentinel.
func (idx *Index) Len() int { return idx.n }

// InitialRange returns the suffix-array range covering all suffixes.
func (idx *Index) InitialRange() Range {
	return Range{SP: 0, EP: idx.n - 1}
}

// ExtendLeft returns the suffix-array range of suffixes prefixed by c
// followed by the suffixes in r (LF-mapping / one step of backward
// search). It returns the empty range if no such suffix exists.
func (idx *Index) ExtendLeft(r Range, c byte) Range {
	if r.Empty() {
		return Range{SP: 0, EP: -1}
	}
	occC, ok := idx.occ[c]
	if !ok {
		return Range{SP: 0, EP: -1}
	}
	base := idx.c[c]
	sp := base + int(occC[r.SP])
	ep := base + int(occC[r.EP+1]) - 1
	return Range{SP: sp, EP: ep}
}

// Locate returns the absolute position in the indexed text of the
// suffix at suffix-array row i. i must satisfy sp <= i <= ep for some
// non-empty range produced by this index; callers must not pass an
// out-of-bounds row (doing so indicates an internal invariant
// violation, not a data error).
func (idx *Index) Locate(i int) int {
	if i < 0 || i >= len(idx.sa) {
		panic(fmt.Sprintf("fmindex: Locate called with out-of-range row %d (n=%d)", i, idx.n))
	}
	return int(idx.sa[i])
}

// persisted mirrors Index's fields in a form gob can encode without
// exposing unexported struct internals directly to the encoding
// machinery.
type persisted struct {
	N       int
	SA      []int32
	Symbols []byte
	C       map[byte]int
	Occ     map[byte][]int32
}

// Save serializes the index (the ".csa" side file of the build
// pipeline) so it can be reused across runs without rebuilding.
func (idx *Index) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := gob.NewEncoder(bw)
	if err := enc.Encode(persisted{
		N: idx.n, SA: idx.sa, Symbols: idx.symbols, C: idx.c, Occ: idx.occ,
	}); err != nil {
		return fmt.Errorf("fmindex: save: %w", err)
	}
	return bw.Flush()
}

// Load deserializes an index previously written by Save.
func Load(r io.Reader) (*Index, error) {
	dec := gob.NewDecoder(bufio.NewReader(r))
	var p persisted
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("fmindex: load: %w", err)
	}
	return &Index{n: p.N, sa: p.SA, symbols: p.Symbols, c: p.C, occ: p.Occ}, nil
}

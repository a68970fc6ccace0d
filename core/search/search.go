// Package search implements the PAM-anchored, bounded-mismatch
// backtracking search over an FM-index: for a protospacer pattern and
// a set of concrete PAM realizations, it finds every indexed position
// where a PAM is immediately followed by a string within a Hamming
// distance budget of the pattern.
package search

import "grnadb-core/fmindex"

var bases = [4]byte{'A', 'C', 'G', 'T'}

// Visitor receives matches from InexactSearch. VisitRange is called
// once per leaf of the search tree with the suffix-array range and the
// number of mismatches accrued to reach it. ShouldContinue lets a
// visitor abort the search early (the uniqueness-gate counting visitor
// uses this to bound the cost of an over-threshold guide to
// O(threshold)).
type Visitor interface {
	VisitRange(sp, ep, mismatches int)
	ShouldContinue() bool
}

// CountingVisitor counts total hits across all distances without
// recording positions, and can be configured to stop once the count
// exceeds a threshold.
type CountingVisitor struct {
	Threshold int // 0 = unbounded
	Count     int
}

func (v *CountingVisitor) VisitRange(sp, ep, mismatches int) {
	v.Count += ep - sp + 1
}

func (v *CountingVisitor) ShouldContinue() bool {
	return v.Threshold <= 0 || v.Count <= v.Threshold
}

// CollectingVisitor buckets suffix-array ranges by mismatch count.
// RangesByDistance[i] holds every range found at Hamming distance
// exactly i; ranges within one bucket are disjoint and a hit never
// appears at two distances, because each range is the leaf of exactly
// one path through InexactSearch's search tree and that path fixes its
// distance.
type CollectingVisitor struct {
	MaxMismatches    int
	RangesByDistance [][]fmindex.Range
}

// NewCollectingVisitor preallocates the distance buckets.
func NewCollectingVisitor(maxMismatches int) *CollectingVisitor {
	return &CollectingVisitor{
		MaxMismatches:    maxMismatches,
		RangesByDistance: make([][]fmindex.Range, maxMismatches+1),
	}
}

func (v *CollectingVisitor) VisitRange(sp, ep, mismatches int) {
	v.RangesByDistance[mismatches] = append(v.RangesByDistance[mismatches], fmindex.Range{SP: sp, EP: ep})
}

func (v *CollectingVisitor) ShouldContinue() bool { return true }

// InexactSearch finds every position in idx's text where some concrete
// realization of pams appears immediately followed (in text order) by a
// string whose Hamming distance to pattern is at most kMax. For every
// such match it calls visit.VisitRange with the suffix-array range and
// the achieved distance.
//
// Because the FM-index scans right-to-left, the PAM is anchored first
// (as the rightmost part of the combined pattern) and the search then
// extends left into the protospacer. pattern and pams are matched
// literally against idx's text; callers searching an antisense
// orientation pass an index already built over the reverse-complemented
// text rather than reverse-complementing the query (see core/offtarget).
func InexactSearch(idx *fmindex.Index, pattern []byte, pams []string, kMax int, visit Visitor) {
	for _, pam := range pams {
		if !visit.ShouldContinue() {
			return
		}
		r := idx.InitialRange()
		for i := len(pam) - 1; i >= 0; i-- {
			r = idx.ExtendLeft(r, pam[i])
			if r.Empty() {
				break
			}
		}
		if r.Empty() {
			continue
		}
		descend(idx, pattern, len(pattern)-1, kMax, 0, r, visit)
	}
}

// descend is the recursive backtracking step over the protospacer.
// pos decreases from len(pattern)-1 to -1; at pos == -1 a non-empty
// range is a full match and is reported to visit.
func descend(idx *fmindex.Index, pattern []byte, pos, kMax, used int, r fmindex.Range, visit Visitor) {
	if !visit.ShouldContinue() {
		return
	}
	if pos < 0 {
		visit.VisitRange(r.SP, r.EP, used)
		return
	}
	for _, c := range bases {
		r2 := idx.ExtendLeft(r, c)
		if r2.Empty() {
			continue
		}
		if c == pattern[pos] {
			descend(idx, pattern, pos-1, kMax, used, r2, visit)
		} else if used < kMax {
			descend(idx, pattern, pos-1, kMax, used+1, r2, visit)
		}
	}
}

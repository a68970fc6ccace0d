package fmindex

import "grnadb-core/genome"

// GenomeIndex pairs an FM-index with the genome structure describing
// the text it was built over, so callers can translate a located
// suffix-array position into a chromosome-relative coordinate. Exactly
// one of these exists per orientation: one over the forward
// concatenation of chromosomes, one over its reverse complement.
type GenomeIndex struct {
	FM *Index
	GS *genome.Structure
}

// NewGenomeIndex builds an FM-index over seq and pairs it with gs.
// Callers build two GenomeIndex values per genome: one over the
// forward concatenation, one over its reverse complement (see
// core/offtarget for how the two are combined during guide
// processing).
func NewGenomeIndex(seq []byte, gs *genome.Structure) *GenomeIndex {
	return &GenomeIndex{FM: Build(seq), GS: gs}
}

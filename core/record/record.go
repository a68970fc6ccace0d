// Package record defines the output record shape shared by the build
// pipeline's writer and the ad-hoc query mode.
package record

import "grnadb-core/kmer"

// OffTargetHit is one site found within the mismatch budget: its
// absolute position on the forward strand (signed: negative marks the
// antisense strand, per the wire-format convention in spec.md §4.8) and
// the Hamming distance at which it was found.
type OffTargetHit struct {
	Position   int64
	Mismatches int
}

// Record is the per-guide output: the guide's identity, its resolved
// genomic coordinate, and its off-target table.
type Record struct {
	Sequence   string
	PAM        string
	Chromosome string
	Offset     uint64
	Strand     kmer.Strand
	OffTargets []OffTargetHit // grouped by Mismatches when formatted; see internal/writer
}

// internal/app/query.go
package app

import (
	log "github.com/sirupsen/logrus"

	"grnadb-core/dna"
	"grnadb-core/kmer"
	"grnadb-core/search"

	"grnadb/internal/errs"
	"grnadb/internal/indexstore"
)

// QueryOptions controls the query command (spec.md §6/§11): an ad-hoc
// pattern searched against an already-indexed genome, with no PAM
// anchoring.
type QueryOptions struct {
	FastaPath  string
	Pattern    string
	Mismatches int
}

// QueryHit is one reported match of a query pattern against the
// genome, in either orientation.
type QueryHit struct {
	Chromosome       string
	Offset           uint64
	AbsolutePosition int64
	Strand           kmer.Strand
	Distance         int
}

// unanchoredPAM disables PAM anchoring in InexactSearch: a single
// empty pattern always matches the (empty) PAM window InexactSearch
// consumes before descending into the protospacer.
var unanchoredPAM = []string{""}

// RunQuery searches opts.Pattern against both orientations of the
// genome indexed at opts.FastaPath and returns every match within
// opts.Mismatches, sorted by nothing in particular (callers needing a
// stable order should sort the result).
//
// Forward-index hits are reported directly. Reverse-index hits are
// hits against the genome's reverse complement; a match starting at
// byte offset "pos" in that text spans forward-genome coordinates
// [n-pos-len(pattern), n-pos) run backwards, so its report position is
// the left edge of that span, n-pos-len(pattern), the same start
// formula core/offtarget uses for its reverse-orientation hits. Query
// hits carry their orientation in Strand; AbsolutePosition is never
// negative.
func RunQuery(opts QueryOptions, logger *log.Logger) ([]QueryHit, error) {
	seq := dna.Normalize(opts.Pattern)
	if err := dna.ValidateDNA(seq); err != nil {
		return nil, errs.New(errs.InputError, opts.Pattern, err)
	}

	indices, err := indexstore.Load(opts.FastaPath, logger)
	if err != nil {
		return nil, err
	}

	var hits []QueryHit

	fwd := search.NewCollectingVisitor(opts.Mismatches)
	search.InexactSearch(indices.Forward.FM, []byte(seq), unanchoredPAM, opts.Mismatches, fwd)
	for d := 0; d <= opts.Mismatches; d++ {
		for _, r := range fwd.RangesByDistance[d] {
			for i := r.SP; i <= r.EP; i++ {
				pos := indices.Forward.FM.Locate(i)
				chrom, off := indices.Structure.ResolveAbsolute(uint64(pos))
				hits = append(hits, QueryHit{Chromosome: chrom.Name, Offset: off, AbsolutePosition: int64(pos), Strand: kmer.Forward, Distance: d})
			}
		}
	}

	revGenomeLen := indices.Reverse.FM.Len() - 1 // exclude the sentinel
	rev := search.NewCollectingVisitor(opts.Mismatches)
	search.InexactSearch(indices.Reverse.FM, []byte(seq), unanchoredPAM, opts.Mismatches, rev)
	for d := 0; d <= opts.Mismatches; d++ {
		for _, r := range rev.RangesByDistance[d] {
			for i := r.SP; i <= r.EP; i++ {
				pos := indices.Reverse.FM.Locate(i)
				fwdPos := revGenomeLen - pos - len(seq)
				if fwdPos < 0 {
					continue
				}
				chrom, off := indices.Structure.ResolveAbsolute(uint64(fwdPos))
				hits = append(hits, QueryHit{Chromosome: chrom.Name, Offset: off, AbsolutePosition: int64(fwdPos), Strand: kmer.Reverse, Distance: d})
			}
		}
	}

	return hits, nil
}

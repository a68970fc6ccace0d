// Package offtarget implements the per-guide processing step: given a
// candidate k-mer, compute its off-targets on both genome orientations
// within a mismatch budget, apply the uniqueness threshold, resolve
// suffix-array hits back to chromosome coordinates, and produce a
// Record.
package offtarget

import (
	"sort"

	"grnadb-core/dna"
	"grnadb-core/fmindex"
	"grnadb-core/kmer"
	"grnadb-core/record"
	"grnadb-core/search"
)

// Config controls the off-target search.
type Config struct {
	Mismatches int      // k_max for the enumeration search
	Threshold  int      // uniqueness-gate budget; 0 disables the gate
	PAMs       []string // primary + alternate PAM patterns (IUPAC), e.g. {"NGG", "NAG"}
}

// pamGroup is every concrete IUPAC realization sharing one PAM length.
// Reverse-orientation coordinate resolution needs the matched PAM's
// length to compute the combined match's start in forward-genome
// coordinates, and InexactSearch's visitor callback reports only the
// suffix-array range and mismatch count, not which PAM realization was
// anchored — so hits are resolved one length-group at a time instead
// of searching the full union of PAMs in one call.
type pamGroup struct {
	length int
	pams   []string
}

// Processor runs the off-target search for one guide against a
// genome's two orientations (forward and reverse-complement). A
// Processor is immutable after construction and safe for concurrent
// use by multiple pipeline workers, since each call to Process
// allocates its own OffTargetSet.
type Processor struct {
	cfg     Config
	forward *fmindex.GenomeIndex
	reverse *fmindex.GenomeIndex
	pams    []string   // every concrete IUPAC realization of cfg.PAMs, flat (used by the uniqueness gate, which only counts hits)
	groups  []pamGroup // the same realizations, grouped by PAM length (used to resolve positions)
}

// New builds a Processor over the given forward and reverse-complement
// genome indices. cfg.PAMs must already be the union of the primary and
// alternate PAM patterns the build command was configured with; New
// expands each one's IUPAC ambiguity codes into the concrete
// realizations InexactSearch's PAM phase matches literally.
func New(cfg Config, forward, reverse *fmindex.GenomeIndex) *Processor {
	var pams []string
	byLength := make(map[int][]string)
	for _, p := range cfg.PAMs {
		realized := dna.ExpandIUPAC(p)
		pams = append(pams, realized...)
		byLength[len(p)] = append(byLength[len(p)], realized...)
	}

	lengths := make([]int, 0, len(byLength))
	for l := range byLength {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	groups := make([]pamGroup, 0, len(lengths))
	for _, l := range lengths {
		groups = append(groups, pamGroup{length: l, pams: byLength[l]})
	}

	return &Processor{cfg: cfg, forward: forward, reverse: reverse, pams: pams, groups: groups}
}

// Process runs the full guide-processing contract of spec.md §4.6 for
// one k-mer: uniqueness gate, enumeration, position resolution. It
// returns (nil, nil) if the guide was dropped by the uniqueness gate.
//
// The guide's own sequence, unmodified, is searched directly against
// both orientations: gi_forward's text already is the forward genome,
// so a literal match there is a same-strand (sense) site; gi_reverse's
// text already is the reverse complement of the genome, so a literal
// match there is an antisense site with no further transform of the
// query needed. Reverse-complementing the query before searching
// either index would search for the query's own complement instead of
// the query, which cannot find the guide's own on-target site (fails
// invariant 1) whenever the genome contains no PAM realization built
// entirely from bases complementary to the configured PAM, as spec.md
// §8 scenario 2 does; core/search's own tests confirm InexactSearch is
// meant to take the literal pattern.
func (p *Processor) Process(k kmer.Kmer) (*record.Record, error) {
	pattern := []byte(k.Sequence)

	if p.cfg.Threshold > 0 && !p.passesUniquenessGate(pattern) {
		return nil, nil
	}

	var offTargets []record.OffTargetHit
	revGenomeLen := p.reverse.FM.Len() - 1 // exclude the sentinel

	for _, g := range p.groups {
		fwdHits := search.NewCollectingVisitor(p.cfg.Mismatches)
		search.InexactSearch(p.forward.FM, pattern, g.pams, p.cfg.Mismatches, fwdHits)

		revHits := search.NewCollectingVisitor(p.cfg.Mismatches)
		search.InexactSearch(p.reverse.FM, pattern, g.pams, p.cfg.Mismatches, revHits)

		windowLen := len(pattern) + g.length

		for d := 0; d <= p.cfg.Mismatches; d++ {
			for _, r := range fwdHits.RangesByDistance[d] {
				for i := r.SP; i <= r.EP; i++ {
					pos := p.forward.FM.Locate(i)
					offTargets = append(offTargets, record.OffTargetHit{Position: int64(pos), Mismatches: d})
				}
			}
			// A reverse-index match starts at "pos" in gi_reverse's
			// text and spans windowLen bases; that span's forward-genome
			// start is revGenomeLen-pos-windowLen (Locate returns the
			// literal text offset, per fmindex_test.go's
			// TestLocateMatchesBruteForce, not a value already adjusted
			// for the match's length). Reverse-index hits are antisense
			// sites, so they are recorded negative.
			for _, r := range revHits.RangesByDistance[d] {
				for i := r.SP; i <= r.EP; i++ {
					pos := p.reverse.FM.Locate(i)
					fwdPos := revGenomeLen - pos - windowLen
					offTargets = append(offTargets, record.OffTargetHit{Position: -int64(fwdPos), Mismatches: d})
				}
			}
		}
	}

	chrom, offset := p.forward.GS.ResolveAbsolute(k.Absolute)
	return &record.Record{
		Sequence:   k.Sequence,
		PAM:        k.PAM,
		Chromosome: chrom.Name,
		Offset:     offset,
		Strand:     k.Strand,
		OffTargets: offTargets,
	}, nil
}

// passesUniquenessGate runs a counting search on each orientation with
// k_max = threshold; if the combined count (accumulated across both
// indices, per spec.md §9 Open Question 1) exceeds 1, the guide has an
// off-target within the threshold and is dropped. The search against
// the second index is skipped once the first already exceeds the
// budget. Unlike Process, this only counts hits and never resolves
// positions, so the flat pam list (rather than the length-grouped one)
// is enough here.
func (p *Processor) passesUniquenessGate(pattern []byte) bool {
	fwdCount := &search.CountingVisitor{Threshold: p.cfg.Threshold}
	search.InexactSearch(p.forward.FM, pattern, p.pams, p.cfg.Threshold, fwdCount)
	if fwdCount.Count > 1 {
		return false
	}

	revCount := &search.CountingVisitor{Threshold: p.cfg.Threshold}
	search.InexactSearch(p.reverse.FM, pattern, p.pams, p.cfg.Threshold, revCount)

	return fwdCount.Count+revCount.Count <= 1
}

package app

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"grnadb-core/kmer"
)

func testLogger() *log.Logger {
	l := log.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// spec.md §8 scenario 6: pattern ACGT, mismatches=1 against
// chr1: ACGTACGTACCT finds forward-strand hits at 0 (d=0), 4 (d=0),
// and 8 (d=1). RunQuery additionally searches the antisense
// orientation, so this only asserts the three named forward hits are
// present rather than claiming an exhaustive count.
func TestRunQueryFindsNamedForwardHits(t *testing.T) {
	dir := t.TempDir()
	fastaPath := filepath.Join(dir, "genome.fa")
	require.NoError(t, os.WriteFile(fastaPath, []byte(">chr1\nACGTACGTACCT\n"), 0o644))

	hits, err := RunQuery(QueryOptions{FastaPath: fastaPath, Pattern: "ACGT", Mismatches: 1}, testLogger())
	require.NoError(t, err)

	want := map[uint64]int{0: 0, 4: 0, 8: 1}
	got := make(map[uint64]int)
	for _, h := range hits {
		if h.Chromosome != "chr1" || h.Strand != kmer.Forward {
			continue
		}
		got[h.Offset] = h.Distance
	}
	for offset, dist := range want {
		gotDist, ok := got[offset]
		require.True(t, ok, "expected a forward hit at offset %d", offset)
		require.Equal(t, dist, gotDist, "offset %d", offset)
	}
}

func TestRunQueryRejectsInvalidPattern(t *testing.T) {
	dir := t.TempDir()
	fastaPath := filepath.Join(dir, "genome.fa")
	require.NoError(t, os.WriteFile(fastaPath, []byte(">chr1\nACGT\n"), 0o644))

	_, err := RunQuery(QueryOptions{FastaPath: fastaPath, Pattern: "ACGZ", Mismatches: 0}, testLogger())
	require.Error(t, err)
}

package fmindex

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// locateAll returns every absolute position covered by r, sorted.
func locateAll(idx *Index, r Range) []int {
	var out []int
	for i := r.SP; i <= r.EP; i++ {
		out = append(out, idx.Locate(i))
	}
	sort.Ints(out)
	return out
}

func backwardSearch(idx *Index, pattern string) Range {
	r := idx.InitialRange()
	for i := len(pattern) - 1; i >= 0; i-- {
		r = idx.ExtendLeft(r, pattern[i])
		if r.Empty() {
			return r
		}
	}
	return r
}

func TestExactSearchFindsAllOccurrences(t *testing.T) {
	idx := Build([]byte("ACGTACGTACCT"))
	r := backwardSearch(idx, "ACGT")
	require.False(t, r.Empty())
	require.Equal(t, []int{0, 4}, locateAll(idx, r))
}

func TestExactSearchMissingPatternIsEmpty(t *testing.T) {
	idx := Build([]byte("ACGTACGTACCT"))
	r := backwardSearch(idx, "TTTT")
	require.True(t, r.Empty())
}

func TestLocateMatchesBruteForce(t *testing.T) {
	text := []byte("GATTACAGATTACA")
	idx := Build(text)
	pattern := []byte("ATTA")
	r := backwardSearch(idx, string(pattern))
	got := locateAll(idx, r)

	var want []int
	for i := 0; i+len(pattern) <= len(text); i++ {
		if bytes.Equal(text[i:i+len(pattern)], pattern) {
			want = append(want, i)
		}
	}
	require.Equal(t, want, got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := Build([]byte("ACGTACGTACCT"))
	var buf bytes.Buffer
	require.NoError(t, idx.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	r1 := backwardSearch(idx, "ACGT")
	r2 := backwardSearch(loaded, "ACGT")
	require.Equal(t, locateAll(idx, r1), locateAll(loaded, r2))
}

func TestExtendLeftOnEmptyRangeStaysEmpty(t *testing.T) {
	idx := Build([]byte("ACGT"))
	empty := Range{SP: 0, EP: -1}
	require.True(t, idx.ExtendLeft(empty, 'A').Empty())
}

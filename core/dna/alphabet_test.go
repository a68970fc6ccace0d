package dna

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverseComplementRoundTrip(t *testing.T) {
	cases := []string{"", "A", "ACGT", "NNNN", "ACGTN", "GATTACA"}
	for _, s := range cases {
		got := ReverseComplement(ReverseComplement(s))
		require.Equal(t, s, got, "round trip for %q", s)
	}
}

func TestReverseComplementKnown(t *testing.T) {
	require.Equal(t, "ACGT", ReverseComplement("ACGT"))
	require.Equal(t, "CCAT", ReverseComplement("ATGG"))
	require.Equal(t, "NGG", ReverseComplement("CCN"))
}

func TestValidateDNA(t *testing.T) {
	require.NoError(t, ValidateDNA("ACGTN"))
	require.Error(t, ValidateDNA("ACGTX"))
}

func TestExpandIUPACSingleBase(t *testing.T) {
	got := ExpandIUPAC("GG")
	require.Equal(t, []string{"GG"}, got)
}

func TestExpandIUPACN(t *testing.T) {
	got := ExpandIUPAC("NGG")
	sort.Strings(got)
	require.Equal(t, []string{"AGG", "CGG", "GGG", "TGG"}, got)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "ACGT", Normalize("  acgt\n"))
}

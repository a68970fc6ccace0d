package fastaio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractDNAConcatenatesSequenceLinesPerChromosome(t *testing.T) {
	fasta := ">chr1 first\nACGT\nACGT\n>chr2 second\nAAAAA\n"
	var dnaOut bytes.Buffer

	gs, err := ExtractDNA(strings.NewReader(fasta), &dnaOut)
	require.NoError(t, err)
	require.Equal(t, "ACGTACGTAAAAA", dnaOut.String())
	require.Len(t, gs.Chroms, 2)
	require.Equal(t, "chr1", gs.Chroms[0].Name)
	require.Equal(t, uint64(8), gs.Chroms[0].Length)
	require.Equal(t, "chr2", gs.Chroms[1].Name)
	require.Equal(t, uint64(5), gs.Chroms[1].Length)
}

func TestExtractDNALowercasesAreNormalizedToUppercase(t *testing.T) {
	var dnaOut bytes.Buffer
	_, err := ExtractDNA(strings.NewReader(">chr1\nacgtACGT\n"), &dnaOut)
	require.NoError(t, err)
	require.Equal(t, "ACGTACGT", dnaOut.String())
}

func TestExtractDNARejectsSequenceBeforeAnyHeader(t *testing.T) {
	var dnaOut bytes.Buffer
	_, err := ExtractDNA(strings.NewReader("ACGT\n>chr1\nACGT\n"), &dnaOut)
	require.Error(t, err)
}

func TestExtractDNARejectsInvalidBases(t *testing.T) {
	var dnaOut bytes.Buffer
	_, err := ExtractDNA(strings.NewReader(">chr1\nACGZ\n"), &dnaOut)
	require.Error(t, err)
}

func TestExtractDNAOnEmptyStreamYieldsNoChromosomes(t *testing.T) {
	var dnaOut bytes.Buffer
	gs, err := ExtractDNA(strings.NewReader(""), &dnaOut)
	require.NoError(t, err)
	require.Empty(t, gs.Chroms)
	require.Equal(t, "", dnaOut.String())
}

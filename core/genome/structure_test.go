package genome

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTwoChromosomes(t *testing.T) {
	fa := ">chr1\nACGTACGT\n>chr2\nAAAAA\n"
	gs, err := Parse(strings.NewReader(fa))
	require.NoError(t, err)
	require.Len(t, gs.Chroms, 2)
	require.Equal(t, Chromosome{Name: "chr1", Length: 8}, gs.Chroms[0])
	require.Equal(t, Chromosome{Name: "chr2", Length: 5}, gs.Chroms[1])
	require.Equal(t, uint64(13), gs.Total())
}

func TestParseEmptyGenome(t *testing.T) {
	gs, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, gs.Chroms)
	require.Equal(t, uint64(0), gs.Total())
}

func TestParseRejectsMissingLeadingHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("ACGT\n>chr1\nACGT\n"))
	require.Error(t, err)
}

func TestParseHeaderTakesFirstToken(t *testing.T) {
	gs, err := Parse(strings.NewReader(">chr1 some description here\nACGT\n"))
	require.NoError(t, err)
	require.Equal(t, "chr1", gs.Chroms[0].Name)
}

func TestResolveAbsolute(t *testing.T) {
	gs := NewStructure([]Chromosome{{Name: "chr1", Length: 8}, {Name: "chr2", Length: 5}})
	c, off := gs.ResolveAbsolute(0)
	require.Equal(t, "chr1", c.Name)
	require.Equal(t, uint64(0), off)

	c, off = gs.ResolveAbsolute(7)
	require.Equal(t, "chr1", c.Name)
	require.Equal(t, uint64(7), off)

	c, off = gs.ResolveAbsolute(8)
	require.Equal(t, "chr2", c.Name)
	require.Equal(t, uint64(0), off)

	c, off = gs.ResolveAbsolute(12)
	require.Equal(t, "chr2", c.Name)
	require.Equal(t, uint64(4), off)
}

func TestResolveAbsoluteOutOfRangePanics(t *testing.T) {
	gs := NewStructure([]Chromosome{{Name: "chr1", Length: 8}})
	require.Panics(t, func() { gs.ResolveAbsolute(8) })
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	gs := NewStructure([]Chromosome{{Name: "chr1", Length: 8}, {Name: "chr2", Length: 5}})
	var buf bytes.Buffer
	require.NoError(t, gs.Serialize(&buf))

	got, err := Deserialize(&buf)
	require.NoError(t, err)
	require.Equal(t, gs.Chroms, got.Chroms)
	require.Equal(t, gs.Total(), got.Total())
}

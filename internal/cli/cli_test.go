// internal/cli/cli_test.go
package cli

import (
	"bytes"
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *log.Logger {
	l := log.New()
	l.SetOutput(discardWriter{})
	return l
}

func TestSplitCommaListEmpty(t *testing.T) {
	require.Nil(t, splitCommaList(""))
}

func TestSplitCommaListSingle(t *testing.T) {
	require.Equal(t, []string{"NAG"}, splitCommaList("NAG"))
}

func TestSplitCommaListTrimsAndDropsEmptyEntries(t *testing.T) {
	require.Equal(t, []string{"NAG", "NGA"}, splitCommaList(" NAG ,, NGA ,"))
}

// The build subcommand requires --fasta and --out; running without them
// must fail with cobra's own "required flag(s)" error rather than ever
// reaching app.RunBuild.
func TestBuildCommandRequiresFastaAndOut(t *testing.T) {
	root := NewRootCommand(testLogger(), &bytes.Buffer{})
	err := Execute(context.Background(), root, []string{"build"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required flag(s)")
	require.Contains(t, err.Error(), "fasta")
	require.Contains(t, err.Error(), "out")
}

func TestBuildCommandAcceptsRequiredFlags(t *testing.T) {
	root := NewRootCommand(testLogger(), &bytes.Buffer{})
	root.SetArgs([]string{"build", "--fasta", "genome.fa", "--out", "guides.db"})
	// The genome file does not exist, so RunE will fail deeper inside
	// app.RunBuild; this only asserts flag parsing itself succeeded, i.e.
	// the error is not cobra's "required flag(s) not set".
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	require.NotContains(t, err.Error(), "required flag(s)")
}

// The query subcommand requires --index and --pattern.
func TestQueryCommandRequiresIndexAndPattern(t *testing.T) {
	root := NewRootCommand(testLogger(), &bytes.Buffer{})
	err := Execute(context.Background(), root, []string{"query"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required flag(s)")
	require.Contains(t, err.Error(), "index")
	require.Contains(t, err.Error(), "pattern")
}

func TestQueryCommandAcceptsRequiredFlags(t *testing.T) {
	root := NewRootCommand(testLogger(), &bytes.Buffer{})
	root.SetArgs([]string{"query", "--index", "genome.fa", "--pattern", "ACGT"})
	// The side files for "genome.fa" do not exist, so RunE fails deeper
	// inside app.RunQuery; this only asserts flag parsing succeeded.
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	require.NotContains(t, err.Error(), "required flag(s)")
}

func TestPrintQueryHitsWritesHeaderEvenWithNoHits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printQueryHits(&buf, nil))
	require.Equal(t, queryHeader+"\n", buf.String())
}

package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"grnadb-core/dna"
	"grnadb-core/fmindex"
	"grnadb-core/genome"
	"grnadb-core/kmer"
	"grnadb-core/offtarget"
	"grnadb-core/record"
)

// sliceProducer yields a fixed list of kmers, one per Next call, then
// exhausts. It has no internal locking of its own: pipeline.Run is
// responsible for serializing calls to it under the producer lock.
type sliceProducer struct {
	items []kmer.Kmer
	pos   int
}

func (p *sliceProducer) Next() (kmer.Kmer, bool) {
	if p.pos >= len(p.items) {
		return kmer.Kmer{}, false
	}
	k := p.items[p.pos]
	p.pos++
	return k, true
}

// recordingWriter collects every record it is asked to write, or fails
// every call once failAfter records have been accepted.
type recordingWriter struct {
	mu        sync.Mutex
	written   []*record.Record
	failAfter int
	failErr   error
}

func (w *recordingWriter) Write(rec *record.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failErr != nil && len(w.written) >= w.failAfter {
		return w.failErr
	}
	w.written = append(w.written, rec)
	return nil
}

func testLogger() *log.Logger {
	l := log.New()
	l.SetOutput(nopWriter{})
	return l
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func newSelfHitProcessor() *offtarget.Processor {
	seq := "GAAAGGG"
	gs := genome.NewStructure([]genome.Chromosome{{Name: "chr1", Length: uint64(len(seq))}})
	fwd := &fmindex.GenomeIndex{FM: fmindex.Build([]byte(seq)), GS: gs}
	rev := &fmindex.GenomeIndex{FM: fmindex.Build([]byte(dna.ReverseComplement(seq))), GS: gs}
	return offtarget.New(offtarget.Config{Mismatches: 0, PAMs: []string{"NGG"}}, fwd, rev)
}

func TestRunProcessesEveryKmerAndWritesRecords(t *testing.T) {
	producer := &sliceProducer{items: []kmer.Kmer{
		{Sequence: "GAA", PAM: "AGG", Absolute: 0, Strand: kmer.Forward},
	}}
	w := &recordingWriter{}
	proc := newSelfHitProcessor()

	err := Run(context.Background(), Config{Threads: 2}, producer, proc, w, testLogger())
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	require.Equal(t, "chr1", w.written[0].Chromosome)
}

func TestRunNormalizesZeroThreadsToOne(t *testing.T) {
	producer := &sliceProducer{items: []kmer.Kmer{
		{Sequence: "GAA", PAM: "AGG", Absolute: 0, Strand: kmer.Forward},
	}}
	w := &recordingWriter{}
	proc := newSelfHitProcessor()

	err := Run(context.Background(), Config{Threads: 0}, producer, proc, w, testLogger())
	require.NoError(t, err)
	require.Len(t, w.written, 1)
}

func TestRunStopsOnFatalWriterError(t *testing.T) {
	items := make([]kmer.Kmer, 50)
	for i := range items {
		items[i] = kmer.Kmer{Sequence: "GAA", PAM: "AGG", Absolute: 0, Strand: kmer.Forward}
	}
	producer := &sliceProducer{items: items}
	wantErr := errors.New("disk full")
	w := &recordingWriter{failAfter: 0, failErr: wantErr}
	proc := newSelfHitProcessor()

	err := Run(context.Background(), Config{Threads: 4}, producer, proc, w, testLogger())
	require.Error(t, err)
	require.ErrorIs(t, err, wantErr)
}

// internal/pipeline/pipeline.go
// Package pipeline implements the worker pool of spec.md §4.7/§5: a
// fixed set of goroutines pull k-mers from a single shared producer
// under a mutex, run the guide processor against each, and write
// completed records under a second mutex. A per-kmer processing
// failure is logged and skipped without stopping other workers; a
// writer failure is fatal and cancels the shared context so every
// worker drains.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"grnadb-core/kmer"
	"grnadb-core/offtarget"
	"grnadb-core/record"

	"grnadb/internal/errs"
)

// Config controls the worker pool.
type Config struct {
	Threads int // number of worker goroutines; <1 is normalized to 1
	// ProgressEvery logs a progress line every N kmers pulled from the
	// producer (0 disables progress logging).
	ProgressEvery uint64
}

// Writer is the output-record sink; internal/writer.Writer implements
// it. Run serializes calls to Write under its own output lock, so
// implementations need not be internally thread-safe.
type Writer interface {
	Write(*record.Record) error
}

// Run drives cfg.Threads workers to exhaustion of producer, processing
// each k-mer with proc and writing successful records through w. It
// returns the first fatal error encountered (a Writer failure,
// wrapped as an errs.IOError); per-kmer processing failures are logged
// via logger and do not appear in the returned error.
func Run(ctx context.Context, cfg Config, producer kmer.Producer, proc *offtarget.Processor, w Writer, logger *log.Logger) error {
	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		producerMu sync.Mutex
		outputMu   sync.Mutex
		fatalOnce  sync.Once
		fatalErr   error
		pulled     uint64
		emitted    uint64
		skipped    uint64
	)

	fail := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			cancel()
		})
	}

	var wg sync.WaitGroup
	wg.Add(threads)
	for i := 0; i < threads; i++ {
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				producerMu.Lock()
				k, ok := producer.Next()
				producerMu.Unlock()
				if !ok {
					return
				}
				n := atomic.AddUint64(&pulled, 1)
				if cfg.ProgressEvery > 0 && n%cfg.ProgressEvery == 0 {
					logger.WithFields(log.Fields{
						"pulled":  n,
						"emitted": atomic.LoadUint64(&emitted),
						"skipped": atomic.LoadUint64(&skipped),
					}).Info("build progress")
				}

				rec, err := proc.Process(k)
				if err != nil {
					atomic.AddUint64(&skipped, 1)
					logger.WithFields(log.Fields{
						"kind":   errs.InternalError.String(),
						"kmer":   k.Sequence,
						"strand": string([]byte{byte(k.Strand)}),
						"worker": worker,
					}).WithError(err).Warn("skipping kmer after processing error")
					continue
				}
				if rec == nil {
					// Dropped by the uniqueness gate; not an error.
					continue
				}

				outputMu.Lock()
				werr := w.Write(rec)
				outputMu.Unlock()
				if werr != nil {
					fail(errs.New(errs.IOError, "record writer", werr))
					return
				}
				atomic.AddUint64(&emitted, 1)
			}
		}(i)
	}
	wg.Wait()

	return fatalErr
}

// internal/app/build.go
// Package app wires the core components together into the two
// operations the CLI exposes: building a guide/off-target database
// from a genome FASTA, and running an ad-hoc pattern query against an
// already-indexed genome. Grounded on the teacher's internal/app/app.go
// orchestration shape: parse options, construct the engine, run the
// pipeline, flush the writer, return the first fatal error for the
// caller to map to an exit code.
package app

import (
	"context"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"

	"grnadb-core/dna"
	"grnadb-core/kmer"
	"grnadb-core/offtarget"

	"grnadb/internal/errs"
	"grnadb/internal/indexstore"
	"grnadb/internal/pipeline"
	"grnadb/internal/writer"
)

// BuildOptions controls the build command (spec.md §6).
type BuildOptions struct {
	FastaPath  string
	OutPath    string
	PAM        string
	AltPAMs    []string
	KmerLength int
	Mismatches int
	Threshold  int
	Threads    int
	KmersFile  string // optional; when set, k-mers are read from this file instead of scanned from the genome
}

// normalizedPAMs validates and returns the union of the primary and
// alternate PAM patterns.
func (o BuildOptions) normalizedPAMs() ([]string, error) {
	pams := append([]string{o.PAM}, o.AltPAMs...)
	for _, p := range pams {
		if err := dna.ValidatePAM(p); err != nil {
			return nil, errs.New(errs.InputError, p, err)
		}
	}
	return pams, nil
}

// RunBuild executes the build command end to end: load or construct
// the genome indices, select a k-mer producer, run the worker pool,
// and flush the writer. It returns the first fatal error encountered;
// per spec.md §7, construction-time failures abort before any worker
// starts, and writer failures are fatal.
func RunBuild(ctx context.Context, opts BuildOptions, logger *log.Logger) error {
	pams, err := opts.normalizedPAMs()
	if err != nil {
		return err
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	indices, err := indexstore.Load(opts.FastaPath, logger)
	if err != nil {
		return err
	}

	dnaPath, _, _ := indexstore.Paths(opts.FastaPath)
	producer, cleanup, err := opts.buildProducer(dnaPath)
	if err != nil {
		return err
	}
	defer cleanup()

	outFile, err := os.Create(opts.OutPath)
	if err != nil {
		return errs.New(errs.IOError, opts.OutPath, err)
	}
	defer outFile.Close()

	w, err := writer.New(outFile, indices.Structure, opts.Mismatches)
	if err != nil {
		return errs.New(errs.IOError, opts.OutPath, err)
	}

	proc := offtarget.New(offtarget.Config{
		Mismatches: opts.Mismatches,
		Threshold:  opts.Threshold,
		PAMs:       pams,
	}, indices.Forward, indices.Reverse)

	pcfg := pipeline.Config{Threads: threads, ProgressEvery: 250000}
	if err := pipeline.Run(ctx, pcfg, producer, proc, w, logger); err != nil {
		return err
	}

	if fp, ok := producer.(*kmer.FileProducer); ok {
		if ferr := fp.Err(); ferr != nil {
			return errs.New(errs.FormatError, opts.KmersFile, ferr)
		}
	}

	if err := w.Flush(); err != nil {
		return errs.New(errs.IOError, opts.OutPath, err)
	}
	return nil
}

// buildProducer selects the genomic-scan producer or the file-driven
// producer per opts, returning a cleanup func to close any opened
// file handle.
func (o BuildOptions) buildProducer(dnaPath string) (kmer.Producer, func(), error) {
	if o.KmersFile != "" {
		f, err := os.Open(o.KmersFile)
		if err != nil {
			return nil, func() {}, errs.New(errs.IOError, o.KmersFile, err)
		}
		return kmer.NewFileProducer(f, o.KmersFile), func() { _ = f.Close() }, nil
	}

	seq, err := os.ReadFile(dnaPath)
	if err != nil {
		return nil, func() {}, errs.New(errs.IOError, dnaPath, err)
	}
	return kmer.NewGenomicProducer(seq, o.KmerLength, o.PAM), func() {}, nil
}

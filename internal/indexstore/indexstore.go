// internal/indexstore/indexstore.go
// Package indexstore manages the build pipeline's side files (spec.md
// §6): "<fasta>.dna" (raw concatenated uppercase sequence), "<fasta>.gs"
// (chromosome structure), and "<fasta>.csa" (serialized FM-indices for
// both orientations). It rebuilds them only when missing or older than
// the source FASTA, an ambient feature spec.md implies ("created once,
// reused") but does not detail, grounded on the teacher's
// gzip-sniffing openReader for the "check before doing expensive I/O
// again" shape.
package indexstore

import (
	"bufio"
	"os"

	log "github.com/sirupsen/logrus"

	"grnadb-core/dna"
	"grnadb-core/fmindex"
	"grnadb-core/genome"

	"grnadb/internal/errs"
	"grnadb/internal/fastaio"
)

// Paths returns the three side-file paths derived from a FASTA path.
func Paths(fastaPath string) (dnaPath, gsPath, csaPath string) {
	return fastaPath + ".dna", fastaPath + ".gs", fastaPath + ".csa"
}

// Indices bundles the two genome-index orientations built from one
// genome, plus the shared chromosome structure.
type Indices struct {
	Forward   *fmindex.GenomeIndex
	Reverse   *fmindex.GenomeIndex
	Structure *genome.Structure
}

// Load builds or reuses the side files for fastaPath and returns the
// forward and reverse-complement FM-indices over it. Side files are
// rebuilt when any of them is missing or older than fastaPath.
func Load(fastaPath string, logger *log.Logger) (*Indices, error) {
	dnaPath, gsPath, csaPath := Paths(fastaPath)

	if fresh(fastaPath, dnaPath, gsPath, csaPath) {
		logger.WithField("fasta", fastaPath).Info("reusing existing index side files")
		return loadSideFiles(dnaPath, gsPath, csaPath)
	}

	logger.WithField("fasta", fastaPath).Info("building index side files")
	return build(fastaPath, dnaPath, gsPath, csaPath, logger)
}

// fresh reports whether every side file exists and is at least as new
// as fastaPath.
func fresh(fastaPath, dnaPath, gsPath, csaPath string) bool {
	src, err := os.Stat(fastaPath)
	if err != nil {
		return false
	}
	for _, p := range []string{dnaPath, gsPath, csaPath} {
		st, err := os.Stat(p)
		if err != nil || st.ModTime().Before(src.ModTime()) {
			return false
		}
	}
	return true
}

func build(fastaPath, dnaPath, gsPath, csaPath string, logger *log.Logger) (*Indices, error) {
	in, err := fastaio.Open(fastaPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	dnaFile, err := os.Create(dnaPath)
	if err != nil {
		return nil, errs.New(errs.IOError, dnaPath, err)
	}
	defer dnaFile.Close()

	gs, err := fastaio.ExtractDNA(in, dnaFile)
	if err != nil {
		return nil, err
	}

	dnaBytes, err := os.ReadFile(dnaPath)
	if err != nil {
		return nil, errs.New(errs.IOError, dnaPath, err)
	}

	gsFile, err := os.Create(gsPath)
	if err != nil {
		return nil, errs.New(errs.IOError, gsPath, err)
	}
	if err := gs.Serialize(gsFile); err != nil {
		gsFile.Close()
		return nil, errs.New(errs.IOError, gsPath, err)
	}
	if err := gsFile.Close(); err != nil {
		return nil, errs.New(errs.IOError, gsPath, err)
	}

	logger.WithField("bases", len(dnaBytes)).Info("building forward FM-index")
	forwardFM := fmindex.Build(dnaBytes)

	rcBytes := []byte(dna.ReverseComplement(string(dnaBytes)))
	logger.WithField("bases", len(rcBytes)).Info("building reverse-complement FM-index")
	reverseFM := fmindex.Build(rcBytes)

	csaFile, err := os.Create(csaPath)
	if err != nil {
		return nil, errs.New(errs.IndexError, csaPath, err)
	}
	if err := forwardFM.Save(csaFile); err != nil {
		csaFile.Close()
		return nil, errs.New(errs.IndexError, csaPath, err)
	}
	if err := reverseFM.Save(csaFile); err != nil {
		csaFile.Close()
		return nil, errs.New(errs.IndexError, csaPath, err)
	}
	if err := csaFile.Close(); err != nil {
		return nil, errs.New(errs.IndexError, csaPath, err)
	}

	return &Indices{
		Forward:   &fmindex.GenomeIndex{FM: forwardFM, GS: gs},
		Reverse:   &fmindex.GenomeIndex{FM: reverseFM, GS: gs},
		Structure: gs,
	}, nil
}

func loadSideFiles(dnaPath, gsPath, csaPath string) (*Indices, error) {
	gsFile, err := os.Open(gsPath)
	if err != nil {
		return nil, errs.New(errs.IOError, gsPath, err)
	}
	defer gsFile.Close()
	gs, err := genome.Deserialize(gsFile)
	if err != nil {
		return nil, errs.New(errs.IOError, gsPath, err)
	}

	csaFile, err := os.Open(csaPath)
	if err != nil {
		return nil, errs.New(errs.IndexError, csaPath, err)
	}
	defer csaFile.Close()
	// Both indices are read through one shared buffered reader: a fresh
	// buffer per Load would read past the end of the forward index and
	// leave the reverse one unreadable. fmindex.Load reuses a
	// *bufio.Reader of default size as is, so gob decodes exactly one
	// index per call.
	csaReader := bufio.NewReader(csaFile)
	forwardFM, err := fmindex.Load(csaReader)
	if err != nil {
		return nil, errs.New(errs.IndexError, csaPath, err)
	}
	reverseFM, err := fmindex.Load(csaReader)
	if err != nil {
		return nil, errs.New(errs.IndexError, csaPath, err)
	}

	// dnaPath is not needed once the FM-indices are loaded, but its
	// presence was already required by fresh(); confirm it still exists.
	// This is a Stat only: the file's contents are not read or checked.
	if _, err := os.Stat(dnaPath); err != nil {
		return nil, errs.New(errs.IOError, dnaPath, err)
	}

	return &Indices{
		Forward:   &fmindex.GenomeIndex{FM: forwardFM, GS: gs},
		Reverse:   &fmindex.GenomeIndex{FM: reverseFM, GS: gs},
		Structure: gs,
	}, nil
}

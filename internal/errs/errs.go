// internal/errs/errs.go
// Package errs implements the error taxonomy of spec.md §7: five kinds
// of failure, each carrying the offending input (a file name, a line
// number, or a kmer identity) so the boundary that logs an error can
// report it in one line without re-deriving context.
package errs

import "fmt"

// Kind classifies a failure per spec.md §7.
type Kind int

const (
	// InputError covers a missing FASTA, a malformed header, or
	// illegal characters in genomic or PAM input.
	InputError Kind = iota
	// IndexError covers FM-index construction or load failure.
	IndexError
	// FormatError covers a malformed kmer-file record.
	FormatError
	// IOError covers a disk read/write failure.
	IOError
	// InternalError indicates an invariant violation (a bug), such as
	// Locate returning an out-of-range row.
	InternalError
)

func (k Kind) String() string {
	switch k {
	case InputError:
		return "InputError"
	case IndexError:
		return "IndexError"
	case FormatError:
		return "FormatError"
	case IOError:
		return "IOError"
	case InternalError:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// Error wraps a Kind with the offending input and, optionally, the
// underlying cause.
type Error struct {
	Kind  Kind
	Input string // file name, "<file>:<line>", or a kmer identity
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Input, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Input)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind for the given input, wrapping
// cause if non-nil.
func New(kind Kind, input string, cause error) *Error {
	return &Error{Kind: kind, Input: input, Err: cause}
}

// Fatal reports whether an error of this kind must abort the whole run
// rather than being logged and skipped: construction-time failures
// (InputError, IndexError) and IOError from the writer are fatal;
// FormatError and InternalError encountered while processing a single
// kmer are not, per spec.md §7's "per-kmer failures ... are caught,
// logged, and skipped" rule — callers in the worker loop decide that
// distinction contextually, so Fatal here only covers the
// construction-time defaults used by internal/app.
func Fatal(kind Kind) bool {
	return kind == InputError || kind == IndexError
}

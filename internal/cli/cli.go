// internal/cli/cli.go
// Package cli defines the grnadb command line: two subcommands on one
// binary (spec.md §6), "build" and "query", wired with
// github.com/spf13/cobra rather than the teacher's stdlib flag.FlagSet,
// per SPEC_FULL.md's third-party-first mandate for external
// command-line parsing. Grounded on other_examples/shenwei356-LexicMap's
// cobra subcommand wiring (one *cobra.Command per operation, flags bound
// with typed accessors, RunE returning an error rather than calling
// os.Exit directly so the entry point owns the exit-code mapping).
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"

	"grnadb/internal/app"
)

// NewRootCommand builds the grnadb command tree. logger receives
// progress and warning output; stdout receives query results.
func NewRootCommand(logger *log.Logger, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "grnadb",
		Short:         "whole-genome CRISPR guide off-target database builder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCommand(logger), newQueryCommand(logger, stdout))
	return root
}

func newBuildCommand(logger *log.Logger) *cobra.Command {
	var opts app.BuildOptions
	var altPAMs string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "scan a genome FASTA and write a guide/off-target database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if altPAMs != "" {
				opts.AltPAMs = splitCommaList(altPAMs)
			}
			return app.RunBuild(cmd.Context(), opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.FastaPath, "fasta", "", "input genome FASTA path (required; may be gzip-compressed)")
	flags.StringVar(&opts.OutPath, "out", "", "output database path (required)")
	flags.StringVar(&opts.PAM, "pam", "NGG", "primary PAM pattern (IUPAC-coded)")
	flags.StringVar(&altPAMs, "alt-pam", "NAG", "comma-separated alternate PAM patterns")
	flags.IntVar(&opts.KmerLength, "kmer-length", 20, "protospacer length")
	flags.IntVar(&opts.Mismatches, "mismatches", 3, "maximum mismatches to enumerate per guide")
	flags.IntVar(&opts.Threshold, "threshold", 0, "uniqueness-gate mismatch budget (0 disables the gate)")
	flags.IntVar(&opts.Threads, "threads", 0, "worker goroutines (0 = number of CPUs)")
	flags.StringVar(&opts.KmersFile, "kmers-file", "", "read candidate k-mers from this file instead of scanning the genome")
	_ = cmd.MarkFlagRequired("fasta")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newQueryCommand(logger *log.Logger, stdout io.Writer) *cobra.Command {
	var opts app.QueryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "search a pattern against an already-indexed genome",
		RunE: func(cmd *cobra.Command, args []string) error {
			hits, err := app.RunQuery(opts, logger)
			if err != nil {
				return err
			}
			return printQueryHits(stdout, hits)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.FastaPath, "index", "", "genome FASTA path whose side files should already exist (required)")
	flags.StringVar(&opts.Pattern, "pattern", "", "DNA pattern to search for (required)")
	flags.IntVar(&opts.Mismatches, "mismatches", 0, "maximum mismatches to allow")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("pattern")

	return cmd
}

const queryHeader = "chromosome\toffset\tabsolute_position\tstrand\tdistance"

func printQueryHits(w io.Writer, hits []app.QueryHit) error {
	if _, err := fmt.Fprintln(w, queryHeader); err != nil {
		return err
	}
	for _, h := range hits {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%c\t%d\n", h.Chromosome, h.Offset, h.AbsolutePosition, byte(h.Strand), h.Distance); err != nil {
			return err
		}
	}
	return nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Execute runs root against argv, returning the error RunE produced
// (if any) for the entry point to map to an exit code.
func Execute(ctx context.Context, root *cobra.Command, argv []string) error {
	root.SetArgs(argv)
	return root.ExecuteContext(ctx)
}

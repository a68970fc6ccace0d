// cmd/grnadb/main.go
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"grnadb/internal/cli"
)

// run builds the command tree, executes it against argv, and returns
// the process exit code: 0 on success, 1 on any error. spec.md §9
// Open Question 3 collapses the original two drivers into this single
// binary, and the teacher's three-exit-code (0/2/3) convention becomes
// this two-valued contract.
// stderr is written to directly rather than buffered, so the
// progress lines internal/pipeline logs during a multi-gigabase build
// (SPEC_FULL.md §11) reach the terminal as they happen instead of
// arriving as one backlog after the process exits.
func run(argv []string, stdout, stderr io.Writer) int {
	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	root := cli.NewRootCommand(logger, stdout)
	if err := cli.Execute(context.Background(), root, argv); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func main() {
	var out bytes.Buffer
	code := run(os.Args[1:], &out, os.Stderr)

	if out.Len() > 0 {
		fmt.Print(out.String())
	}
	os.Exit(code)
}

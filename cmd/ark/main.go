// Command ark is the minimal run/REPL front-end for the Arkaan
// language: given a file argument it compiles and runs that file; with
// no arguments it starts an interactive REPL. Error reporting is plain
// fmt.Fprintf(os.Stderr, ...) with no structured logger.
package main

import (
	"fmt"
	"os"

	"github.com/juanco-itmu/arkaan-taal/internal/config"
)

func main() {
	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "gebruik: %s [lêer%s]\n", os.Args[0], config.SourceFileExtensions[0])
		os.Exit(2)
	}

	if len(os.Args) == 2 {
		if err := runFile(os.Args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	runREPL()
}

func runFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("kan nie lêer lees nie: %w", err)
	}
	return evalSource(string(src))
}

// Package app defines what the erc20d binaries share: the Runner contract
// and how its failure ends the process.
package app

import (
	"fmt"
	"io"
	"os"
)

// Runner is a long running component, such as the ledger server, that
// blocks until it is told to stop or fails.
type Runner interface {
	Run() error
}

// Exit runs r and returns the process exit status, reporting a failure to
// stderr under name.
func Exit(name string, r Runner) int {
	return exit(os.Stderr, name, r)
}

func exit(stderr io.Writer, name string, r Runner) int {
	if err := r.Run(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

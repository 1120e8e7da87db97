// Command threadboard is a threaded discussion board kept in a local
// SQLite database.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/threadboard/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "threadboard: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

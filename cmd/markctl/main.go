// Command markctl is the command line client for the markintel API.
package main

import (
	"fmt"
	"os"

	"github.com/wirkancil/markintel/internal/interfaces/cli"
)

// Populated at build time through -ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command pgdict translates dictionary operations into PostgreSQL
// expressions over hstore, json and jsonb columns.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pgdict/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// Command sumdb is a typed document store whose tables are tagged unions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/sumdb/internal/cli"
)

func main() {
	err := cli.NewRootCommand().ExecuteContext(context.Background())
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}

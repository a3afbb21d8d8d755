package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"contractbundle/internal/cli"
)

// main only translates the run outcome to a process exit status; all
// canonicalization happens inside cli.Run before any file is touched.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	result, err := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(result.ExitCode)
}

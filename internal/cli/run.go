package cli

import (
	"context"
	"io"
)

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the semantic
// exit code plus any error.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) (CLIResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if args == nil {
		args = []string{}
	}

	var res CLIResult
	root := NewRootCommand(stdout, stderr, &res)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	res.ExitCode = ExitCode(err)
	return res, err
}

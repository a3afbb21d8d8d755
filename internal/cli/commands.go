package cli

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"contractbundle/internal/bytecode"
	"contractbundle/internal/core"
)

// NewRootCommand builds the command tree. The outcome of a packaging run is
// stored in result.
func NewRootCommand(stdout, stderr io.Writer, result *CLIResult) *cobra.Command {
	var v *viper.Viper

	root := &cobra.Command{
		Use:   "contractbundle",
		Short: "Package a compiled contract artifact as a JavaScript module",
		Long: `Reads a compiled contract artifact (e.g. a solc .bin file) and writes an ES
module that default-exports its contents as a string, plus a TypeScript
declaration typing that export.`,
		Args:          noArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			v, err = newViper(cmd.Flags())
			if err != nil {
				return err
			}
			level, err := parseLogLevel(v.GetString(flagLogLevel))
			if err != nil {
				return err
			}
			format, err := parseLogFormat(v.GetString(flagLogFormat))
			if err != nil {
				return err
			}
			logger := newLogger(level, format, stderr)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := ParseInvocation(v)
			if err != nil {
				return err
			}
			res, err := Execute(cmd.Context(), inv)
			if result != nil {
				*result = res
			}
			return err
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocationf("%v", err)
	})

	addGlobalFlags(root.PersistentFlags())
	addPackageFlags(root.Flags())

	root.AddCommand(
		inspectCmd(stdout, func() *viper.Viper { return v }),
		versionCmd(stdout),
	)
	return root
}

func inspectCmd(stdout io.Writer, settings func() *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [path]",
		Short: "Print the size and code hash of a hex-encoded bytecode artifact",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := settings()
			workDir, err := resolveWorkDir(v.GetString(flagWorkDir))
			if err != nil {
				return err
			}
			raw := v.GetString(flagInput)
			if len(args) == 1 {
				raw = args[0]
			}
			path, err := resolveUnderWorkDir(workDir, flagInput, raw)
			if err != nil {
				return err
			}

			artifact, err := core.LoadArtifact(afero.NewOsFs(), path, nil)
			if err != nil {
				return err
			}
			info, err := bytecode.Inspect(artifact.Content)
			if err != nil {
				return &core.VerificationError{Path: path, Err: err}
			}

			limit := "within limit"
			if info.ExceedsInitCodeLimit {
				limit = "exceeds limit"
			}
			fmt.Fprintf(stdout, "path:      %s\n", path)
			fmt.Fprintf(stdout, "size:      %d bytes\n", info.Size)
			fmt.Fprintf(stdout, "code hash: %s\n", info.CodeHash.Hex())
			fmt.Fprintf(stdout, "init code: %s\n", limit)
			return nil
		},
	}
}

func versionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  noArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(stdout, GetVersion())
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return invalidInvocationf("%s: unexpected argument %q", cmd.CommandPath(), args[0])
	}
	return nil
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return invalidInvocationf("%s: accepts at most %d argument(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"contractbundle/internal/core"
)

const (
	ExitSuccess           = 0
	ExitPackageFailure    = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
	ExitStaleOutputs      = 5
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type TraceConfig struct {
	Enabled bool
	Path    string
}

// Invocation is the fully canonicalized description of a run.
//
// All paths are absolute and cleaned; relative inputs were resolved against
// WorkDir. Nothing downstream consults the process working directory.
type Invocation struct {
	WorkDir         string
	InputPath       string
	ModulePath      string
	DeclarationPath string
	ExportName      string
	Trace           TraceConfig

	Check                bool
	VerifyBytecode       bool
	AllowOversized       bool
	NormalizeLineEndings bool

	LogLevel  zerolog.Level
	LogFormat string
}

// Request converts the invocation into a packaging request.
func (inv Invocation) Request() core.Request {
	return core.Request{
		InputPath:       inv.InputPath,
		ModulePath:      inv.ModulePath,
		DeclarationPath: inv.DeclarationPath,
		ExportName:      inv.ExportName,
	}
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ConfigError reports an unreadable or unparsable config file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("config %q: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// getwd is replaced in tests.
var getwd = os.Getwd

// ParseInvocation canonicalizes resolved settings into an Invocation.
//
//   - --workdir defaults to the process working directory and is made absolute.
//   - Every other path is resolved against WorkDir.
//   - Log level and format are validated here so that a bad value fails
//     before any file is touched.
func ParseInvocation(v *viper.Viper) (Invocation, error) {
	workDir, err := resolveWorkDir(v.GetString(flagWorkDir))
	if err != nil {
		return Invocation{}, err
	}

	inv := Invocation{
		WorkDir:              workDir,
		ExportName:           strings.TrimSpace(v.GetString(flagExportName)),
		Check:                v.GetBool(flagCheck),
		VerifyBytecode:       v.GetBool(flagVerifyBytecode),
		AllowOversized:       v.GetBool(flagAllowOversized),
		NormalizeLineEndings: v.GetBool(flagNormalizeLineEndings),
	}
	if inv.ExportName == "" {
		return Invocation{}, invalidInvocationf("--%s must not be empty", flagExportName)
	}

	for _, p := range []struct {
		flag string
		dst  *string
	}{
		{flagInput, &inv.InputPath},
		{flagModule, &inv.ModulePath},
		{flagDeclaration, &inv.DeclarationPath},
	} {
		resolved, err := resolveUnderWorkDir(workDir, p.flag, v.GetString(p.flag))
		if err != nil {
			return Invocation{}, err
		}
		*p.dst = resolved
	}

	if tracePath := v.GetString(flagTrace); strings.TrimSpace(tracePath) != "" {
		resolved, err := resolveUnderWorkDir(workDir, flagTrace, tracePath)
		if err != nil {
			return Invocation{}, err
		}
		inv.Trace = TraceConfig{Enabled: true, Path: resolved}
	}

	inv.LogLevel, err = parseLogLevel(v.GetString(flagLogLevel))
	if err != nil {
		return Invocation{}, err
	}
	inv.LogFormat, err = parseLogFormat(v.GetString(flagLogFormat))
	if err != nil {
		return Invocation{}, err
	}
	return inv, nil
}

func resolveWorkDir(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		wd, err := getwd()
		if err != nil {
			return "", errors.Wrap(err, "determine working directory")
		}
		raw = wd
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", invalidInvocationf("--%s %q cannot be made absolute: %v", flagWorkDir, raw, err)
	}
	return filepath.Clean(abs), nil
}

func resolveUnderWorkDir(workDir, flag, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", invalidInvocationf("--%s must not be empty", flag)
	}
	clean := filepath.Clean(p)
	if clean == "." {
		return "", invalidInvocationf("--%s must name a file, got %q", flag, p)
	}
	if filepath.IsAbs(clean) {
		return clean, nil
	}
	return filepath.Join(workDir, clean), nil
}

func parseLogLevel(raw string) (zerolog.Level, error) {
	n := strings.ToLower(strings.TrimSpace(raw))
	switch n {
	case "debug", "info", "warn", "error":
		return zerolog.ParseLevel(n)
	default:
		return zerolog.NoLevel, invalidInvocationf("invalid --%s %q (expected debug|info|warn|error)", flagLogLevel, raw)
	}
}

func parseLogFormat(raw string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(raw))
	switch n {
	case LogFormatConsole, LogFormatJSON:
		return n, nil
	default:
		return "", invalidInvocationf("invalid --%s %q (expected console|json)", flagLogFormat, raw)
	}
}

// ExitCode maps an error from any stage of a run to a semantic exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}

	var (
		reqErr       *core.RequestError
		cfgErr       *ConfigError
		staleErr     *core.StaleOutputError
		readErr      *core.ReadError
		writeErr     *core.WriteError
		malformedErr *core.MalformedArtifactError
		verifyErr    *core.VerificationError
	)
	switch {
	case errors.As(err, &reqErr):
		return ExitInvalidInvocation
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &staleErr):
		return ExitStaleOutputs
	case errors.As(err, &readErr), errors.As(err, &writeErr),
		errors.As(err, &malformedErr), errors.As(err, &verifyErr):
		return ExitPackageFailure
	default:
		return ExitInternalError
	}
}

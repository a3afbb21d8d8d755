package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractbundle/internal/core"
)

func parseArgs(t *testing.T, args ...string) (Invocation, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addGlobalFlags(fs)
	addPackageFlags(fs)
	require.NoError(t, fs.Parse(args))
	v, err := newViper(fs)
	if err != nil {
		return Invocation{}, err
	}
	return ParseInvocation(v)
}

func TestParseInvocation_DefaultsResolveUnderWorkDir(t *testing.T) {
	workDir := t.TempDir()

	inv, err := parseArgs(t, "--workdir", workDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(workDir), inv.WorkDir)
	assert.Equal(t, filepath.Join(workDir, DefaultInputPath), inv.InputPath)
	assert.Equal(t, filepath.Join(workDir, DefaultModulePath), inv.ModulePath)
	assert.Equal(t, filepath.Join(workDir, DefaultDeclarationPath), inv.DeclarationPath)
	assert.Equal(t, core.DefaultExportName, inv.ExportName)
	assert.False(t, inv.Trace.Enabled)
	assert.False(t, inv.Check)
	assert.Equal(t, zerolog.InfoLevel, inv.LogLevel)
	assert.Equal(t, LogFormatConsole, inv.LogFormat)
}

func TestParseInvocation_CanonicalizesPaths(t *testing.T) {
	workDir := t.TempDir()
	args := []string{
		"--workdir", workDir,
		"--input", "build/../build/Token.bin",
		"--module", "./out//index.js",
		"--declaration", "out/./index.d.ts",
		"--trace", "traces/../trace.json",
	}

	inv1, err := parseArgs(t, args...)
	require.NoError(t, err)
	inv2, err := parseArgs(t, args...)
	require.NoError(t, err)
	assert.Equal(t, inv1, inv2)

	assert.Equal(t, filepath.Join(workDir, "build", "Token.bin"), inv1.InputPath)
	assert.Equal(t, filepath.Join(workDir, "out", "index.js"), inv1.ModulePath)
	assert.Equal(t, filepath.Join(workDir, "out", "index.d.ts"), inv1.DeclarationPath)
	assert.Equal(t, TraceConfig{Enabled: true, Path: filepath.Join(workDir, "trace.json")}, inv1.Trace)
}

func TestParseInvocation_AbsolutePathsKept(t *testing.T) {
	workDir := t.TempDir()
	elsewhere := t.TempDir()
	input := filepath.Join(elsewhere, "a.bin")

	inv, err := parseArgs(t, "--workdir", workDir, "--input", input)
	require.NoError(t, err)
	assert.Equal(t, input, inv.InputPath)
}

func TestParseInvocation_WorkDirDefaultsToGetwd(t *testing.T) {
	cwd := t.TempDir()
	old := getwd
	getwd = func() (string, error) { return cwd, nil }
	t.Cleanup(func() { getwd = old })

	inv, err := parseArgs(t)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(cwd), inv.WorkDir)
	assert.Equal(t, filepath.Join(cwd, DefaultModulePath), inv.ModulePath)
}

func TestParseInvocation_ResolvesAgainstWorkDirNotCwd(t *testing.T) {
	workDir := t.TempDir()
	otherCwd := t.TempDir()

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })
	require.NoError(t, os.Chdir(otherCwd))

	inv, err := parseArgs(t, "--workdir", workDir, "--input", "a.bin")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "a.bin"), inv.InputPath)
}

func TestParseInvocation_EnvironmentOverridesDefault(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("CONTRACTBUNDLE_EXPORT_NAME", "bytecode")
	t.Setenv("CONTRACTBUNDLE_CHECK", "true")
	t.Setenv("CONTRACTBUNDLE_MODULE", "lib/index.js")

	inv, err := parseArgs(t, "--workdir", workDir)
	require.NoError(t, err)
	assert.Equal(t, "bytecode", inv.ExportName)
	assert.True(t, inv.Check)
	assert.Equal(t, filepath.Join(workDir, "lib", "index.js"), inv.ModulePath)
}

func TestParseInvocation_FlagOverridesEnvironment(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("CONTRACTBUNDLE_EXPORT_NAME", "fromEnv")

	inv, err := parseArgs(t, "--workdir", workDir, "--export-name", "fromFlag")
	require.NoError(t, err)
	assert.Equal(t, "fromFlag", inv.ExportName)
}

func TestParseInvocation_ConfigFile(t *testing.T) {
	workDir := t.TempDir()
	cfg := "export-name: fromFile\nmodule: gen/index.js\nnormalize-line-endings: true\nlog-level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "bundle.yaml"), []byte(cfg), 0o644))

	inv, err := parseArgs(t, "--workdir", workDir, "--config", "bundle.yaml")
	require.NoError(t, err)
	assert.Equal(t, "fromFile", inv.ExportName)
	assert.Equal(t, filepath.Join(workDir, "gen", "index.js"), inv.ModulePath)
	assert.True(t, inv.NormalizeLineEndings)
	assert.Equal(t, zerolog.DebugLevel, inv.LogLevel)

	t.Setenv("CONTRACTBUNDLE_EXPORT_NAME", "fromEnv")
	inv, err = parseArgs(t, "--workdir", workDir, "--config", "bundle.yaml")
	require.NoError(t, err)
	assert.Equal(t, "fromEnv", inv.ExportName)
}

func TestParseInvocation_MissingConfigFile(t *testing.T) {
	workDir := t.TempDir()

	_, err := parseArgs(t, "--workdir", workDir, "--config", "absent.yaml")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, filepath.Join(workDir, "absent.yaml"), cfgErr.Path)
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestParseInvocation_InvalidValues(t *testing.T) {
	workDir := t.TempDir()
	cases := map[string][]string{
		"empty input":       {"--input", ""},
		"dot module":        {"--module", "."},
		"empty export":      {"--export-name", " "},
		"bad log level":     {"--log-level", "verbose"},
		"bad log format":    {"--log-format", "xml"},
		"blank declaration": {"--declaration", "   "},
	}
	for name, extra := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseArgs(t, append([]string{"--workdir", workDir}, extra...)...)
			require.Error(t, err)
			var invErr *InvocationError
			require.ErrorAs(t, err, &invErr)
			assert.Equal(t, ExitInvalidInvocation, ExitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invocation", invalidInvocationf("bad"), ExitInvalidInvocation},
		{"request", &core.RequestError{Field: "ExportName", Msg: "reserved"}, ExitInvalidInvocation},
		{"config", &ConfigError{Path: "c.yaml", Err: os.ErrNotExist}, ExitConfigError},
		{"stale", &core.StaleOutputError{}, ExitStaleOutputs},
		{"read", &core.ReadError{Path: "a", Err: os.ErrNotExist}, ExitPackageFailure},
		{"write", &core.WriteError{Path: "b", Output: core.OutputModule, Err: os.ErrPermission}, ExitPackageFailure},
		{"malformed", &core.MalformedArtifactError{Path: "a", Offset: 3}, ExitPackageFailure},
		{"verification", &core.VerificationError{Path: "a", Err: errors.New("nope")}, ExitPackageFailure},
		{"wrapped read", errors.Wrap(&core.ReadError{Path: "a", Err: os.ErrNotExist}, "run"), ExitPackageFailure},
		{"unknown", errors.New("boom"), ExitInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	flagWorkDir              = "workdir"
	flagInput                = "input"
	flagModule               = "module"
	flagDeclaration          = "declaration"
	flagExportName           = "export-name"
	flagTrace                = "trace"
	flagCheck                = "check"
	flagVerifyBytecode       = "verify-bytecode"
	flagAllowOversized       = "allow-oversized"
	flagNormalizeLineEndings = "normalize-line-endings"
	flagConfig               = "config"
	flagLogLevel             = "log-level"
	flagLogFormat            = "log-format"
)

// EnvPrefix prefixes every environment override, e.g. CONTRACTBUNDLE_INPUT.
const EnvPrefix = "CONTRACTBUNDLE"

// Defaults reproduce the layout of the ethereum dist bundle, relative to the
// working directory.
const (
	DefaultInputPath       = "dist/ethereum/src_ethereum_ERC20MultisigWithdrawals_sol_ERC20MultisigWithdrawals.bin"
	DefaultModulePath      = "dist/ethereum/index.js"
	DefaultDeclarationPath = "dist/ethereum/index.d.ts"
)

// addGlobalFlags registers flags shared by every command.
func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String(flagWorkDir, "", "Directory relative paths resolve against (default: current directory).")
	fs.String(flagConfig, "", "Config file (yaml, toml or json) with flag names as keys.")
	fs.String(flagLogLevel, "info", "Log level: debug|info|warn|error.")
	fs.String(flagLogFormat, LogFormatConsole, "Log format: console|json.")
	fs.String(flagInput, DefaultInputPath, "Compiled contract artifact to package.")
}

// addPackageFlags registers the packaging flags of the root command.
func addPackageFlags(fs *pflag.FlagSet) {
	fs.String(flagModule, DefaultModulePath, "JavaScript module output path.")
	fs.String(flagDeclaration, DefaultDeclarationPath, "TypeScript declaration output path.")
	fs.String(flagExportName, "contract", "Identifier bound to the artifact string.")
	fs.String(flagTrace, "", "Write a canonical JSON trace of the run to this path.")
	fs.Bool(flagCheck, false, "Compare outputs with what would be generated instead of writing them.")
	fs.Bool(flagVerifyBytecode, false, "Reject artifacts that are not hex-encoded EVM bytecode.")
	fs.Bool(flagAllowOversized, false, "With --verify-bytecode, accept bytecode above the EIP-3860 init code limit.")
	fs.Bool(flagNormalizeLineEndings, false, "Convert CRLF to LF before embedding.")
}

// newViper binds fs, the environment and the optional config file.
//
// Precedence: explicit flag > environment > config file > flag default.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	cfgPath := strings.TrimSpace(v.GetString(flagConfig))
	if cfgPath == "" {
		return v, nil
	}
	if !filepath.IsAbs(cfgPath) {
		workDir, err := resolveWorkDir(v.GetString(flagWorkDir))
		if err != nil {
			return nil, err
		}
		cfgPath = filepath.Join(workDir, cfgPath)
	}
	v.SetConfigFile(cfgPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Path: cfgPath, Err: err}
	}
	return v, nil
}

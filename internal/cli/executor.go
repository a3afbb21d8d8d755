package cli

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"contractbundle/internal/bytecode"
	"contractbundle/internal/core"
	"contractbundle/internal/trace"
)

type CLIResult struct {
	ExitCode  int
	Result    *core.Result
	Check     *core.CheckResult
	TraceHash string
}

// Execute is the default entrypoint for running a canonical invocation on the
// OS filesystem.
func Execute(ctx context.Context, inv Invocation) (CLIResult, error) {
	return ExecuteWithFs(ctx, inv, afero.NewOsFs())
}

// ExecuteWithFs maps a canonical Invocation to a packaging or check run.
//
// Responsibilities:
//   - Wire the normalizer, bytecode verifier and trace recorder the
//     invocation asks for.
//   - Write the trace after the run, on failure too.
//   - Translate the outcome to a semantic exit code.
func ExecuteWithFs(ctx context.Context, inv Invocation, fs afero.Fs) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	if fs == nil {
		return res, errors.New("nil filesystem")
	}

	p := core.NewPackager(fs)
	if inv.NormalizeLineEndings {
		p.Normalizer = core.NewLineEndingNormalizer(nil)
	}
	if inv.VerifyBytecode {
		p.Verifier = bytecode.Verifier{AllowOversized: inv.AllowOversized}
	}

	var rec *trace.Recorder
	if inv.Trace.Enabled {
		rec = trace.NewRecorder()
		p.Sink = rec
		defer func() {
			hash, err := writeTrace(fs, inv.Trace.Path, rec.Trace(exportNameOrDefault(inv.ExportName)))
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("trace", inv.Trace.Path).Msg("trace not written")
				if execErr == nil {
					execErr = err
					res.ExitCode = ExitInternalError
				}
				return
			}
			res.TraceHash = hash
		}()
	}

	var err error
	if inv.Check {
		res.Check, err = p.Check(ctx, inv.Request())
	} else {
		res.Result, err = p.Package(ctx, inv.Request())
	}
	res.ExitCode = ExitCode(err)
	return res, err
}

// writeTrace writes the canonical trace and returns its hash. Unlike package
// outputs, the trace directory is created when missing.
func writeTrace(fs afero.Fs, path string, tr trace.PackageTrace) (string, error) {
	b, err := tr.CanonicalJSON()
	if err != nil {
		return "", errors.Wrap(err, "encode trace")
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "create trace directory")
	}
	if err := core.WriteFileAtomic(fs, path, b, core.OutputFileMode); err != nil {
		return "", errors.Wrap(err, "write trace")
	}
	return trace.ComputeTraceHash(b), nil
}

func exportNameOrDefault(name string) string {
	if name == "" {
		return core.DefaultExportName
	}
	return name
}

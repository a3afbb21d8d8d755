package core

import (
	"bytes"
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"contractbundle/internal/trace"
)

// ContentVerifier inspects the artifact before anything is rendered.
// A non-nil error aborts the run before any output is written.
type ContentVerifier interface {
	Verify(content []byte) error
}

// Packager turns one artifact into a module and a declaration.
type Packager struct {
	// Fs is the filesystem all reads and writes go through.
	Fs afero.Fs

	// Normalizer rewrites content after loading. Nil preserves raw bytes.
	Normalizer Normalizer

	// Verifier optionally rejects content. Nil accepts anything.
	Verifier ContentVerifier

	// Sink receives logical trace events. Nil discards them.
	Sink trace.Sink
}

// NewPackager creates a Packager on fs with raw content and no verification.
func NewPackager(fs afero.Fs) *Packager {
	return &Packager{Fs: fs}
}

// Package reads inputPath from the OS filesystem and writes the module and
// declaration to their paths.
func Package(inputPath, modulePath, declarationPath string) error {
	_, err := NewPackager(afero.NewOsFs()).Package(context.Background(), Request{
		InputPath:       inputPath,
		ModulePath:      modulePath,
		DeclarationPath: declarationPath,
	})
	return err
}

// Package runs Load -> Render -> Persist for req.
//
// Errors:
//   - *RequestError: req is invalid; nothing was read.
//   - *ReadError: the input is missing or unreadable; nothing was written.
//   - *VerificationError, *MalformedArtifactError: nothing was written.
//   - *WriteError: an output failed. A module written before a failed
//     declaration write is left in place.
func (p *Packager) Package(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name := req.exportName()
	log := zerolog.Ctx(ctx).With().
		Str("input", req.InputPath).
		Str("module", req.ModulePath).
		Str("declaration", req.DeclarationPath).
		Logger()

	artifact, rendered, err := p.prepare(ctx, req, name)
	if err != nil {
		return nil, err
	}
	artifactHash := HashArtifact(artifact.Content)

	if err := p.checkContext(ctx); err != nil {
		return nil, err
	}
	if err := writeOutput(p.fs(), OutputModule, req.ModulePath, rendered.Module); err != nil {
		p.record(trace.Event{Kind: trace.EventPackageFailed, Output: string(OutputModule), Reason: trace.ReasonWriteError})
		return nil, err
	}
	p.record(trace.Event{Kind: trace.EventModuleWritten, Output: string(OutputModule), Digest: HashArtifact(rendered.Module)})
	log.Debug().Int("bytes", len(rendered.Module)).Msg("module written")

	if err := writeOutput(p.fs(), OutputDeclaration, req.DeclarationPath, rendered.Declaration); err != nil {
		p.record(trace.Event{Kind: trace.EventPackageFailed, Output: string(OutputDeclaration), Reason: trace.ReasonWriteError})
		return nil, err
	}
	p.record(trace.Event{Kind: trace.EventDeclarationWritten, Output: string(OutputDeclaration), Digest: HashArtifact(rendered.Declaration)})
	log.Debug().Int("bytes", len(rendered.Declaration)).Msg("declaration written")

	res := &Result{
		ModulePath:      req.ModulePath,
		DeclarationPath: req.DeclarationPath,
		ExportName:      name,
		Size:            len(artifact.Content),
		ArtifactHash:    artifactHash,
		OutputHash:      HashOutputs(name, rendered),
	}
	log.Info().
		Int("bytes", res.Size).
		Str("artifact_hash", res.ArtifactHash).
		Msg("artifact packaged")
	return res, nil
}

// Check renders req like Package but compares the result with the files on
// disk instead of writing. It returns *StaleOutputError alongside the result
// when any output is missing or different.
func (p *Packager) Check(ctx context.Context, req Request) (*CheckResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name := req.exportName()

	artifact, rendered, err := p.prepare(ctx, req, name)
	if err != nil {
		return nil, err
	}

	res := &CheckResult{
		ArtifactHash: HashArtifact(artifact.Content),
		OutputHash:   HashOutputs(name, rendered),
	}
	for _, out := range []struct {
		kind OutputKind
		path string
		want []byte
	}{
		{OutputModule, req.ModulePath, rendered.Module},
		{OutputDeclaration, req.DeclarationPath, rendered.Declaration},
	} {
		state, err := p.compare(out.path, out.want)
		if err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, OutputStatus{Output: out.kind, Path: out.path, State: state})
	}

	if !res.UpToDate() {
		var stale []OutputStatus
		for _, o := range res.Outputs {
			if o.State != StateUpToDate {
				stale = append(stale, o)
				p.record(trace.Event{Kind: trace.EventPackageFailed, Output: string(o.Output), Reason: trace.ReasonStale})
			}
		}
		zerolog.Ctx(ctx).Warn().Int("stale", len(stale)).Msg("outputs are not up to date")
		return res, &StaleOutputError{Outputs: stale}
	}

	p.record(trace.Event{Kind: trace.EventOutputsVerified, Digest: res.OutputHash})
	zerolog.Ctx(ctx).Info().Str("artifact_hash", res.ArtifactHash).Msg("outputs up to date")
	return res, nil
}

// prepare loads, verifies and renders the artifact.
func (p *Packager) prepare(ctx context.Context, req Request, name string) (*Artifact, Rendered, error) {
	if err := p.checkContext(ctx); err != nil {
		return nil, Rendered{}, err
	}

	artifact, err := LoadArtifact(p.fs(), req.InputPath, p.Normalizer)
	if err != nil {
		p.record(trace.Event{Kind: trace.EventPackageFailed, Reason: trace.ReasonReadError})
		return nil, Rendered{}, err
	}
	p.record(trace.Event{Kind: trace.EventArtifactLoaded, Digest: HashArtifact(artifact.Content)})
	zerolog.Ctx(ctx).Debug().Str("input", req.InputPath).Int("bytes", len(artifact.Content)).Msg("artifact loaded")

	if p.Verifier != nil {
		if err := p.Verifier.Verify(artifact.Content); err != nil {
			p.record(trace.Event{Kind: trace.EventPackageFailed, Reason: trace.ReasonInvalidBytecode})
			return nil, Rendered{}, &VerificationError{Path: req.InputPath, Err: err}
		}
	}

	rendered, err := Render(name, artifact.Content)
	if err != nil {
		var malformed *MalformedArtifactError
		if errors.As(err, &malformed) {
			malformed.Path = req.InputPath
			p.record(trace.Event{Kind: trace.EventPackageFailed, Reason: trace.ReasonMalformedArtifact})
		}
		return nil, Rendered{}, err
	}
	return artifact, rendered, nil
}

func (p *Packager) compare(path string, want []byte) (OutputState, error) {
	got, err := afero.ReadFile(p.fs(), path)
	if err != nil {
		if os.IsNotExist(err) {
			return StateMissing, nil
		}
		return "", &ReadError{Path: path, Err: err}
	}
	if !bytes.Equal(got, want) {
		return StateStale, nil
	}
	return StateUpToDate, nil
}

func (p *Packager) checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		p.record(trace.Event{Kind: trace.EventPackageFailed, Reason: trace.ReasonCanceled})
		return errors.Wrap(err, "package")
	}
	return nil
}

func (p *Packager) fs() afero.Fs {
	if p.Fs == nil {
		return afero.NewOsFs()
	}
	return p.Fs
}

func (p *Packager) record(e trace.Event) {
	trace.SafeRecord(p.Sink, e)
}

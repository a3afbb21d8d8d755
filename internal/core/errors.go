package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedArtifact marks content that cannot be embedded as JavaScript text.
	ErrMalformedArtifact = errors.New("artifact is not valid UTF-8 text")

	// ErrStaleOutput marks outputs that differ from what a run would produce.
	ErrStaleOutput = errors.New("outputs are stale")
)

// ReadError reports that the input artifact is missing or unreadable.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("read artifact %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports that one of the outputs could not be written.
type WriteError struct {
	Path   string
	Output OutputKind
	Err    error
}

func (e *WriteError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("write %s %q: %v", e.Output, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// MalformedArtifactError reports content that would break out of, or could not
// be represented in, the generated string literal.
type MalformedArtifactError struct {
	Path   string
	Offset int
}

func (e *MalformedArtifactError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path == "" {
		return fmt.Sprintf("%v: invalid byte at offset %d", ErrMalformedArtifact, e.Offset)
	}
	return fmt.Sprintf("%v: %q: invalid byte at offset %d", ErrMalformedArtifact, e.Path, e.Offset)
}

func (e *MalformedArtifactError) Unwrap() error { return ErrMalformedArtifact }

// VerificationError reports that a configured ContentVerifier rejected the artifact.
type VerificationError struct {
	Path string
	Err  error
}

func (e *VerificationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("verify artifact %q: %v", e.Path, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// RequestError reports an invalid Request field. Nothing has been read or
// written when it is returned.
type RequestError struct {
	Field string
	Msg   string
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Msg)
}

// StaleOutputError lists the outputs a check run found missing or different.
type StaleOutputError struct {
	Outputs []OutputStatus
}

func (e *StaleOutputError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Outputs))
	for _, o := range e.Outputs {
		parts = append(parts, fmt.Sprintf("%s %q is %s", o.Output, o.Path, o.State))
	}
	return fmt.Sprintf("%v: %s", ErrStaleOutput, strings.Join(parts, "; "))
}

func (e *StaleOutputError) Unwrap() error { return ErrStaleOutput }

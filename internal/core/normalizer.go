package core

import "bytes"

// Normalizer rewrites artifact content before rendering.
type Normalizer interface {
	Normalize(content []byte) []byte
}

// RawNormalizer performs no normalization, preserving raw bytes exactly.
// It is the default: the artifact is embedded as the compiler wrote it.
type RawNormalizer struct{}

// NewRawNormalizer creates a normalizer that preserves content unchanged.
func NewRawNormalizer() *RawNormalizer {
	return &RawNormalizer{}
}

// Normalize returns content unchanged.
func (n *RawNormalizer) Normalize(content []byte) []byte {
	return content
}

// LineEndingNormalizer converts CRLF line endings to LF, then optionally
// applies Inner.
type LineEndingNormalizer struct {
	Inner Normalizer
}

// NewLineEndingNormalizer creates a normalizer that standardizes line endings.
func NewLineEndingNormalizer(inner Normalizer) *LineEndingNormalizer {
	return &LineEndingNormalizer{Inner: inner}
}

// Normalize converts CRLF to LF and applies the inner normalizer if any.
func (n *LineEndingNormalizer) Normalize(content []byte) []byte {
	result := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if n.Inner != nil {
		result = n.Inner.Normalize(result)
	}
	return result
}

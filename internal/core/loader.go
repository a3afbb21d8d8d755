package core

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// LoadArtifact reads the artifact at path verbatim.
//
// A missing file, a directory or any other read failure is returned as
// *ReadError. A nil normalizer preserves the raw bytes.
func LoadArtifact(fs afero.Fs, path string, normalizer Normalizer) (*Artifact, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &ReadError{Path: path, Err: errors.New("is a directory")}
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if normalizer != nil {
		content = normalizer.Normalize(content)
	}
	return &Artifact{Path: path, Content: content}, nil
}

package core

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// OutputFileMode is the permission of every generated file.
const OutputFileMode os.FileMode = 0o644

// WriteFileAtomic replaces path with data through a temp file and rename.
//
// The parent directory must already exist; it is never created. Readers see
// either the previous file or the complete new one.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	info, err := fs.Stat(dir)
	if err != nil {
		return errors.Wrap(err, "stat output directory")
	}
	if !info.IsDir() {
		return errors.Errorf("output directory %q is not a directory", dir)
	}

	tmp, err := afero.TempFile(fs, dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	committed = true
	return nil
}

// writeOutput persists one output and classifies any failure as *WriteError.
func writeOutput(fs afero.Fs, kind OutputKind, path string, data []byte) error {
	if err := WriteFileAtomic(fs, path, data, OutputFileMode); err != nil {
		return &WriteError{Path: path, Output: kind, Err: err}
	}
	return nil
}

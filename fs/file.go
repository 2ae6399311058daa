// Package fs provides atomic output files for the file-based sinks.
package fs

import (
	"os"
	"path/filepath"
)

// File is an output file written to a temporary path next to its final
// location and moved into place on Commit. Readers of the final path never
// observe a partially written file.
type File struct {
	f    *os.File
	path string
}

// Create opens a temporary file for path, creating parent directories.
func Create(path string) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &File{f: f, path: path}, nil
}

// Path returns the final path of the file.
func (f *File) Path() string { return f.path }

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	return f.f.Write(p)
}

// Commit closes the temporary file and renames it to the final path,
// replacing any existing file.
func (f *File) Commit() error {
	if err := f.f.Close(); err != nil {
		_ = os.Remove(f.f.Name())
		return err
	}
	if err := os.Chmod(f.f.Name(), 0644); err != nil {
		_ = os.Remove(f.f.Name())
		return err
	}
	return os.Rename(f.f.Name(), f.path)
}

// Abort closes and removes the temporary file, leaving the final path
// untouched.
func (f *File) Abort() error {
	_ = f.f.Close()
	return os.Remove(f.f.Name())
}

// Package storage writes output files without exposing partial content.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWriter provides atomic file write operations using temp file + rename.
// The target file is never left in a partially-written state.
type AtomicWriter struct {
	path    string
	tmpPath string
	file    *os.File
	done    bool
}

// NewAtomicWriter creates a writer for atomic file updates.
// The writer creates a temporary file in the same directory as the target,
// and on Commit(), atomically renames it to replace the target.
func NewAtomicWriter(path string) (*AtomicWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".ytharvest-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &AtomicWriter{
		path:    path,
		tmpPath: tmpFile.Name(),
		file:    tmpFile,
	}, nil
}

// Write writes data to the temporary file.
func (w *AtomicWriter) Write(p []byte) (n int, err error) {
	return w.file.Write(p)
}

// Commit syncs the temporary file and renames it over the target.
func (w *AtomicWriter) Commit() error {
	if w.done {
		return fmt.Errorf("atomic writer already finished")
	}
	w.done = true

	if err := w.file.Sync(); err != nil {
		w.cleanup()
		return fmt.Errorf("sync: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(w.tmpPath, 0644); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Abort discards the temporary file without committing. Calling Abort after
// Commit is a no-op.
func (w *AtomicWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	return w.cleanup()
}

func (w *AtomicWriter) cleanup() error {
	w.file.Close()
	return os.Remove(w.tmpPath)
}

// WriteFileAtomic streams fill's output into path. If fill fails the
// existing file at path is left unchanged.
func WriteFileAtomic(path string, fill func(io.Writer) error) error {
	w, err := NewAtomicWriter(path)
	if err != nil {
		return err
	}
	defer w.Abort()

	if err := fill(w); err != nil {
		return err
	}
	return w.Commit()
}

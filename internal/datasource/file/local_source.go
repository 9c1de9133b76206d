// Package file implements local filesystem data sources and sinks.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a file on the local disk. It is both a datasource.Source and a
// datasource.Sink.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Join returns a Local for name inside dir.
func Join(dir, name string) *Local { return NewLocal(filepath.Join(dir, name)) }

// Path returns the bound filesystem path.
func (l *Local) Path() string { return l.path }

// Open opens the file for reading. A context that is already done returns
// its error without touching the filesystem. Filesystem errors are wrapped
// with the path and still satisfy errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Create returns a writer for the file, creating parent directories as
// needed. Data goes to a temporary file in the same directory which is
// renamed over the target on Close, so readers never observe a partial file.
func (l *Local) Create(ctx context.Context) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", l.path, err)
	}
	return &atomicFile{File: tmp, target: l.path}, nil
}

type atomicFile struct {
	*os.File
	target string
	closed bool
}

func (a *atomicFile) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	tmp := a.File.Name()
	if err := a.File.Close(); err != nil {
		return errors.Join(fmt.Errorf("close %s: %w", a.target, err), os.Remove(tmp))
	}
	if err := os.Rename(tmp, a.target); err != nil {
		return errors.Join(fmt.Errorf("rename %s: %w", a.target, err), os.Remove(tmp))
	}
	return nil
}

package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// FS reads files whole and rewrites them in place through a temporary file
// in the same directory followed by a rename, so a failed write leaves the
// original untouched.
type FS struct {
	syncDir bool
}

// NewFS creates a filesystem store. syncDir additionally fsyncs the parent
// directory after the rename.
func NewFS(syncDir bool) *FS {
	return &FS{syncDir: syncDir}
}

var _ ports.FileStore = (*FS)(nil)

// Read returns the file contents and its permission bits.
func (s *FS) Read(path string) ([]byte, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	if info.IsDir() {
		return nil, 0, &os.PathError{Op: "read", Path: path, Err: os.ErrInvalid}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	return data, info.Mode().Perm(), nil
}

// Write atomically replaces path with data. A symlink is followed so the
// link survives and its target is rewritten.
func (s *FS) Write(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".subsnorm-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if s.syncDir {
		return syncDirectory(dir)
	}
	return nil
}

// syncDirectory best-effort fsyncs dir to persist the rename.
func syncDirectory(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

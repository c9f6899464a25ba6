package ports

import "os"

// FileStore reads and rewrites subscription files.
type FileStore interface {
	Read(path string) ([]byte, os.FileMode, error)
	Write(path string, data []byte, perm os.FileMode) error
}

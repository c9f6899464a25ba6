package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInput is returned when no file path was given.
	ErrNoInput = errors.New("no input file given")
	// ErrInvalidOutput is returned when the rewritten text no longer parses
	// while the input did.
	ErrInvalidOutput = errors.New("normalized output is not valid YAML")
)

// FileError reports a failure to process one file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

package takeout

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the input tree holds no supported media file.
var ErrEmptyInput = errors.New("the search directory is empty, so there is no work to do. Check that your --input directory contains all of the Google Takeout data, and that any zips have been extracted before running this tool")

// PreconditionError aborts a whole run before any file is processed.
type PreconditionError struct {
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// ParseError reports a sidecar that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse sidecar %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports a failed embedded metadata write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write metadata to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// CopyError reports a failed file copy.
type CopyError struct {
	Src string
	Dst string
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s -> %s: %v", e.Src, e.Dst, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

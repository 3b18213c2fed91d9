package internal

import (
	"errors"
	"fmt"
)

// ErrArchiveStructure is the only batch-fatal failure: the input archive
// (or directory) cannot be enumerated at all. Everything else degrades the
// affected file and lets the batch continue.
var ErrArchiveStructure = errors.New("cannot read archive structure")

// errExiftoolUnavailable degrades every metadata write when the exiftool
// binary could not be started.
var errExiftoolUnavailable = errors.New("exiftool is not available")

// ErrorCategory represents the type of error encountered on a single file
type ErrorCategory string

const (
	ErrorCategorySidecarParse  ErrorCategory = "sidecar_parse"       // Sidecar JSON missing fields or malformed
	ErrorCategoryMetadataRead  ErrorCategory = "metadata_decode"     // EXIF/XMP block unreadable
	ErrorCategoryMetadataWrite ErrorCategory = "metadata_write"      // Timestamp could not be written back
	ErrorCategoryFilename      ErrorCategory = "filename_unparsable" // No date pattern matched the file name
	ErrorCategoryIO            ErrorCategory = "io_error"            // File system, permissions, disk space
)

// ProcessError records a non-fatal, per-file degradation. It is logged and
// reflected in the summary counters; it never propagates as a batch error.
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	OriginalErr error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error {
	return e.OriginalErr
}

func newProcessError(path string, cat ErrorCategory, err error) *ProcessError {
	return &ProcessError{FilePath: path, Category: cat, OriginalErr: err}
}

package internal

import (
	"fmt"
	"os"
	"sync"

	exiftool "github.com/barasher/go-exiftool"
)

// MetadataWriter writes resolved timestamps back into staged files through
// a single long-lived exiftool process. exiftool rewrites metadata blocks
// only; pixel data is left untouched. The wrapper is safe for concurrent
// use by the worker pool.
type MetadataWriter struct {
	et *exiftool.Exiftool
	mu sync.Mutex
}

// NewMetadataWriter starts the underlying exiftool process. An error here
// (typically: exiftool not installed) is not fatal to a batch; the caller
// degrades every write instead.
func NewMetadataWriter() (*MetadataWriter, error) {
	et, err := exiftool.NewExiftool(exiftool.NoPrintConversion())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exiftool: %w", err)
	}
	return &MetadataWriter{et: et}, nil
}

// Write stamps the resolved capture time into DateTimeOriginal (plus
// CreateDate and ModifyDate, matching what camera firmware sets) and the
// orientation if one was resolved, then aligns the file's mtime with the
// same instant. An EXIF block is created when the file has none.
func (w *MetadataWriter) Write(path string, resolved ResolvedMetadata) error {
	if !resolved.HasTimestamp {
		return fmt.Errorf("no resolved timestamp for %s", path)
	}

	local := resolved.Timestamp.Local()
	value := local.Format(exifTimeLayout)

	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	fm.SetString("DateTimeOriginal", value)
	fm.SetString("CreateDate", value)
	fm.SetString("ModifyDate", value)
	if resolved.HasOrientation {
		fm.SetInt("Orientation", int64(resolved.Orientation))
	}

	w.mu.Lock()
	fms := []exiftool.FileMetadata{fm}
	w.et.WriteMetadata(fms)
	w.mu.Unlock()

	if fms[0].Err != nil {
		return fmt.Errorf("exiftool write failed for %s: %w", path, fms[0].Err)
	}

	if err := os.Chtimes(path, local, local); err != nil {
		return fmt.Errorf("failed to set mtime on %s: %w", path, err)
	}
	return nil
}

// Close terminates the underlying exiftool process.
func (w *MetadataWriter) Close() error {
	return w.et.Close()
}

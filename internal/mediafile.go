package internal

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaFile is one photo staged for processing. Identity is the
// archive-relative path; Index preserves the original archive entry order
// so that downstream naming and counters stay deterministic.
type MediaFile struct {
	RelPath     string    // archive-relative path, forward slashes
	Path        string    // absolute path inside the staging workspace
	Index       int       // original archive entry order
	ModTime     time.Time // entry modification time (archive header or filesystem)
	SidecarPath string    // absolute path of the paired sidecar JSON, empty if none
}

// BaseName returns the file name with the extension stripped, the form the
// filename date parser operates on.
func (m MediaFile) BaseName() string {
	base := filepath.Base(m.RelPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ext returns the lower-cased extension, including the dot.
func (m MediaFile) Ext() string {
	return normalizedExt(m.RelPath)
}

func normalizedExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

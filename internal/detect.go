package internal

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// ExportType labels the kind of export an archive looks like. The label
// only decides which primary source is probed first and is shown to the
// user; the full fallback chain runs regardless of it.
type ExportType string

const (
	ExportGoogle  ExportType = "google"
	ExportApple   ExportType = "apple"
	ExportGeneric ExportType = "generic"
)

// DetectExportType classifies the staged entries. An archive with any
// sidecar carrying recognizable timestamp keys is a Google-style export;
// otherwise bare media with readable EXIF marks an Apple-style export;
// anything else is generic.
func DetectExportType(media []MediaFile, jsonFiles []string) ExportType {
	for _, p := range jsonFiles {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if _, ok := ParseSidecar(data); ok {
			return ExportGoogle
		}
	}

	for _, m := range media {
		if hasReadableExif(m.Path) {
			return ExportApple
		}
	}

	return ExportGeneric
}

func hasReadableExif(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = exif.Decode(f)
	return err == nil
}

// JSONFiles exposes the staged sidecar candidates for detection.
func (s *Staging) JSONFiles() []string {
	return s.jsonFiles
}

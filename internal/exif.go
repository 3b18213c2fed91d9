package internal

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/trimmer-io/go-xmp/xmp"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// EmbeddedMetadata is what could be recovered from a file's EXIF and XMP
// blocks. Tier records which block yielded the timestamp.
type EmbeddedMetadata struct {
	Timestamp      time.Time
	HasTimestamp   bool
	Orientation    int
	HasOrientation bool
	Tier           SourceTier // TierEXIF, TierXMP, or TierNone
}

// ReadEmbeddedMetadata extracts a capture timestamp and orientation from
// the file's embedded metadata. EXIF is attempted first, then XMP. Any
// decode failure (corrupt block, unsupported container) counts as absent
// for that block; it is never an error for the file.
func ReadEmbeddedMetadata(path string) EmbeddedMetadata {
	meta := EmbeddedMetadata{Tier: TierNone}

	if ts, orient, hasOrient, ok := readExif(path); ok || hasOrient {
		if ok {
			meta.Timestamp = ts
			meta.HasTimestamp = true
			meta.Tier = TierEXIF
		}
		if hasOrient {
			meta.Orientation = orient
			meta.HasOrientation = true
		}
	}

	// XMP fills in whatever EXIF did not provide.
	if !meta.HasTimestamp || !meta.HasOrientation {
		ts, orient, hasTS, hasOrient := readXMP(path)
		if hasTS && !meta.HasTimestamp {
			meta.Timestamp = ts
			meta.HasTimestamp = true
			meta.Tier = TierXMP
		}
		if hasOrient && !meta.HasOrientation {
			meta.Orientation = orient
			meta.HasOrientation = true
		}
	}

	return meta
}

func readExif(path string) (ts time.Time, orientation int, hasOrientation, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, 0, false, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, 0, false, false
	}

	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil && v >= 1 && v <= 8 {
			orientation = v
			hasOrientation = true
		}
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, orientation, hasOrientation, false
	}
	dateStr, err := tag.StringVal()
	if err != nil {
		return time.Time{}, orientation, hasOrientation, false
	}
	t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(dateStr), time.Local)
	if err != nil {
		return time.Time{}, orientation, hasOrientation, false
	}
	return t, orientation, hasOrientation, true
}

// XMP paths that carry a capture time, in preference order.
var xmpTimestampPaths = []string{
	"xmp:CreateDate",
	"exif:DateTimeOriginal",
	"photoshop:DateCreated",
}

func readXMP(path string) (ts time.Time, orientation int, hasTS, hasOrientation bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, 0, false, false
	}
	defer f.Close()

	// ScanPackets returns io.EOF when the file simply has no XMP packet.
	packets, err := xmp.ScanPackets(f)
	if err != nil {
		return time.Time{}, 0, false, false
	}

	values := make(map[string]string)
	for _, packet := range packets {
		var doc xmp.Document
		if err := xmp.Unmarshal(packet, &doc); err != nil {
			continue
		}
		paths, err := doc.ListPaths()
		if err != nil {
			continue
		}
		for _, p := range paths {
			values[string(p.Path)] = p.Value
		}
	}

	for _, key := range xmpTimestampPaths {
		v, found := values[key]
		if !found {
			continue
		}
		if t, ok := parseXMPTime(v); ok {
			ts = t
			hasTS = true
			break
		}
	}

	if v, found := values["tiff:Orientation"]; found {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 1 && n <= 8 {
			orientation = n
			hasOrientation = true
		}
	}

	return ts, orientation, hasTS, hasOrientation
}

func parseXMPTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		exifTimeLayout,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

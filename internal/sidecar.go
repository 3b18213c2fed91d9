package internal

import (
	"encoding/json"
	"path"
	"strconv"
	"strings"
	"time"
)

// sidecarMetadata mirrors the timestamp fields of a Google Photos takeout
// sidecar. Both times are Unix epoch seconds encoded as strings.
type sidecarMetadata struct {
	Title        string `json:"title"`
	CreationTime struct {
		Timestamp string `json:"timestamp"`
		Formatted string `json:"formatted"`
	} `json:"creationTime"`
	PhotoTakenTime struct {
		Timestamp string `json:"timestamp"`
		Formatted string `json:"formatted"`
	} `json:"photoTakenTime"`
}

// ParseSidecar extracts the capture instant from sidecar JSON, preferring
// photoTakenTime over creationTime. Malformed JSON or missing fields report
// absent rather than an error; a broken sidecar must never fail the file.
func ParseSidecar(data []byte) (time.Time, bool) {
	var meta sidecarMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return time.Time{}, false
	}
	for _, raw := range []string{meta.PhotoTakenTime.Timestamp, meta.CreationTime.Timestamp} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		return time.Unix(sec, 0).UTC(), true
	}
	return time.Time{}, false
}

// sidecarCandidates lists the sidecar names a media entry may be paired
// with, in the order Google has used them: the full name plus .json, the
// newer .supplemental-metadata.json suffix, and the bare stem plus .json.
func sidecarCandidates(mediaRel string) []string {
	stem := strings.TrimSuffix(mediaRel, path.Ext(mediaRel))
	return []string{
		mediaRel + ".json",
		mediaRel + ".supplemental-metadata.json",
		stem + ".json",
	}
}

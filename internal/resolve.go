package internal

import (
	"time"
)

// SourceTier identifies which fallback source produced a timestamp.
type SourceTier string

const (
	TierSidecar  SourceTier = "sidecar"
	TierEXIF     SourceTier = "exif"
	TierXMP      SourceTier = "xmp"
	TierFilename SourceTier = "filename"
	TierMtime    SourceTier = "mtime"
	TierNone     SourceTier = "none"
)

// Classification is the processing outcome for one file.
type Classification string

const (
	ClassFixed                Classification = "fixed"
	ClassRestoredFromFilename Classification = "restored_from_filename"
	ClassRenamedOnly          Classification = "renamed_only"
	ClassSkipped              Classification = "skipped"
)

// ResolvedMetadata is the engine's verdict for one file. It is built once
// and never mutated afterwards.
type ResolvedMetadata struct {
	Timestamp      time.Time
	HasTimestamp   bool
	Orientation    int
	HasOrientation bool
	SourceTier     SourceTier
}

// ResolveInputs carries the per-file facts gathered by the readers. Each
// candidate is optional; the engine itself does no I/O.
type ResolveInputs struct {
	Sidecar     time.Time
	HasSidecar  bool
	EXIF        time.Time
	HasEXIF     bool
	XMP         time.Time
	HasXMP      bool
	Filename    time.Time
	HasFilename bool
	Mtime       time.Time
	HasMtime    bool

	EXIFOrientation    int
	HasEXIFOrientation bool
	XMPOrientation     int
	HasXMPOrientation  bool
}

// ResolveOptions is the slice of user configuration the engine needs.
type ResolveOptions struct {
	MtimeFallback   bool
	MissingMetadata string // MissingMetadataKeep or MissingMetadataSkip
}

type tierAttempt struct {
	tier SourceTier
	get  func(in ResolveInputs) (time.Time, bool)
}

// The fallback chain, in strict order. Mtime participates only when the
// fallback is enabled; that is checked at resolve time so the table stays
// fixed.
var tierAttempts = []tierAttempt{
	{TierSidecar, func(in ResolveInputs) (time.Time, bool) { return in.Sidecar, in.HasSidecar }},
	{TierEXIF, func(in ResolveInputs) (time.Time, bool) { return in.EXIF, in.HasEXIF }},
	{TierXMP, func(in ResolveInputs) (time.Time, bool) { return in.XMP, in.HasXMP }},
	{TierFilename, func(in ResolveInputs) (time.Time, bool) { return in.Filename, in.HasFilename }},
	{TierMtime, func(in ResolveInputs) (time.Time, bool) { return in.Mtime, in.HasMtime }},
}

// Resolve runs the tier chain over the gathered inputs and returns the
// first candidate with a plausible year. Orientation is resolved
// independently of the timestamp chain: EXIF wins over XMP.
func Resolve(in ResolveInputs, opts ResolveOptions) ResolvedMetadata {
	resolved := ResolvedMetadata{SourceTier: TierNone}

	for _, attempt := range tierAttempts {
		if attempt.tier == TierMtime && !opts.MtimeFallback {
			continue
		}
		ts, ok := attempt.get(in)
		if !ok || !plausibleYear(ts) {
			continue
		}
		resolved.Timestamp = ts.UTC()
		resolved.HasTimestamp = true
		resolved.SourceTier = attempt.tier
		break
	}

	switch {
	case in.HasEXIFOrientation:
		resolved.Orientation = in.EXIFOrientation
		resolved.HasOrientation = true
	case in.HasXMPOrientation:
		resolved.Orientation = in.XMPOrientation
		resolved.HasOrientation = true
	}

	return resolved
}

// Classify maps an achieved tier and the missing-metadata option to the
// file's outcome. It is a pure function so the result never depends on
// processing order.
func Classify(tier SourceTier, missingMetadata string) Classification {
	switch tier {
	case TierSidecar, TierEXIF, TierXMP, TierMtime:
		return ClassFixed
	case TierFilename:
		return ClassRestoredFromFilename
	default:
		if missingMetadata == MissingMetadataSkip {
			return ClassSkipped
		}
		return ClassRenamedOnly
	}
}

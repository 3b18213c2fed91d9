package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var defaultOpts = ResolveOptions{MtimeFallback: true, MissingMetadata: MissingMetadataKeep}

func TestResolve_TierOrder(t *testing.T) {
	sidecar := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	exifT := time.Date(2021, 2, 2, 0, 0, 0, 0, time.UTC)
	xmpT := time.Date(2022, 3, 3, 0, 0, 0, 0, time.UTC)
	fname := time.Date(2023, 4, 4, 0, 0, 0, 0, time.UTC)
	mtime := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)

	full := ResolveInputs{
		Sidecar: sidecar, HasSidecar: true,
		EXIF: exifT, HasEXIF: true,
		XMP: xmpT, HasXMP: true,
		Filename: fname, HasFilename: true,
		Mtime: mtime, HasMtime: true,
	}

	cases := []struct {
		name     string
		mutate   func(*ResolveInputs)
		wantTier SourceTier
		wantTime time.Time
	}{
		{"sidecar wins", func(in *ResolveInputs) {}, TierSidecar, sidecar},
		{"exif after sidecar", func(in *ResolveInputs) { in.HasSidecar = false }, TierEXIF, exifT},
		{"xmp after exif", func(in *ResolveInputs) { in.HasSidecar, in.HasEXIF = false, false }, TierXMP, xmpT},
		{"filename after xmp", func(in *ResolveInputs) { in.HasSidecar, in.HasEXIF, in.HasXMP = false, false, false }, TierFilename, fname},
		{"mtime last", func(in *ResolveInputs) {
			in.HasSidecar, in.HasEXIF, in.HasXMP, in.HasFilename = false, false, false, false
		}, TierMtime, mtime},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := full
			tc.mutate(&in)
			got := Resolve(in, defaultOpts)
			assert.Equal(t, tc.wantTier, got.SourceTier)
			assert.True(t, got.HasTimestamp)
			assert.True(t, got.Timestamp.Equal(tc.wantTime))
		})
	}
}

func TestResolve_NothingAvailable(t *testing.T) {
	got := Resolve(ResolveInputs{}, defaultOpts)
	assert.Equal(t, TierNone, got.SourceTier)
	assert.False(t, got.HasTimestamp)
}

func TestResolve_MtimeFallbackDisabled(t *testing.T) {
	in := ResolveInputs{Mtime: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), HasMtime: true}
	got := Resolve(in, ResolveOptions{MtimeFallback: false, MissingMetadata: MissingMetadataKeep})
	assert.Equal(t, TierNone, got.SourceTier)
	assert.False(t, got.HasTimestamp)
}

func TestResolve_ImplausibleYearFallsThrough(t *testing.T) {
	// A sidecar decoding to year 1969 is rejected, and the chain continues
	// with the next tier instead of giving up.
	in := ResolveInputs{
		Sidecar: time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC), HasSidecar: true,
		EXIF: time.Date(2021, 2, 2, 0, 0, 0, 0, time.UTC), HasEXIF: true,
	}
	got := Resolve(in, defaultOpts)
	assert.Equal(t, TierEXIF, got.SourceTier)
}

func TestResolve_ImplausibleFilenameYearFallsToMtime(t *testing.T) {
	mtime := time.Date(2018, 7, 7, 0, 0, 0, 0, time.UTC)
	in := ResolveInputs{
		Filename: time.Date(2150, 1, 1, 0, 0, 0, 0, time.UTC), HasFilename: true,
		Mtime:    mtime, HasMtime: true,
	}
	got := Resolve(in, defaultOpts)
	assert.Equal(t, TierMtime, got.SourceTier)
	assert.True(t, got.Timestamp.Equal(mtime))
}

func TestResolve_TimestampIsUTC(t *testing.T) {
	in := ResolveInputs{
		Filename:    time.Date(2023, 5, 2, 14, 30, 0, 0, time.Local),
		HasFilename: true,
	}
	got := Resolve(in, defaultOpts)
	assert.Equal(t, time.UTC, got.Timestamp.Location())
	assert.True(t, got.Timestamp.Equal(in.Filename))
}

func TestResolve_OrientationIndependentOfTimestamp(t *testing.T) {
	// Orientation comes from XMP here even though the timestamp tier is
	// sidecar; the two resolutions do not interact.
	in := ResolveInputs{
		Sidecar: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), HasSidecar: true,
		XMPOrientation: 6, HasXMPOrientation: true,
	}
	got := Resolve(in, defaultOpts)
	assert.Equal(t, TierSidecar, got.SourceTier)
	assert.True(t, got.HasOrientation)
	assert.Equal(t, 6, got.Orientation)
}

func TestResolve_OrientationPrefersEXIF(t *testing.T) {
	in := ResolveInputs{
		EXIFOrientation: 3, HasEXIFOrientation: true,
		XMPOrientation: 6, HasXMPOrientation: true,
	}
	got := Resolve(in, defaultOpts)
	assert.Equal(t, 3, got.Orientation)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		tier   SourceTier
		option string
		want   Classification
	}{
		{TierSidecar, MissingMetadataKeep, ClassFixed},
		{TierEXIF, MissingMetadataKeep, ClassFixed},
		{TierXMP, MissingMetadataKeep, ClassFixed},
		{TierMtime, MissingMetadataKeep, ClassFixed},
		{TierFilename, MissingMetadataKeep, ClassRestoredFromFilename},
		{TierFilename, MissingMetadataSkip, ClassRestoredFromFilename},
		{TierNone, MissingMetadataKeep, ClassRenamedOnly},
		{TierNone, MissingMetadataSkip, ClassSkipped},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.tier, tc.option),
			"tier=%s option=%s", tc.tier, tc.option)
	}
}

package internal

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeExifJPEG builds a minimal JPEG whose APP1 segment carries a TIFF
// block with an IFD0 Orientation tag and an Exif sub-IFD holding
// DateTimeOriginal. Just enough structure for a decoder; there is no
// image payload.
func makeExifJPEG(t *testing.T, datetime string, orientation uint16) []byte {
	t.Helper()
	require.Len(t, datetime, 19, "EXIF datetime must be YYYY:MM:DD HH:MM:SS")

	var tiff bytes.Buffer
	le := binary.LittleEndian

	// TIFF header: little-endian, magic 42, IFD0 at offset 8.
	tiff.WriteString("II")
	binary.Write(&tiff, le, uint16(42))
	binary.Write(&tiff, le, uint32(8))

	// IFD0: Orientation (0x0112) and ExifIFD pointer (0x8769).
	const exifIFDOffset = 8 + 2 + 2*12 + 4
	binary.Write(&tiff, le, uint16(2))
	binary.Write(&tiff, le, uint16(0x0112)) // Orientation
	binary.Write(&tiff, le, uint16(3))      // SHORT
	binary.Write(&tiff, le, uint32(1))
	binary.Write(&tiff, le, orientation)
	binary.Write(&tiff, le, uint16(0))      // value padding
	binary.Write(&tiff, le, uint16(0x8769)) // ExifIFD pointer
	binary.Write(&tiff, le, uint16(4))      // LONG
	binary.Write(&tiff, le, uint32(1))
	binary.Write(&tiff, le, uint32(exifIFDOffset))
	binary.Write(&tiff, le, uint32(0)) // no next IFD

	// Exif sub-IFD: DateTimeOriginal (0x9003), 20-byte ASCII value.
	const valueOffset = exifIFDOffset + 2 + 12 + 4
	binary.Write(&tiff, le, uint16(1))
	binary.Write(&tiff, le, uint16(0x9003))
	binary.Write(&tiff, le, uint16(2)) // ASCII
	binary.Write(&tiff, le, uint32(20))
	binary.Write(&tiff, le, uint32(valueOffset))
	binary.Write(&tiff, le, uint32(0))
	tiff.WriteString(datetime)
	tiff.WriteByte(0)

	app1Payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8}) // SOI
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(app1Payload)+2))
	out.Write(app1Payload)
	out.Write([]byte{0xFF, 0xD9}) // EOI
	return out.Bytes()
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func plainJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestReadEmbeddedMetadata_EXIF(t *testing.T) {
	path := writeTempFile(t, "exif.jpg", makeExifJPEG(t, "2023:05:02 14:30:00", 6))

	meta := ReadEmbeddedMetadata(path)
	assert.Equal(t, TierEXIF, meta.Tier)
	require.True(t, meta.HasTimestamp)
	assert.True(t, meta.Timestamp.Equal(time.Date(2023, 5, 2, 14, 30, 0, 0, time.Local)))
	require.True(t, meta.HasOrientation)
	assert.Equal(t, 6, meta.Orientation)
}

func TestReadEmbeddedMetadata_PlainJPEG(t *testing.T) {
	path := writeTempFile(t, "plain.jpg", plainJPEG(t))

	meta := ReadEmbeddedMetadata(path)
	assert.Equal(t, TierNone, meta.Tier)
	assert.False(t, meta.HasTimestamp)
	assert.False(t, meta.HasOrientation)
}

func TestReadEmbeddedMetadata_Garbage(t *testing.T) {
	path := writeTempFile(t, "garbage.jpg", []byte("this is not an image at all"))

	meta := ReadEmbeddedMetadata(path)
	assert.Equal(t, TierNone, meta.Tier)
	assert.False(t, meta.HasTimestamp)
}

const xmpFixture = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:xmp="http://ns.adobe.com/xap/1.0/"
    xmlns:tiff="http://ns.adobe.com/tiff/1.0/"
    xmp:CreateDate="2021-07-04T10:00:00"
    tiff:Orientation="8"/>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

func TestReadEmbeddedMetadata_XMP(t *testing.T) {
	path := writeTempFile(t, "sidecarless.jpg", []byte(xmpFixture))

	meta := ReadEmbeddedMetadata(path)
	assert.Equal(t, TierXMP, meta.Tier)
	require.True(t, meta.HasTimestamp)
	assert.True(t, meta.Timestamp.Equal(time.Date(2021, 7, 4, 10, 0, 0, 0, time.Local)))
	require.True(t, meta.HasOrientation)
	assert.Equal(t, 8, meta.Orientation)
}

func TestParseXMPTime(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"2021-07-04T10:00:00Z", true},
		{"2021-07-04T10:00:00+02:00", true},
		{"2021-07-04T10:00:00", true},
		{"2021:07:04 10:00:00", true},
		{"", false},
		{"yesterday", false},
	}
	for _, tc := range cases {
		_, ok := parseXMPTime(tc.value)
		assert.Equal(t, tc.ok, ok, "value %q", tc.value)
	}
}

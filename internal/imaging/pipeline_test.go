package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestJPEG renders a gradient so the JPEG has real entropy-coded data.
func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// withAPP1 splices a fake EXIF segment right after SOI.
func withAPP1(t *testing.T, data []byte, payload []byte) []byte {
	t.Helper()
	require.True(t, len(data) > 2 && data[0] == 0xff && data[1] == 0xd8)

	segLen := len(payload) + 2
	seg := []byte{0xff, 0xe1, byte(segLen >> 8), byte(segLen)}
	seg = append(seg, payload...)

	out := append([]byte{}, data[:2]...)
	out = append(out, seg...)
	return append(out, data[2:]...)
}

func TestStripMetadata_RemovesEXIFSegment(t *testing.T) {
	payload := append([]byte("Exif\x00\x00"), []byte("camera serial 12345")...)
	tagged := withAPP1(t, encodeTestJPEG(t, 64, 64), payload)
	require.True(t, bytes.Contains(tagged, []byte("camera serial 12345")))

	stripped := StripMetadata(tagged)
	assert.False(t, bytes.Contains(stripped, []byte("camera serial 12345")))
	assert.Less(t, len(stripped), len(tagged))

	_, err := jpeg.Decode(bytes.NewReader(stripped))
	assert.NoError(t, err, "stripped stream must still decode")
}

func TestStripMetadata_NonJPEGUnchanged(t *testing.T) {
	garbage := []byte("definitely not an image")
	assert.Equal(t, garbage, StripMetadata(garbage))

	truncated := []byte{0xff, 0xd8, 0xff}
	assert.Equal(t, truncated, StripMetadata(truncated))
}

func TestStripMetadata_CleanJPEGSurvives(t *testing.T) {
	data := encodeTestJPEG(t, 32, 32)
	stripped := StripMetadata(data)
	_, err := jpeg.Decode(bytes.NewReader(stripped))
	assert.NoError(t, err)
}

func TestResizeAndCompress_CapsLongerSide(t *testing.T) {
	out, err := ResizeAndCompress(encodeTestJPEG(t, 2048, 1536))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Width, "longer side capped at 1024")
	assert.Equal(t, 768, cfg.Height, "aspect ratio preserved")
}

func TestResizeAndCompress_PortraitOrientation(t *testing.T) {
	out, err := ResizeAndCompress(encodeTestJPEG(t, 600, 1200))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Height)
	assert.Equal(t, 512, cfg.Width)
}

func TestResizeAndCompress_NeverUpscales(t *testing.T) {
	out, err := ResizeAndCompress(encodeTestJPEG(t, 400, 300))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestResizeAndCompress_RejectsUndecodableInput(t *testing.T) {
	_, err := ResizeAndCompress([]byte("not an image at all"))
	assert.Error(t, err)
}

func TestEncodeForTransport_NoPrefix(t *testing.T) {
	encoded := EncodeForTransport([]byte{0xff, 0xd8, 0xff, 0xe0})
	assert.NotContains(t, encoded, "data:")

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, decoded)
}

func TestProcess_EndToEnd(t *testing.T) {
	tagged := withAPP1(t, encodeTestJPEG(t, 1600, 900), []byte("Exif\x00\x00gps-coordinates"))

	encoded, err := Process(tagged)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("gps-coordinates")))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 576, cfg.Height)
}

func TestStripJPEGMetadata_KeepsStructuralSegments(t *testing.T) {
	// SOI, APP0 (kept), COM (dropped), EOI.
	stream := []byte{
		0xff, 0xd8,
		0xff, 0xe0, 0x00, 0x04, 0x4a, 0x46,
		0xff, 0xfe, 0x00, 0x06, 'n', 'o', 't', 'e',
		0xff, 0xd9,
	}
	out, err := stripJPEGMetadata(stream)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xff, 0xd8,
		0xff, 0xe0, 0x00, 0x04, 0x4a, 0x46,
		0xff, 0xd9,
	}, out)
}

func TestStripJPEGMetadata_BadStreams(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong magic", []byte{0x89, 0x50, 0x4e, 0x47}},
		{"segment overruns", []byte{0xff, 0xd8, 0xff, 0xe1, 0xff, 0xff, 0x00}},
		{"marker without 0xff", []byte{0xff, 0xd8, 0x00, 0xe1, 0x00, 0x02}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stripJPEGMetadata(tc.data)
			assert.Error(t, err)
		})
	}
}

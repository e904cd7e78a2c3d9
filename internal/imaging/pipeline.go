package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"log"

	im "github.com/disintegration/imaging"
)

const (
	maxDimension    = 1024
	maxEncodedBytes = 500 * 1024
	startQuality    = 85
	floorQuality    = 50
	qualityStep     = 5
)

// StripMetadata removes embedded capture metadata (EXIF, XMP, comments) from
// JPEG data for privacy. Best effort: any input it cannot parse, including
// non-JPEG formats, is returned unchanged rather than failing the flow.
func StripMetadata(data []byte) []byte {
	stripped, err := stripJPEGMetadata(data)
	if err != nil {
		return data
	}
	return stripped
}

// ResizeAndCompress caps the longer side at 1024px (never upscaling) using a
// Lanczos resample, then encodes JPEG starting at quality 85, stepping down
// by 5 while the output exceeds 500KB. The budget is soft: once quality 50 is
// reached the result is accepted as-is.
func ResizeAndCompress(data []byte) ([]byte, error) {
	src, err := im.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		src = im.Fit(src, maxDimension, maxDimension, im.Lanczos)
	}

	quality := startQuality
	encoded, err := encodeJPEG(src, quality)
	if err != nil {
		return nil, err
	}
	for len(encoded) > maxEncodedBytes && quality > floorQuality {
		quality -= qualityStep
		encoded, err = encodeJPEG(src, quality)
		if err != nil {
			return nil, err
		}
	}

	log.Printf("image compressed: %d -> %d bytes (quality %d)", len(data), len(encoded), quality)
	return encoded, nil
}

// EncodeForTransport returns the image bytes as base64 text with no embedded
// format prefix.
func EncodeForTransport(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Process is the single pipeline entry point: strip metadata, resize and
// compress, encode for transport.
func Process(data []byte) (string, error) {
	cleaned := StripMetadata(data)
	compressed, err := ResizeAndCompress(cleaned)
	if err != nil {
		return "", err
	}
	return EncodeForTransport(compressed), nil
}

func encodeJPEG(src image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := im.Encode(&buf, src, im.JPEG, im.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

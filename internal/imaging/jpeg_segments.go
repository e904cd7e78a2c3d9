package imaging

import "errors"

var (
	errNotJPEG   = errors.New("not a JPEG stream")
	errTruncated = errors.New("truncated JPEG segment")
	errBadMarker = errors.New("malformed JPEG marker")
)

// stripJPEGMetadata rewrites a JPEG stream without its metadata segments.
// EXIF and XMP live in APP1, ICC profiles and vendor blocks in APP2-APP13,
// free text in COM; all of those are dropped. APP0 (JFIF) and APP14 (Adobe
// color transform) are kept since decoders rely on them.
func stripJPEGMetadata(data []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, errNotJPEG
	}

	out := make([]byte, 0, len(data))
	out = append(out, data[:2]...)

	i := 2
	for {
		if i+1 >= len(data) {
			return nil, errTruncated
		}
		if data[i] != 0xff {
			return nil, errBadMarker
		}
		marker := data[i+1]

		switch {
		case marker == 0xda:
			// Start of scan: entropy-coded data follows through EOI.
			out = append(out, data[i:]...)
			return out, nil
		case marker == 0xd9:
			out = append(out, data[i], marker)
			return out, nil
		case marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7):
			// Standalone markers carry no length field.
			out = append(out, data[i], marker)
			i += 2
			continue
		}

		if i+3 >= len(data) {
			return nil, errTruncated
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if segLen < 2 || i+2+segLen > len(data) {
			return nil, errTruncated
		}
		end := i + 2 + segLen

		if !isMetadataMarker(marker) {
			out = append(out, data[i:end]...)
		}
		i = end
	}
}

func isMetadataMarker(marker byte) bool {
	if marker >= 0xe1 && marker <= 0xed { // APP1-APP13
		return true
	}
	return marker == 0xfe // COM
}

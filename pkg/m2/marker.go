package m2

import "bytes"

// MarkerSize is the byte length of the idempotency footer at the end of a
// processed file.
const MarkerSize = 64

// markerSignature identifies a file whose lookup table was already rebuilt.
var markerSignature = []byte("SEQREMAP")

// Marker returns the canonical footer block: the signature followed by zero
// padding up to MarkerSize bytes.
func Marker() []byte {
	m := make([]byte, MarkerSize)
	copy(m, markerSignature)
	return m
}

// HasMarker reports whether the final MarkerSize bytes of data equal the
// footer block. Detection is byte equality only — there is no checksum over
// the file contents, so anything that rewrites the tail of a marked file
// silently invalidates the marker.
func HasMarker(data []byte) bool {
	if len(data) < MarkerSize {
		return false
	}
	return bytes.Equal(data[len(data)-MarkerSize:], Marker())
}

// WriteMarker returns a copy of data carrying the footer block: appended
// when absent, rewritten in place when the buffer already ends with one
// (a reprocess under force). The input is never modified.
func WriteMarker(data []byte) []byte {
	if HasMarker(data) {
		out := make([]byte, len(data))
		copy(out, data)
		copy(out[len(out)-MarkerSize:], Marker())
		return out
	}
	out := make([]byte, len(data)+MarkerSize)
	copy(out, data)
	copy(out[len(data):], Marker())
	return out
}

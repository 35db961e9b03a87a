// Package m2 rebuilds the SequenceIdxHashByID lookup table of M2 model
// containers.
//
// The package only understands the handful of header fields it needs: the
// magic/version signature and the (count, offset) descriptors for the
// Sequences array and the SequenceIdxHashByID array. Every other byte of the
// file is opaque and passes through a rewrite unchanged.
package m2

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic bytes for the two supported container layouts. MD21 is the chunked
// form introduced in later client builds: a 4-byte magic and 4-byte chunk
// size wrapping a plain MD20 header.
var (
	MagicMD20 = [4]byte{'M', 'D', '2', '0'}
	MagicMD21 = [4]byte{'M', 'D', '2', '1'}
)

var (
	// ErrMalformedHeader means the file is not an M2 container, or is a
	// revision this tool does not understand.
	ErrMalformedHeader = errors.New("malformed m2 header")
	// ErrTruncatedFile means the header declares array bounds that exceed
	// the actual file length.
	ErrTruncatedFile = errors.New("truncated m2 file")
)

// Header field offsets, relative to the MD20 base offset.
const (
	ofsVersion          = 0x04
	ofsSequencesCount   = 0x1C
	ofsSequencesOffset  = 0x20
	ofsLookupCount      = 0x24
	ofsLookupOffset     = 0x28
	headerMinSize       = 0x2C
	md21ChunkHeaderSize = 8
)

// Element sizes of the two arrays the remapper touches.
const (
	SequenceRecordSize = 0x40
	LookupEntrySize    = 2
)

// Descriptor is one (count, offset) pair from the header directory.
// Offset is relative to the MD20 base offset.
type Descriptor struct {
	Count  uint32
	Offset uint32
}

// Header holds the header directory entries the remapper needs.
type Header struct {
	Magic      [4]byte
	Version    uint32
	BaseOffset int // 0 for MD20 files, 8 for MD21-wrapped files
	Sequences  Descriptor
	Lookup     Descriptor // SequenceIdxHashByID
}

// ParseHeader locates the Sequences and SequenceIdxHashByID descriptors in
// data. It fails with ErrMalformedHeader when the magic signature does not
// match and with ErrTruncatedFile when the header or a declared array region
// extends past the end of the buffer. It has no side effects.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: file shorter than magic", ErrTruncatedFile)
	}

	h := &Header{}
	copy(h.Magic[:], data[0:4])

	switch h.Magic {
	case MagicMD21:
		h.BaseOffset = md21ChunkHeaderSize
		if len(data) < h.BaseOffset+4 {
			return nil, fmt.Errorf("%w: MD21 chunk shorter than inner magic", ErrTruncatedFile)
		}
		var inner [4]byte
		copy(inner[:], data[h.BaseOffset:h.BaseOffset+4])
		if inner != MagicMD20 {
			return nil, fmt.Errorf("%w: expected MD20 inside MD21 chunk, got %q", ErrMalformedHeader, inner[:])
		}
	case MagicMD20:
		h.BaseOffset = 0
	default:
		return nil, fmt.Errorf("%w: unknown magic %q", ErrMalformedHeader, h.Magic[:])
	}

	if len(data) < h.BaseOffset+headerMinSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, file has %d",
			ErrTruncatedFile, h.BaseOffset+headerMinSize, len(data))
	}

	base := data[h.BaseOffset:]
	h.Version = binary.LittleEndian.Uint32(base[ofsVersion:])
	h.Sequences = Descriptor{
		Count:  binary.LittleEndian.Uint32(base[ofsSequencesCount:]),
		Offset: binary.LittleEndian.Uint32(base[ofsSequencesOffset:]),
	}
	h.Lookup = Descriptor{
		Count:  binary.LittleEndian.Uint32(base[ofsLookupCount:]),
		Offset: binary.LittleEndian.Uint32(base[ofsLookupOffset:]),
	}

	if err := h.checkRegion("sequences", h.Sequences, SequenceRecordSize, len(data)); err != nil {
		return nil, err
	}
	if err := h.checkRegion("sequence lookup", h.Lookup, LookupEntrySize, len(data)); err != nil {
		return nil, err
	}
	return h, nil
}

// checkRegion validates that an array region fits inside the file. The
// arithmetic is done in uint64 so hostile headers cannot overflow it.
func (h *Header) checkRegion(name string, d Descriptor, elemSize int, fileLen int) error {
	end := uint64(h.BaseOffset) + uint64(d.Offset) + uint64(d.Count)*uint64(elemSize)
	if end > uint64(fileLen) {
		return fmt.Errorf("%w: %s region ends at byte %d, file is %d bytes",
			ErrTruncatedFile, name, end, fileLen)
	}
	return nil
}

// LookupRegion returns the absolute [start, end) byte range of the
// SequenceIdxHashByID table within the file.
func (h *Header) LookupRegion() (start, end int) {
	start = h.BaseOffset + int(h.Lookup.Offset)
	return start, start + int(h.Lookup.Count)*LookupEntrySize
}

// Package backup reads and writes compressed backup copies of model files.
//
// A backup is a small container: a fixed little-endian header followed by a
// zstd stream of the original file bytes. It exists so a batch run over a
// large model set can keep pre-overwrite copies without doubling disk usage.
package backup

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/DataDog/zstd"
)

// Magic bytes identifying a backup container.
var Magic = [4]byte{'M', '2', 'B', 'K'}

// HeaderSize is the fixed binary size of a backup header.
const HeaderSize = 24 // 4 + 4 + 8 + 8 bytes

// DefaultCompressionLevel favors speed; backups are written once per file in
// the middle of a batch run.
const DefaultCompressionLevel = zstd.BestSpeed

// Header describes the payload of a backup container.
type Header struct {
	Magic            [4]byte
	HeaderLength     uint32
	Length           uint64 // uncompressed size of the original file
	CompressedLength uint64
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("invalid magic: expected %x, got %x", Magic, h.Magic)
	}
	if h.HeaderLength != 16 {
		return fmt.Errorf("invalid header length: expected 16, got %d", h.HeaderLength)
	}
	if h.CompressedLength == 0 {
		return fmt.Errorf("compressed size is zero")
	}
	return nil
}

// EncodeTo writes the header to the given buffer.
// The buffer must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.HeaderLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedLength)
}

// DecodeFrom reads the header from the given buffer.
// Does not validate - use Decode for validation.
func (h *Header) DecodeFrom(data []byte) {
	copy(h.Magic[:], data[0:4])
	h.HeaderLength = binary.LittleEndian.Uint32(data[4:8])
	h.Length = binary.LittleEndian.Uint64(data[8:16])
	h.CompressedLength = binary.LittleEndian.Uint64(data[16:24])
}

// Encode compresses data into a backup container.
func Encode(data []byte, level int) ([]byte, error) {
	comp, err := zstd.CompressLevel(nil, data, level)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	h := Header{
		Magic:            Magic,
		HeaderLength:     16,
		Length:           uint64(len(data)),
		CompressedLength: uint64(len(comp)),
	}

	out := make([]byte, HeaderSize+len(comp))
	h.EncodeTo(out)
	copy(out[HeaderSize:], comp)
	return out, nil
}

// Decode validates a backup container and returns the original file bytes.
func Decode(raw []byte) ([]byte, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("container too short: need %d bytes, got %d", HeaderSize, len(raw))
	}

	h := Header{}
	h.DecodeFrom(raw)
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	payload := raw[HeaderSize:]
	if uint64(len(payload)) != h.CompressedLength {
		return nil, fmt.Errorf("payload size mismatch: header says %d, got %d", h.CompressedLength, len(payload))
	}

	data, err := zstd.Decompress(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if uint64(len(data)) != h.Length {
		return nil, fmt.Errorf("incomplete restore: expected %d bytes, got %d", h.Length, len(data))
	}
	return data, nil
}

// WriteFile writes data as a backup container at path.
func WriteFile(path string, data []byte, level int) error {
	out, err := Encode(data, level)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ReadFile reads a backup container and returns the original file bytes.
func ReadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	return Decode(raw)
}

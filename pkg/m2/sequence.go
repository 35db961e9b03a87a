package m2

import (
	"encoding/binary"
	"fmt"
)

// SequenceRecord is one entry of the Sequences array. AnimationID is the
// global animation identifier the sequence implements; SubID numbers the
// variant. Index is the record's position in the array — this position, not
// any stored field, is what the lookup table references.
type SequenceRecord struct {
	AnimationID uint16
	SubID       uint16
	Index       int
}

// ReadSequences materializes the Sequences array in on-disk order, so a
// record's slice position equals its sequence index.
func ReadSequences(data []byte, h *Header) ([]SequenceRecord, error) {
	count := int(h.Sequences.Count)
	start := h.BaseOffset + int(h.Sequences.Offset)

	end := uint64(start) + uint64(count)*SequenceRecordSize
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: sequences region ends at byte %d, file is %d bytes",
			ErrTruncatedFile, end, len(data))
	}

	seqs := make([]SequenceRecord, count)
	for i := range seqs {
		rec := data[start+i*SequenceRecordSize:]
		seqs[i] = SequenceRecord{
			AnimationID: binary.LittleEndian.Uint16(rec[0:2]),
			SubID:       binary.LittleEndian.Uint16(rec[2:4]),
			Index:       i,
		}
	}
	return seqs, nil
}

package m2

import (
	"encoding/binary"
	"math"
)

// BuildLookup computes a SequenceIdxHashByID table of exactly length entries
// from the ordered sequence list. table[id] is the lowest sequence index
// whose AnimationID equals id, or -1 when the model has no such sequence.
//
// Records that the table cannot represent are returned separately instead of
// failing: an AnimationID at or beyond the table length, or a sequence index
// too large for an int16 entry. The table length is a structural property of
// the file and is never altered here.
//
// The function is pure and deterministic; the on-disk table contents are
// never consulted.
func BuildLookup(seqs []SequenceRecord, length int) (table []int16, unaddressable []SequenceRecord) {
	table = make([]int16, length)
	for i := range table {
		table[i] = -1
	}
	for _, s := range seqs {
		if int(s.AnimationID) >= length || s.Index > math.MaxInt16 {
			unaddressable = append(unaddressable, s)
			continue
		}
		if table[s.AnimationID] == -1 {
			table[s.AnimationID] = int16(s.Index)
		}
	}
	return table, unaddressable
}

// EncodeLookup serializes a lookup table to its on-disk little-endian form.
func EncodeLookup(table []int16) []byte {
	buf := make([]byte, len(table)*LookupEntrySize)
	for i, v := range table {
		binary.LittleEndian.PutUint16(buf[i*LookupEntrySize:], uint16(v))
	}
	return buf
}

// DecodeLookup deserializes an on-disk lookup table.
func DecodeLookup(data []byte) []int16 {
	table := make([]int16, len(data)/LookupEntrySize)
	for i := range table {
		table[i] = int16(binary.LittleEndian.Uint16(data[i*LookupEntrySize:]))
	}
	return table
}

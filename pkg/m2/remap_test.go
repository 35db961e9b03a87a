package m2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// modelSpec describes a synthetic model file for tests.
type modelSpec struct {
	chunked     bool     // wrap the MD20 data in an MD21 chunk
	animIDs     []uint16 // one sequence record per entry, in array order
	oldLookup   []int16  // on-disk lookup table contents
	trailing    int      // opaque bytes after the lookup table
	lookupCount uint32   // override for the lookup descriptor count, 0 = len(oldLookup)
}

const testSeqOffset = 0x80 // relative to base, leaves room for the header

// buildModel assembles a minimal M2 buffer: header, sequence records, lookup
// table, then trailing opaque bytes. Every byte not explicitly set carries a
// position-derived pattern so passthrough violations show up.
func buildModel(t *testing.T, spec modelSpec) []byte {
	t.Helper()

	lookupOff := testSeqOffset + len(spec.animIDs)*SequenceRecordSize
	size := lookupOff + len(spec.oldLookup)*LookupEntrySize + spec.trailing

	md20 := make([]byte, size)
	for i := range md20 {
		md20[i] = byte(i*7 + 3)
	}

	copy(md20[0:4], MagicMD20[:])
	binary.LittleEndian.PutUint32(md20[ofsVersion:], 264)
	binary.LittleEndian.PutUint32(md20[ofsSequencesCount:], uint32(len(spec.animIDs)))
	binary.LittleEndian.PutUint32(md20[ofsSequencesOffset:], uint32(testSeqOffset))
	lookupCount := spec.lookupCount
	if lookupCount == 0 {
		lookupCount = uint32(len(spec.oldLookup))
	}
	binary.LittleEndian.PutUint32(md20[ofsLookupCount:], lookupCount)
	binary.LittleEndian.PutUint32(md20[ofsLookupOffset:], uint32(lookupOff))

	for i, id := range spec.animIDs {
		rec := md20[testSeqOffset+i*SequenceRecordSize:]
		binary.LittleEndian.PutUint16(rec[0:2], id)
		binary.LittleEndian.PutUint16(rec[2:4], uint16(i))
	}
	copy(md20[lookupOff:], EncodeLookup(spec.oldLookup))

	if !spec.chunked {
		return md20
	}

	out := make([]byte, md21ChunkHeaderSize+len(md20))
	copy(out[0:4], MagicMD21[:])
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(md20)))
	copy(out[md21ChunkHeaderSize:], md20)
	return out
}

func emptyLookup(n int) []int16 {
	l := make([]int16, n)
	for i := range l {
		l[i] = -1
	}
	return l
}

func TestRemap(t *testing.T) {
	t.Run("RebuildsLookup", func(t *testing.T) {
		// Sequences [5, 2, 5] against a corrupted table of length 8: the
		// duplicate id 5 must resolve to the first record.
		in := buildModel(t, modelSpec{
			animIDs:   []uint16{5, 2, 5},
			oldLookup: emptyLookup(8),
			trailing:  16,
		})

		res, err := Remap(in, false)
		if err != nil {
			t.Fatalf("remap: %v", err)
		}
		if res.Status != StatusWritten {
			t.Fatalf("status = %v, want written", res.Status)
		}

		want := []int16{-1, -1, 1, -1, -1, 0, -1, -1}
		start, end := res.Header.LookupRegion()
		got := DecodeLookup(res.Output[start:end])
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("table[%d] = %d, want %d", i, got[i], want[i])
			}
		}
		if res.Changes != 2 {
			t.Errorf("changes = %d, want 2", res.Changes)
		}
		if len(res.Unaddressable) != 0 {
			t.Errorf("unaddressable = %v, want none", res.Unaddressable)
		}
	})

	t.Run("TableLengthInvariant", func(t *testing.T) {
		in := buildModel(t, modelSpec{
			animIDs:   []uint16{1, 3},
			oldLookup: []int16{7, 7, 7, 7, 7},
			trailing:  4,
		})
		res, err := Remap(in, false)
		if err != nil {
			t.Fatalf("remap: %v", err)
		}
		if len(res.Table) != 5 {
			t.Errorf("table length = %d, want 5", len(res.Table))
		}
		if len(res.Output) != len(in)+MarkerSize {
			t.Errorf("output length = %d, want input + %d = %d", len(res.Output), MarkerSize, len(in)+MarkerSize)
		}
	})

	t.Run("Passthrough", func(t *testing.T) {
		in := buildModel(t, modelSpec{
			chunked:   true,
			animIDs:   []uint16{0, 4},
			oldLookup: []int16{9, 9, 9, 9, 9, 9},
			trailing:  32,
		})
		res, err := Remap(in, false)
		if err != nil {
			t.Fatalf("remap: %v", err)
		}

		start, end := res.Header.LookupRegion()
		for i := range in {
			if i >= start && i < end {
				continue
			}
			if res.Output[i] != in[i] {
				t.Fatalf("byte %d changed: %#x -> %#x (lookup region is [%d, %d))",
					i, in[i], res.Output[i], start, end)
			}
		}
		if !HasMarker(res.Output) {
			t.Error("output does not end with the footer block")
		}
	})

	t.Run("SkipsMarkedFile", func(t *testing.T) {
		in := buildModel(t, modelSpec{
			animIDs:   []uint16{2},
			oldLookup: emptyLookup(4),
		})
		first, err := Remap(in, false)
		if err != nil {
			t.Fatalf("first run: %v", err)
		}

		second, err := Remap(first.Output, false)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if second.Status != StatusSkipped {
			t.Errorf("second run status = %v, want skipped", second.Status)
		}
		if second.Output != nil {
			t.Error("skipped run produced an output buffer")
		}
	})

	t.Run("ForcedRerunIsIdempotent", func(t *testing.T) {
		in := buildModel(t, modelSpec{
			animIDs:   []uint16{5, 2, 5},
			oldLookup: emptyLookup(8),
			trailing:  8,
		})
		first, err := Remap(in, false)
		if err != nil {
			t.Fatalf("first run: %v", err)
		}
		second, err := Remap(first.Output, true)
		if err != nil {
			t.Fatalf("forced rerun: %v", err)
		}
		if !bytes.Equal(second.Output, first.Output) {
			t.Error("forced rerun output differs from first output")
		}
		if second.Changes != 0 {
			t.Errorf("forced rerun changes = %d, want 0", second.Changes)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		in := buildModel(t, modelSpec{
			animIDs:   []uint16{9, 0, 9, 3, 0},
			oldLookup: emptyLookup(12),
			trailing:  8,
		})
		a, err := Remap(in, false)
		if err != nil {
			t.Fatalf("remap: %v", err)
		}
		b, err := Remap(in, false)
		if err != nil {
			t.Fatalf("remap: %v", err)
		}
		if !bytes.Equal(a.Output, b.Output) {
			t.Error("repeated invocations produced different outputs")
		}
	})

	t.Run("UnaddressableAnimationID", func(t *testing.T) {
		in := buildModel(t, modelSpec{
			animIDs:   []uint16{1, 200},
			oldLookup: emptyLookup(4),
		})
		res, err := Remap(in, false)
		if err != nil {
			t.Fatalf("remap: %v", err)
		}
		if len(res.Unaddressable) != 1 || res.Unaddressable[0].AnimationID != 200 {
			t.Fatalf("unaddressable = %v, want the id-200 record", res.Unaddressable)
		}
		if len(res.Table) != 4 {
			t.Errorf("table length = %d, want 4", len(res.Table))
		}
	})

	t.Run("TruncatedLookupRegion", func(t *testing.T) {
		in := buildModel(t, modelSpec{
			animIDs:     []uint16{1},
			oldLookup:   emptyLookup(4),
			lookupCount: 4096, // region extends far past EOF
		})
		res, err := Remap(in, false)
		if !errors.Is(err, ErrTruncatedFile) {
			t.Fatalf("err = %v, want ErrTruncatedFile", err)
		}
		if res != nil {
			t.Error("failed run returned a result")
		}
	})

	t.Run("NotAnM2File", func(t *testing.T) {
		_, err := Remap([]byte("GIF89a definitely not a model"), false)
		if !errors.Is(err, ErrMalformedHeader) {
			t.Fatalf("err = %v, want ErrMalformedHeader", err)
		}
	})
}

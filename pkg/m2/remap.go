package m2

// Status is the terminal state of one remap invocation.
type Status int

const (
	// StatusSkipped means the file already carried the idempotency footer
	// and force was not set; no output buffer was produced.
	StatusSkipped Status = iota
	// StatusWritten means a rebuilt output buffer was produced.
	StatusWritten
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusWritten:
		return "written"
	default:
		return "unknown"
	}
}

// Result describes one remap run over a single file buffer.
type Result struct {
	Status    Status
	Header    *Header
	Sequences []SequenceRecord
	// Table is the rebuilt lookup table, always the length declared by the
	// header directory.
	Table []int16
	// Changes counts entries that differ from the on-disk table.
	Changes int
	// Unaddressable lists sequence records the fixed-length table cannot
	// reference. They are excluded from the table, never a fatal error.
	Unaddressable []SequenceRecord
	// Output is the rewritten file, nil when Status is StatusSkipped. It is
	// byte-identical to the input outside the lookup-table region and the
	// trailing footer block.
	Output []byte
}

// Remap rebuilds the SequenceIdxHashByID table of the model held in data.
// The input buffer is never modified; the rewritten file is returned in
// Result.Output, fully materialized before any caller touches the
// filesystem. When the idempotency footer is present and force is false the
// file is left alone and Result.Status is StatusSkipped.
//
// A file whose table is already correct is still rewritten and marked
// (Changes is 0), so the next run can skip it outright.
func Remap(data []byte, force bool) (*Result, error) {
	if !force && HasMarker(data) {
		return &Result{Status: StatusSkipped}, nil
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	seqs, err := ReadSequences(data, h)
	if err != nil {
		return nil, err
	}

	table, unaddressable := BuildLookup(seqs, int(h.Lookup.Count))

	start, end := h.LookupRegion()
	old := DecodeLookup(data[start:end])
	changes := 0
	for i := range table {
		if table[i] != old[i] {
			changes++
		}
	}

	out := make([]byte, len(data))
	copy(out, data)
	copy(out[start:end], EncodeLookup(table))
	out = WriteMarker(out)

	return &Result{
		Status:        StatusWritten,
		Header:        h,
		Sequences:     seqs,
		Table:         table,
		Changes:       changes,
		Unaddressable: unaddressable,
		Output:        out,
	}, nil
}

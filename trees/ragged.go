package trees

import "fmt"

func appendOffset(offsets []uint64, n int) []uint64 {
	if len(offsets) == 0 {
		offsets = []uint64{0}
	}
	last := offsets[len(offsets)-1]
	return append(offsets, last+uint64(n))
}

// Row returns element i of a ragged byte column.
func Row(payload []byte, offsets []uint64, i int) []byte {
	return payload[offsets[i]:offsets[i+1]]
}

// FloatRow returns element i of a ragged float64 column.
func FloatRow(payload []float64, offsets []uint64, i int) []float64 {
	return payload[offsets[i]:offsets[i+1]]
}

// IntRow returns element i of a ragged int32 column.
func IntRow(payload []int32, offsets []uint64, i int) []int32 {
	return payload[offsets[i]:offsets[i+1]]
}

// CheckOffsets validates the ragged-column invariant: offsets has length
// rows+1, starts at zero, is non-decreasing and ends at the payload length.
func CheckOffsets(name string, offsets []uint64, rows, payloadLen int) error {
	if len(offsets) != rows+1 {
		return fmt.Errorf("%s: offsets length %d, want %d", name, len(offsets), rows+1)
	}
	if offsets[0] != 0 {
		return fmt.Errorf("%s: offsets[0] = %d, want 0", name, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("%s: offsets decrease at %d (%d < %d)", name, i, offsets[i], offsets[i-1])
		}
	}
	if offsets[len(offsets)-1] != uint64(payloadLen) {
		return fmt.Errorf("%s: final offset %d, payload length %d", name, offsets[len(offsets)-1], payloadLen)
	}
	return nil
}

// Validate checks per-table column lengths and ragged invariants.
func (ts *TableSet) Validate() error {
	checks := []struct {
		name    string
		offsets []uint64
		rows    int
		payload int
	}{
		{"individuals/location", ts.Individuals.LocationOffsets, ts.Individuals.NumRows(), len(ts.Individuals.Location)},
		{"individuals/parents", ts.Individuals.ParentsOffsets, ts.Individuals.NumRows(), len(ts.Individuals.Parents)},
		{"individuals/metadata", ts.Individuals.MetadataOffsets, ts.Individuals.NumRows(), len(ts.Individuals.Metadata)},
		{"nodes/metadata", ts.Nodes.MetadataOffsets, ts.Nodes.NumRows(), len(ts.Nodes.Metadata)},
		{"edges/metadata", ts.Edges.MetadataOffsets, ts.Edges.NumRows(), len(ts.Edges.Metadata)},
		{"migrations/metadata", ts.Migrations.MetadataOffsets, ts.Migrations.NumRows(), len(ts.Migrations.Metadata)},
		{"sites/ancestral_state", ts.Sites.AncestralStateOffsets, ts.Sites.NumRows(), len(ts.Sites.AncestralState)},
		{"sites/metadata", ts.Sites.MetadataOffsets, ts.Sites.NumRows(), len(ts.Sites.Metadata)},
		{"mutations/derived_state", ts.Mutations.DerivedStateOffsets, ts.Mutations.NumRows(), len(ts.Mutations.DerivedState)},
		{"mutations/metadata", ts.Mutations.MetadataOffsets, ts.Mutations.NumRows(), len(ts.Mutations.Metadata)},
		{"populations/metadata", ts.Populations.MetadataOffsets, ts.Populations.NumRows(), len(ts.Populations.Metadata)},
		{"provenances/timestamp", ts.Provenances.TimestampOffsets, ts.Provenances.NumRows(), len(ts.Provenances.Timestamp)},
		{"provenances/record", ts.Provenances.RecordOffsets, ts.Provenances.NumRows(), len(ts.Provenances.Record)},
	}
	for _, c := range checks {
		if err := CheckOffsets(c.name, c.offsets, c.rows, c.payload); err != nil {
			return err
		}
	}
	return nil
}

package trees

import (
	"bytes"
	"math"
)

// Equal reports field-for-field equality of two table sets. Float columns
// compare bitwise except that NaN equals NaN, so unknown mutation times
// survive a round trip.
func (ts *TableSet) Equal(other *TableSet) bool {
	return floatEq(ts.SequenceLength, other.SequenceLength) &&
		ts.TimeUnits == other.TimeUnits &&
		bytes.Equal(ts.Metadata, other.Metadata) &&
		ts.MetadataSchema == other.MetadataSchema &&
		ts.Individuals.Equal(&other.Individuals) &&
		ts.Nodes.Equal(&other.Nodes) &&
		ts.Edges.Equal(&other.Edges) &&
		ts.Migrations.Equal(&other.Migrations) &&
		ts.Sites.Equal(&other.Sites) &&
		ts.Mutations.Equal(&other.Mutations) &&
		ts.Populations.Equal(&other.Populations) &&
		ts.Provenances.Equal(&other.Provenances)
}

// Equal reports row-for-row equality.
func (t *IndividualTable) Equal(o *IndividualTable) bool {
	return uintsEq(t.Flags, o.Flags) &&
		floatsEq(t.Location, o.Location) &&
		offsetsEq(t.LocationOffsets, o.LocationOffsets) &&
		intsEq(t.Parents, o.Parents) &&
		offsetsEq(t.ParentsOffsets, o.ParentsOffsets) &&
		bytes.Equal(t.Metadata, o.Metadata) &&
		offsetsEq(t.MetadataOffsets, o.MetadataOffsets) &&
		t.MetadataSchema == o.MetadataSchema
}

// Equal reports row-for-row equality.
func (t *NodeTable) Equal(o *NodeTable) bool {
	return uintsEq(t.Flags, o.Flags) &&
		floatsEq(t.Time, o.Time) &&
		intsEq(t.Population, o.Population) &&
		intsEq(t.Individual, o.Individual) &&
		bytes.Equal(t.Metadata, o.Metadata) &&
		offsetsEq(t.MetadataOffsets, o.MetadataOffsets) &&
		t.MetadataSchema == o.MetadataSchema
}

// Equal reports row-for-row equality.
func (t *EdgeTable) Equal(o *EdgeTable) bool {
	return floatsEq(t.Left, o.Left) &&
		floatsEq(t.Right, o.Right) &&
		intsEq(t.Parent, o.Parent) &&
		intsEq(t.Child, o.Child) &&
		bytes.Equal(t.Metadata, o.Metadata) &&
		offsetsEq(t.MetadataOffsets, o.MetadataOffsets) &&
		t.MetadataSchema == o.MetadataSchema
}

// Equal reports row-for-row equality.
func (t *MigrationTable) Equal(o *MigrationTable) bool {
	return floatsEq(t.Left, o.Left) &&
		floatsEq(t.Right, o.Right) &&
		intsEq(t.Node, o.Node) &&
		intsEq(t.Source, o.Source) &&
		intsEq(t.Dest, o.Dest) &&
		floatsEq(t.Time, o.Time) &&
		bytes.Equal(t.Metadata, o.Metadata) &&
		offsetsEq(t.MetadataOffsets, o.MetadataOffsets) &&
		t.MetadataSchema == o.MetadataSchema
}

// Equal reports row-for-row equality.
func (t *SiteTable) Equal(o *SiteTable) bool {
	return floatsEq(t.Position, o.Position) &&
		bytes.Equal(t.AncestralState, o.AncestralState) &&
		offsetsEq(t.AncestralStateOffsets, o.AncestralStateOffsets) &&
		bytes.Equal(t.Metadata, o.Metadata) &&
		offsetsEq(t.MetadataOffsets, o.MetadataOffsets) &&
		t.MetadataSchema == o.MetadataSchema
}

// Equal reports row-for-row equality.
func (t *MutationTable) Equal(o *MutationTable) bool {
	return intsEq(t.Site, o.Site) &&
		intsEq(t.Node, o.Node) &&
		intsEq(t.Parent, o.Parent) &&
		floatsEq(t.Time, o.Time) &&
		bytes.Equal(t.DerivedState, o.DerivedState) &&
		offsetsEq(t.DerivedStateOffsets, o.DerivedStateOffsets) &&
		bytes.Equal(t.Metadata, o.Metadata) &&
		offsetsEq(t.MetadataOffsets, o.MetadataOffsets) &&
		t.MetadataSchema == o.MetadataSchema
}

// Equal reports row-for-row equality.
func (t *PopulationTable) Equal(o *PopulationTable) bool {
	return bytes.Equal(t.Metadata, o.Metadata) &&
		offsetsEq(t.MetadataOffsets, o.MetadataOffsets) &&
		t.MetadataSchema == o.MetadataSchema
}

// Equal reports row-for-row equality.
func (t *ProvenanceTable) Equal(o *ProvenanceTable) bool {
	return bytes.Equal(t.Timestamp, o.Timestamp) &&
		offsetsEq(t.TimestampOffsets, o.TimestampOffsets) &&
		bytes.Equal(t.Record, o.Record) &&
		offsetsEq(t.RecordOffsets, o.RecordOffsets)
}

func floatEq(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func floatsEq(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !floatEq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func intsEq(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func uintsEq(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func offsetsEq(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

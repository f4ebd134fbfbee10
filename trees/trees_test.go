package trees

import (
	"bytes"
	"math"
	"testing"
)

// twoSampleTree builds a single tree over [0, 10): samples 0 and 1 under
// internal node 2, with node 3 left unreferenced, two sites and one
// mutation.
func twoSampleTree() *TableSet {
	ts := New(10)
	p := ts.Populations.Add([]byte(`{"name":"pop0"}`))
	ind := ts.Individuals.Add(0, []float64{1.5, -2.5}, []int32{NullID}, []byte("ind-meta"))
	ts.Nodes.Add(FlagSample, 0, p, ind, nil)
	ts.Nodes.Add(FlagSample, 0, p, NullID, []byte("n1"))
	ts.Nodes.Add(0, 1.0, NullID, NullID, nil)
	ts.Nodes.Add(0, 5.0, NullID, NullID, nil) // never referenced
	ts.Edges.Add(0, 10, 2, 0, nil)
	ts.Edges.Add(0, 10, 2, 1, nil)
	s0 := ts.Sites.Add(2, []byte("A"), nil)
	ts.Sites.Add(7, []byte("G"), nil)
	ts.Mutations.Add(s0, 0, NullID, math.NaN(), []byte("T"), nil)
	ts.Provenances.Add([]byte("2020-01-01T00:00:00Z"), []byte(`{"parameters":{}}`))
	return ts
}

func TestAddMaintainsOffsets(t *testing.T) {
	ts := New(1)
	// Ragged rows with byte lengths 0, 5, 0.
	ts.Populations.Add(nil)
	ts.Populations.Add([]byte("hello"))
	ts.Populations.Add(nil)
	want := []uint64{0, 0, 5, 5}
	got := ts.Populations.MetadataOffsets
	if len(got) != len(want) {
		t.Fatalf("offsets length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offsets[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if string(Row(ts.Populations.Metadata, got, 1)) != "hello" {
		t.Errorf("row 1 payload = %q, want %q", Row(ts.Populations.Metadata, got, 1), "hello")
	}
	if len(Row(ts.Populations.Metadata, got, 0)) != 0 || len(Row(ts.Populations.Metadata, got, 2)) != 0 {
		t.Error("rows 0 and 2 should be empty")
	}
	if err := ts.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestCheckOffsetsRejectsBadColumns(t *testing.T) {
	if err := CheckOffsets("c", []uint64{0, 2, 1}, 2, 1); err == nil {
		t.Error("decreasing offsets accepted")
	}
	if err := CheckOffsets("c", []uint64{1, 2}, 1, 2); err == nil {
		t.Error("nonzero first offset accepted")
	}
	if err := CheckOffsets("c", []uint64{0, 2}, 1, 3); err == nil {
		t.Error("final offset not matching payload accepted")
	}
	if err := CheckOffsets("c", []uint64{0}, 1, 0); err == nil {
		t.Error("short offsets accepted")
	}
}

func TestDumpLoadRoundTrip(t *testing.T) {
	ts := twoSampleTree()
	ts.Metadata = []byte("top-level \xc3\xa9\xe2\x82\xac metadata")
	ts.MetadataSchema = `{"codec":"json"}`
	ts.TimeUnits = "generations"

	buf := &bytes.Buffer{}
	if err := ts.Dump(buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	got, err := Load(buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ts.Equal(got) {
		t.Error("round-tripped table set differs from original")
	}
}

func TestLoadRejectsJunk(t *testing.T) {
	if _, err := Load(bytes.NewReader([]byte("definitely not a table set"))); err == nil {
		t.Error("junk input accepted")
	}
}

func TestVariants(t *testing.T) {
	ts := twoSampleTree()
	variants, err := ts.Variants()
	if err != nil {
		t.Fatalf("Variants failed: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(variants))
	}
	v := variants[0]
	if v.Position != 2 || len(v.Alleles) != 2 || v.Alleles[0] != "A" || v.Alleles[1] != "T" {
		t.Errorf("unexpected variant 0: %+v", v)
	}
	if v.Genotypes[0] != 1 || v.Genotypes[1] != 0 {
		t.Errorf("genotypes: got %v, want [1 0]", v.Genotypes)
	}
	v = variants[1]
	if v.Position != 7 || len(v.Alleles) != 1 || v.Genotypes[0] != 0 || v.Genotypes[1] != 0 {
		t.Errorf("unexpected variant 1: %+v", v)
	}
}

func TestSimplifySiteTopology(t *testing.T) {
	ts := twoSampleTree()
	before, err := ts.Variants()
	if err != nil {
		t.Fatalf("Variants failed: %v", err)
	}
	simplified, err := ts.SimplifySiteTopology()
	if err != nil {
		t.Fatalf("SimplifySiteTopology failed: %v", err)
	}
	if err := simplified.Validate(); err != nil {
		t.Fatalf("simplified set invalid: %v", err)
	}
	after, err := simplified.Variants()
	if err != nil {
		t.Fatalf("Variants on simplified failed: %v", err)
	}
	if !VariantsEqual(before, after) {
		t.Error("variants changed by simplification")
	}
	if simplified.Nodes.NumRows() != 3 {
		t.Errorf("got %d nodes, want 3 (unreferenced node dropped)", simplified.Nodes.NumRows())
	}
	if simplified.Provenances.NumRows() != ts.Provenances.NumRows()+1 {
		t.Errorf("expected one appended provenance record, got %d rows", simplified.Provenances.NumRows())
	}
	// Edge intervals snap to the site breakpoints.
	for i := range simplified.Edges.Left {
		if simplified.Edges.Left[i] != 2 || simplified.Edges.Right[i] != 10 {
			t.Errorf("edge %d: [%v, %v), want [2, 10)", i,
				simplified.Edges.Left[i], simplified.Edges.Right[i])
		}
	}
}

func TestSimplifySquashesAbuttingEdges(t *testing.T) {
	ts := New(10)
	ts.Nodes.Add(FlagSample, 0, NullID, NullID, nil)
	ts.Nodes.Add(0, 1.0, NullID, NullID, nil)
	// Same parent/child split at 5; both halves cover a site.
	ts.Edges.Add(0, 5, 1, 0, nil)
	ts.Edges.Add(5, 10, 1, 0, nil)
	ts.Sites.Add(2, []byte("A"), nil)
	ts.Sites.Add(7, []byte("C"), nil)

	simplified, err := ts.SimplifySiteTopology()
	if err != nil {
		t.Fatalf("SimplifySiteTopology failed: %v", err)
	}
	if simplified.Edges.NumRows() != 1 {
		t.Fatalf("got %d edges, want 1 after squashing", simplified.Edges.NumRows())
	}
	if simplified.Edges.Left[0] != 2 || simplified.Edges.Right[0] != 10 {
		t.Errorf("edge: [%v, %v), want [2, 10)", simplified.Edges.Left[0], simplified.Edges.Right[0])
	}
}

func TestSimplifyDropsSitelessEdges(t *testing.T) {
	ts := New(10)
	ts.Nodes.Add(FlagSample, 0, NullID, NullID, nil)
	ts.Nodes.Add(0, 1.0, NullID, NullID, nil)
	ts.Edges.Add(0, 10, 1, 0, nil)

	simplified, err := ts.SimplifySiteTopology()
	if err != nil {
		t.Fatalf("SimplifySiteTopology failed: %v", err)
	}
	if simplified.Edges.NumRows() != 0 {
		t.Errorf("got %d edges, want 0 with no sites", simplified.Edges.NumRows())
	}
	// Samples survive even with no topology left.
	if simplified.Nodes.NumRows() != 1 {
		t.Errorf("got %d nodes, want 1 (the sample)", simplified.Nodes.NumRows())
	}
}

func TestSamples(t *testing.T) {
	ts := twoSampleTree()
	samples := ts.Samples()
	if len(samples) != 2 || samples[0] != 0 || samples[1] != 1 {
		t.Errorf("Samples() = %v, want [0 1]", samples)
	}
}

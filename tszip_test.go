package tszip

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tszip-db/tszip/internal/carray"
	"github.com/tszip-db/tszip/trees"
)

// fixture builds a table set exercising every column family: ragged
// payloads with empty and non-ASCII rows, a mutation parent chain,
// migrations and a NaN mutation time.
func fixture() *trees.TableSet {
	ts := trees.New(100)
	ts.TimeUnits = "generations"
	ts.Metadata = []byte("top-level \xff\xfe bytes")
	ts.MetadataSchema = `{"codec":"json"}`

	p0 := ts.Populations.Add([]byte(`{"name":"CEU"}`))
	p1 := ts.Populations.Add(nil)
	ind := ts.Individuals.Add(0, []float64{12.5, -3.25}, []int32{trees.NullID}, []byte("indé"))

	n0 := ts.Nodes.Add(trees.FlagSample, 0, p0, ind, nil)
	n1 := ts.Nodes.Add(trees.FlagSample, 0, p0, trees.NullID, []byte("n1"))
	n2 := ts.Nodes.Add(0, 1.5, p0, trees.NullID, nil)
	n3 := ts.Nodes.Add(0, 3.0, p1, trees.NullID, nil)

	ts.Edges.Add(0, 60, n2, n0, nil)
	ts.Edges.Add(0, 60, n2, n1, nil)
	ts.Edges.Add(60, 100, n3, n0, []byte("em"))
	ts.Edges.Add(60, 100, n3, n1, nil)
	ts.Edges.Add(0, 60, n3, n2, nil)

	ts.Migrations.Add(0, 100, n0, p0, p1, 0.75, nil)

	s0 := ts.Sites.Add(10, []byte("A"), nil)
	s1 := ts.Sites.Add(42.5, []byte("C"), []byte("site☃"))
	ts.Sites.Add(77, []byte("G"), nil)

	m0 := ts.Mutations.Add(s0, n2, trees.NullID, 1.0, []byte("T"), nil)
	ts.Mutations.Add(s0, n0, m0, 0.5, []byte("A"), []byte("back"))
	ts.Mutations.Add(s1, n1, trees.NullID, math.NaN(), []byte("CC"), nil)

	ts.Provenances.Add([]byte("2020-01-01T00:00:00Z"), []byte(`{"parameters":{}}`))
	return ts
}

func compressToTemp(t *testing.T, ts *trees.TableSet, opts *Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.tsz")
	if err := Compress(ts, path, opts); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	return path
}

func TestRoundTrip(t *testing.T) {
	ts := fixture()
	path := compressToTemp(t, ts, nil)
	got, err := Decompress(path)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !ts.Equal(got) {
		t.Error("decoded table set differs from original")
	}
}

func TestRoundTripSnappy(t *testing.T) {
	ts := fixture()
	path := compressToTemp(t, ts, &Options{Compressor: string(carray.Snappy)})
	got, err := Decompress(path)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !ts.Equal(got) {
		t.Error("decoded table set differs from original")
	}
}

func TestRoundTripEmptyTables(t *testing.T) {
	ts := trees.New(1)
	path := compressToTemp(t, ts, nil)
	got, err := Decompress(path)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !ts.Equal(got) {
		t.Error("decoded table set differs from original")
	}
}

func TestRoundTripSingleNode(t *testing.T) {
	ts := trees.New(50)
	ts.Nodes.Add(trees.FlagSample, 2.5, trees.NullID, trees.NullID, nil)
	path := compressToTemp(t, ts, nil)
	got, err := Decompress(path)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if got.Nodes.NumRows() != 1 {
		t.Fatalf("decoded %d node rows, want 1", got.Nodes.NumRows())
	}
	if got.Edges.NumRows() != 0 || got.Sites.NumRows() != 0 || got.Mutations.NumRows() != 0 {
		t.Error("empty tables came back non-empty")
	}
	if !ts.Equal(got) {
		t.Error("decoded table set differs from original")
	}
}

func TestRoundTripRaggedRows(t *testing.T) {
	ts := trees.New(1)
	// Ragged rows with byte lengths 0, 5, 0.
	ts.Populations.Add(nil)
	ts.Populations.Add([]byte("hello"))
	ts.Populations.Add(nil)
	path := compressToTemp(t, ts, nil)
	got, err := Decompress(path)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	wantOffsets := []uint64{0, 0, 5, 5}
	for i, w := range wantOffsets {
		if got.Populations.MetadataOffsets[i] != w {
			t.Fatalf("offsets[%d] = %d, want %d", i, got.Populations.MetadataOffsets[i], w)
		}
	}
	if string(trees.Row(got.Populations.Metadata, got.Populations.MetadataOffsets, 1)) != "hello" {
		t.Error("row 1 payload lost")
	}
}

func TestCompressToStream(t *testing.T) {
	ts := fixture()
	var buf bytes.Buffer
	if err := CompressTo(ts, &buf, nil); err != nil {
		t.Fatalf("CompressTo failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "stream.tsz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Decompress(path)
	if err != nil {
		t.Fatalf("Decompress of streamed archive failed: %v", err)
	}
	if !ts.Equal(got) {
		t.Error("streamed archive decodes differently")
	}
}

// writeVersioned writes a complete archive carrying the given identity
// and version attributes.
func writeVersioned(t *testing.T, path, name string, version []int) {
	t.Helper()
	ts := fixture()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cw := carray.NewWriter(f)
	err = cw.SetAttrs(rootAttrs{
		FormatName:     name,
		FormatVersion:  version,
		SequenceLength: ts.SequenceLength,
		TimeUnits:      ts.TimeUnits,
	})
	if err != nil {
		t.Fatal(err)
	}
	coords := coordinateDictionary(ts)
	columns, err := assembleColumns(ts, coords, false)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	for i := range columns {
		if err := columns[i].encode(cw, opts); err != nil {
			t.Fatal(err)
		}
	}
	if err := cw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestVersionGate(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		version []int
		wantErr error
	}{
		{"too_old", []int{0, 9}, ErrVersion},
		{"too_new", []int{2, 0}, ErrVersion},
		{"newer_minor", []int{FormatVersionMajor, FormatVersionMinor + 1}, nil},
		{"same", []int{FormatVersionMajor, FormatVersionMinor}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".tsz")
			writeVersioned(t, path, FormatName, tc.version)
			_, err := Decompress(path)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Decompress failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error %v, want %v", err, tc.wantErr)
			}
			if !errors.Is(err, ErrFormat) {
				t.Error("version errors should also match ErrFormat")
			}
		})
	}
}

func TestFormatNameMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.tsz")
	writeVersioned(t, path, "notzip", []int{1, 0})
	_, err := Decompress(path)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("got %v, want ErrFormat", err)
	}
	if errors.Is(err, ErrVersion) {
		t.Error("identity mismatch should not match ErrVersion")
	}
}

func TestDecompressRejectsJunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.tsz")
	if err := os.WriteFile(path, []byte("this is not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Decompress(path)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("got %v, want ErrFormat", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Type != FormatErrorContainer {
		t.Errorf("got %#v, want container format error", err)
	}
}

func TestDecompressMissingFile(t *testing.T) {
	_, err := Decompress(filepath.Join(t.TempDir(), "absent.tsz"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("got %v, want fs.ErrNotExist", err)
	}
	if errors.Is(err, ErrFormat) {
		t.Error("filesystem errors must not be wrapped as format errors")
	}
}

func TestWidthInference(t *testing.T) {
	signed := []struct {
		values []int64
		want   carray.Dtype
	}{
		{[]int64{0, 1, 127}, carray.Int8},
		{[]int64{128}, carray.Int16},
		{[]int64{-128}, carray.Int8},
		{[]int64{-129}, carray.Int16},
		{[]int64{32767}, carray.Int16},
		{[]int64{32768}, carray.Int32},
		{[]int64{-1 << 31}, carray.Int32},
		{[]int64{1 << 31}, carray.Int64},
		{[]int64{}, carray.Int32},
	}
	for _, tc := range signed {
		got := minimalSigned(tc.values, carray.Int32)
		if got != tc.want {
			t.Errorf("minimalSigned(%v) = %v, want %v", tc.values, got, tc.want)
		}
		// Idempotence: a narrowed array selects the same width again.
		if again := minimalSigned(tc.values, got); again != got {
			t.Errorf("minimalSigned(%v) not idempotent: %v then %v", tc.values, got, again)
		}
	}

	unsigned := []struct {
		values []uint64
		want   carray.Dtype
	}{
		{[]uint64{0, 255}, carray.Uint8},
		{[]uint64{256}, carray.Uint16},
		{[]uint64{65535}, carray.Uint16},
		{[]uint64{65536}, carray.Uint32},
		{[]uint64{1 << 32}, carray.Uint64},
		{[]uint64{}, carray.Uint64},
	}
	for _, tc := range unsigned {
		got := minimalUnsigned(tc.values, carray.Uint64)
		if got != tc.want {
			t.Errorf("minimalUnsigned(%v) = %v, want %v", tc.values, got, tc.want)
		}
	}
}

func TestDictionary(t *testing.T) {
	d := newDictionary([]float64{5, 1, 3}, []float64{3, 0, 8})
	want := []float64{0, 1, 3, 5, 8}
	if len(d.values) != len(want) {
		t.Fatalf("dictionary %v, want %v", d.values, want)
	}
	for i := 1; i < len(d.values); i++ {
		if d.values[i] <= d.values[i-1] {
			t.Fatalf("dictionary not strictly increasing: %v", d.values)
		}
	}

	original := []float64{8, 0, 3, 3, 5}
	indices, err := d.quantize(original)
	if err != nil {
		t.Fatalf("quantize failed: %v", err)
	}
	back, err := d.gather(indices)
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for i := range original {
		if back[i] != original[i] {
			t.Errorf("row %d: gather(quantize) = %v, want %v", i, back[i], original[i])
		}
	}

	if _, err := d.quantize([]float64{2}); err == nil {
		t.Error("quantize accepted a value absent from the dictionary")
	}
	if _, err := d.gather([]int64{99}); err == nil {
		t.Error("gather accepted an out of range index")
	}
}

func TestCoordinateDictionaryCoversBounds(t *testing.T) {
	ts := fixture()
	d := coordinateDictionary(ts)
	if d.values[0] != 0 || d.values[len(d.values)-1] != ts.SequenceLength {
		t.Errorf("dictionary %v should span [0, %v]", d.values, ts.SequenceLength)
	}
	for _, cols := range [][]float64{ts.Edges.Left, ts.Edges.Right, ts.Sites.Position} {
		if _, err := d.quantize(cols); err != nil {
			t.Errorf("column not covered by dictionary: %v", err)
		}
	}
}

func TestLossyContract(t *testing.T) {
	ts := fixture()
	wantVariants, err := ts.Variants()
	if err != nil {
		t.Fatalf("Variants failed: %v", err)
	}

	path := compressToTemp(t, ts, &Options{VariantsOnly: true})
	got, err := Decompress(path)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	gotVariants, err := got.Variants()
	if err != nil {
		t.Fatalf("Variants on decoded tables failed: %v", err)
	}
	if !trees.VariantsEqual(wantVariants, gotVariants) {
		t.Error("variants changed across lossy round trip")
	}
	if got.Nodes.NumRows() > ts.Nodes.NumRows() {
		t.Error("lossy transform added nodes")
	}
	if got.Provenances.NumRows() != ts.Provenances.NumRows()+1 {
		t.Errorf("got %d provenance rows, want %d", got.Provenances.NumRows(), ts.Provenances.NumRows()+1)
	}
}

func TestCompressBadDestination(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "missing", "out.tsz")
	err := Compress(fixture(), dest, nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("got %v, want fs.ErrNotExist", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tszip-work-") {
			t.Errorf("stray temporary file left behind: %s", e.Name())
		}
	}
}

func TestCompressAtomicOverwrite(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.tsz")
	if err := Compress(trees.New(1), dest, nil); err != nil {
		t.Fatal(err)
	}

	ts := fixture()
	if err := Compress(ts, dest, nil); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err := Decompress(dest)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !ts.Equal(got) {
		t.Error("destination does not hold the new archive")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries after overwrite, want 1", len(entries))
	}
}

func TestLoadSniffsContainer(t *testing.T) {
	dir := t.TempDir()
	ts := fixture()

	native := filepath.Join(dir, "tables.trees")
	if err := ts.DumpFile(native); err != nil {
		t.Fatal(err)
	}
	got, err := Load(native)
	if err != nil {
		t.Fatalf("Load of native file failed: %v", err)
	}
	if !ts.Equal(got) {
		t.Error("native load differs")
	}

	archive := filepath.Join(dir, "tables.tsz")
	if err := Compress(ts, archive, nil); err != nil {
		t.Fatal(err)
	}
	got, err = Load(archive)
	if err != nil {
		t.Fatalf("Load of archive failed: %v", err)
	}
	if !ts.Equal(got) {
		t.Error("archive load differs")
	}
}

func TestSummarize(t *testing.T) {
	ts := fixture()
	path := compressToTemp(t, ts, nil)
	s, err := Summarize(path)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(s.Arrays) != len(archiveSchema) {
		t.Errorf("summary lists %d arrays, want %d", len(s.Arrays), len(archiveSchema))
	}
	if len(s.FormatVersion) != 2 || s.FormatVersion[0] != FormatVersionMajor {
		t.Errorf("summary format version %v", s.FormatVersion)
	}
	for _, a := range s.Arrays {
		if a.StoredSize < 0 || a.LogicalSize < 0 {
			t.Errorf("array %s has negative sizes", a.Name)
		}
	}

	var buf bytes.Buffer
	if err := s.Render(&buf, 1); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"coordinates", "nodes/time", "format_version", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered summary missing %q", want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tszip.yaml")
	content := "suffix: .tz\ncompressor: snappy\nlevel: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Suffix != ".tz" || cfg.Compressor != "snappy" || cfg.Level != 3 {
		t.Errorf("unexpected config %+v", cfg)
	}

	opts := cfg.Options(true)
	if !opts.VariantsOnly || opts.Compressor != "snappy" || opts.Level != 3 {
		t.Errorf("unexpected options %+v", opts)
	}
	if err := opts.validate(); err != nil {
		t.Errorf("validate failed: %v", err)
	}
	if err := (&Options{Compressor: "lz999"}).validate(); err == nil {
		t.Error("unknown compressor accepted")
	}
}

func TestOptionsDefaulting(t *testing.T) {
	var o *Options
	if o.compressor() != carray.Zstd {
		t.Error("nil options should select zstd")
	}
	if DefaultOptions().compressor() != carray.Zstd {
		t.Error("default options should select zstd")
	}
}

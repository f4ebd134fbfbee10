package tszip

import (
	"errors"
	"fmt"
	"os"

	"github.com/tszip-db/tszip/internal/carray"
	"github.com/tszip-db/tszip/trees"
)

// Decompress reads the archive at path and reconstructs its table set.
func Decompress(path string) (*trees.TableSet, error) {
	r, attrs, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return decodeTables(r, attrs, path)
}

// Load opens either a tszip archive or a native table-set file, sniffing
// the container signature rather than trusting the file name.
func Load(path string) (*trees.TableSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var magic [4]byte
	n, _ := f.Read(magic[:])
	f.Close()
	if n == 4 && magic[0] == 'P' && magic[1] == 'K' {
		return Decompress(path)
	}
	return trees.LoadFile(path)
}

// openArchive opens the container and validates the framing attributes
// before any column can be read. Filesystem errors propagate unchanged;
// malformed containers become FormatErrors.
func openArchive(path string) (*carray.Reader, *rootAttrs, error) {
	r, err := carray.OpenReader(path)
	if err != nil {
		if errors.Is(err, carray.ErrNotContainer) {
			return nil, nil, newFormatError(FormatErrorContainer, "file is not in tszip format", path, err)
		}
		return nil, nil, err
	}
	attrs := &rootAttrs{}
	if err := r.Attrs(attrs); err != nil {
		r.Close()
		if errors.Is(err, carray.ErrNoAttrs) || errors.Is(err, carray.ErrNotContainer) {
			return nil, nil, newFormatError(FormatErrorAttrs, "incorrect file format", path, err)
		}
		return nil, nil, err
	}
	if err := checkFormat(attrs, path); err != nil {
		r.Close()
		return nil, nil, err
	}
	return r, attrs, nil
}

// archiveDecoder reads typed columns, accumulating the first failure so
// the table wiring below stays linear.
type archiveDecoder struct {
	r      *carray.Reader
	coords *dictionary
	path   string
	err    error
}

func (d *archiveDecoder) fail(name string, err error) {
	if d.err == nil {
		d.err = newFormatError(FormatErrorColumn, fmt.Sprintf("reading column %q", name), d.path, err)
	}
}

func (d *archiveDecoder) i32s(name string) []int32 {
	if d.err != nil {
		return nil
	}
	values, err := d.r.Ints(name)
	if err != nil {
		d.fail(name, err)
		return nil
	}
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v)
	}
	return out
}

func (d *archiveDecoder) u32s(name string) []uint32 {
	if d.err != nil {
		return nil
	}
	values, err := d.r.Ints(name)
	if err != nil {
		d.fail(name, err)
		return nil
	}
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(v)
	}
	return out
}

func (d *archiveDecoder) offsets(name string) []uint64 {
	if d.err != nil {
		return nil
	}
	values, err := d.r.Ints(name)
	if err != nil {
		d.fail(name, err)
		return nil
	}
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = uint64(v)
	}
	return out
}

func (d *archiveDecoder) floats(name string) []float64 {
	if d.err != nil {
		return nil
	}
	values, err := d.r.Floats(name)
	if err != nil {
		d.fail(name, err)
	}
	return values
}

func (d *archiveDecoder) buffer(name string) []byte {
	if d.err != nil {
		return nil
	}
	data, err := d.r.Bytes(name)
	if err != nil {
		d.fail(name, err)
	}
	return data
}

func (d *archiveDecoder) text(name string) string {
	return string(d.buffer(name))
}

// quantized reads a coordinate column: dictionary indices gathered back to
// positions. Archives written before quantization hold raw floats, which
// are returned as is.
func (d *archiveDecoder) quantized(name string) []float64 {
	if d.err != nil {
		return nil
	}
	info, err := d.r.Info(name)
	if err != nil {
		d.fail(name, err)
		return nil
	}
	if info.Dtype == carray.Float64 {
		return d.floats(name)
	}
	indices, err := d.r.Ints(name)
	if err != nil {
		d.fail(name, err)
		return nil
	}
	values, err := d.coords.gather(indices)
	if err != nil {
		d.fail(name, err)
		return nil
	}
	return values
}

// times reads the node time column, which holds floats in lossless
// archives and integer ranks in variants-only archives.
func (d *archiveDecoder) times(name string) []float64 {
	if d.err != nil {
		return nil
	}
	info, err := d.r.Info(name)
	if err != nil {
		d.fail(name, err)
		return nil
	}
	if info.Dtype == carray.Float64 {
		return d.floats(name)
	}
	ranks, err := d.r.Ints(name)
	if err != nil {
		d.fail(name, err)
		return nil
	}
	out := make([]float64, len(ranks))
	for i, v := range ranks {
		out[i] = float64(v)
	}
	return out
}

func decodeTables(r *carray.Reader, attrs *rootAttrs, path string) (*trees.TableSet, error) {
	coordValues, err := r.Floats("coordinates")
	if err != nil {
		return nil, newFormatError(FormatErrorColumn, `reading column "coordinates"`, path, err)
	}
	d := &archiveDecoder{r: r, coords: &dictionary{values: coordValues}, path: path}

	ts := trees.New(attrs.SequenceLength)
	ts.TimeUnits = attrs.TimeUnits
	ts.Metadata = attrs.Metadata
	ts.MetadataSchema = attrs.MetadataSchema

	ts.Individuals.Flags = d.u32s("individuals/flags")
	ts.Individuals.Location = d.floats("individuals/location")
	ts.Individuals.LocationOffsets = d.offsets("individuals/location_offset")
	ts.Individuals.Parents = d.i32s("individuals/parents")
	ts.Individuals.ParentsOffsets = d.offsets("individuals/parents_offset")
	ts.Individuals.Metadata = d.buffer("individuals/metadata")
	ts.Individuals.MetadataOffsets = d.offsets("individuals/metadata_offset")
	ts.Individuals.MetadataSchema = d.text("individuals/metadata_schema")

	ts.Nodes.Flags = d.u32s("nodes/flags")
	ts.Nodes.Time = d.times("nodes/time")
	ts.Nodes.Population = d.i32s("nodes/population")
	ts.Nodes.Individual = d.i32s("nodes/individual")
	ts.Nodes.Metadata = d.buffer("nodes/metadata")
	ts.Nodes.MetadataOffsets = d.offsets("nodes/metadata_offset")
	ts.Nodes.MetadataSchema = d.text("nodes/metadata_schema")

	ts.Edges.Left = d.quantized("edges/left")
	ts.Edges.Right = d.quantized("edges/right")
	ts.Edges.Parent = d.i32s("edges/parent")
	ts.Edges.Child = d.i32s("edges/child")
	ts.Edges.Metadata = d.buffer("edges/metadata")
	ts.Edges.MetadataOffsets = d.offsets("edges/metadata_offset")
	ts.Edges.MetadataSchema = d.text("edges/metadata_schema")

	ts.Migrations.Left = d.quantized("migrations/left")
	ts.Migrations.Right = d.quantized("migrations/right")
	ts.Migrations.Node = d.i32s("migrations/node")
	ts.Migrations.Source = d.i32s("migrations/source")
	ts.Migrations.Dest = d.i32s("migrations/dest")
	ts.Migrations.Time = d.floats("migrations/time")
	ts.Migrations.Metadata = d.buffer("migrations/metadata")
	ts.Migrations.MetadataOffsets = d.offsets("migrations/metadata_offset")
	ts.Migrations.MetadataSchema = d.text("migrations/metadata_schema")

	ts.Sites.Position = d.quantized("sites/position")
	ts.Sites.AncestralState = d.buffer("sites/ancestral_state")
	ts.Sites.AncestralStateOffsets = d.offsets("sites/ancestral_state_offset")
	ts.Sites.Metadata = d.buffer("sites/metadata")
	ts.Sites.MetadataOffsets = d.offsets("sites/metadata_offset")
	ts.Sites.MetadataSchema = d.text("sites/metadata_schema")

	ts.Mutations.Site = d.i32s("mutations/site")
	ts.Mutations.Node = d.i32s("mutations/node")
	ts.Mutations.Parent = d.i32s("mutations/parent")
	ts.Mutations.Time = d.floats("mutations/time")
	ts.Mutations.DerivedState = d.buffer("mutations/derived_state")
	ts.Mutations.DerivedStateOffsets = d.offsets("mutations/derived_state_offset")
	ts.Mutations.Metadata = d.buffer("mutations/metadata")
	ts.Mutations.MetadataOffsets = d.offsets("mutations/metadata_offset")
	ts.Mutations.MetadataSchema = d.text("mutations/metadata_schema")

	ts.Populations.Metadata = d.buffer("populations/metadata")
	ts.Populations.MetadataOffsets = d.offsets("populations/metadata_offset")
	ts.Populations.MetadataSchema = d.text("populations/metadata_schema")

	ts.Provenances.Timestamp = d.buffer("provenances/timestamp")
	ts.Provenances.TimestampOffsets = d.offsets("provenances/timestamp_offset")
	ts.Provenances.Record = d.buffer("provenances/record")
	ts.Provenances.RecordOffsets = d.offsets("provenances/record_offset")

	if d.err != nil {
		return nil, d.err
	}
	if err := ts.Validate(); err != nil {
		return nil, newFormatError(FormatErrorColumn, "inconsistent ragged columns", path, err)
	}
	return ts, nil
}

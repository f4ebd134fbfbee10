package trees

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Native binary serialization of a table set. Columns are written in a
// fixed order, each as a little-endian length-prefixed slice.

var fileMagic = [8]byte{'T', 'S', 'T', 'A', 'B', 'L', 'E', 'S'}

const fileVersion uint32 = 1

// Dump writes the table set to w in the native binary format.
func (ts *TableSet) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(fileMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, fileVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, ts.SequenceLength); err != nil {
		return err
	}
	enc := &columnWriter{w: bw}
	enc.str(ts.TimeUnits)
	enc.bytes(ts.Metadata)
	enc.str(ts.MetadataSchema)

	enc.u32s(ts.Individuals.Flags)
	enc.f64s(ts.Individuals.Location)
	enc.u64s(ts.Individuals.LocationOffsets)
	enc.i32s(ts.Individuals.Parents)
	enc.u64s(ts.Individuals.ParentsOffsets)
	enc.bytes(ts.Individuals.Metadata)
	enc.u64s(ts.Individuals.MetadataOffsets)
	enc.str(ts.Individuals.MetadataSchema)

	enc.u32s(ts.Nodes.Flags)
	enc.f64s(ts.Nodes.Time)
	enc.i32s(ts.Nodes.Population)
	enc.i32s(ts.Nodes.Individual)
	enc.bytes(ts.Nodes.Metadata)
	enc.u64s(ts.Nodes.MetadataOffsets)
	enc.str(ts.Nodes.MetadataSchema)

	enc.f64s(ts.Edges.Left)
	enc.f64s(ts.Edges.Right)
	enc.i32s(ts.Edges.Parent)
	enc.i32s(ts.Edges.Child)
	enc.bytes(ts.Edges.Metadata)
	enc.u64s(ts.Edges.MetadataOffsets)
	enc.str(ts.Edges.MetadataSchema)

	enc.f64s(ts.Migrations.Left)
	enc.f64s(ts.Migrations.Right)
	enc.i32s(ts.Migrations.Node)
	enc.i32s(ts.Migrations.Source)
	enc.i32s(ts.Migrations.Dest)
	enc.f64s(ts.Migrations.Time)
	enc.bytes(ts.Migrations.Metadata)
	enc.u64s(ts.Migrations.MetadataOffsets)
	enc.str(ts.Migrations.MetadataSchema)

	enc.f64s(ts.Sites.Position)
	enc.bytes(ts.Sites.AncestralState)
	enc.u64s(ts.Sites.AncestralStateOffsets)
	enc.bytes(ts.Sites.Metadata)
	enc.u64s(ts.Sites.MetadataOffsets)
	enc.str(ts.Sites.MetadataSchema)

	enc.i32s(ts.Mutations.Site)
	enc.i32s(ts.Mutations.Node)
	enc.i32s(ts.Mutations.Parent)
	enc.f64s(ts.Mutations.Time)
	enc.bytes(ts.Mutations.DerivedState)
	enc.u64s(ts.Mutations.DerivedStateOffsets)
	enc.bytes(ts.Mutations.Metadata)
	enc.u64s(ts.Mutations.MetadataOffsets)
	enc.str(ts.Mutations.MetadataSchema)

	enc.bytes(ts.Populations.Metadata)
	enc.u64s(ts.Populations.MetadataOffsets)
	enc.str(ts.Populations.MetadataSchema)

	enc.bytes(ts.Provenances.Timestamp)
	enc.u64s(ts.Provenances.TimestampOffsets)
	enc.bytes(ts.Provenances.Record)
	enc.u64s(ts.Provenances.RecordOffsets)

	if enc.err != nil {
		return enc.err
	}
	return bw.Flush()
}

// DumpFile writes the table set to path.
func (ts *TableSet) DumpFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ts.Dump(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a table set in the native binary format.
func Load(r io.Reader) (*TableSet, error) {
	br := bufio.NewReader(r)
	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("trees: reading header: %w", err)
	}
	if !bytes.Equal(magic[:], fileMagic[:]) {
		return nil, fmt.Errorf("trees: not a table-set file")
	}
	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != fileVersion {
		return nil, fmt.Errorf("trees: unsupported file version %d", version)
	}
	ts := &TableSet{}
	if err := binary.Read(br, binary.LittleEndian, &ts.SequenceLength); err != nil {
		return nil, err
	}
	dec := &columnReader{r: br}
	ts.TimeUnits = dec.str()
	ts.Metadata = dec.bytes()
	ts.MetadataSchema = dec.str()

	ts.Individuals.Flags = dec.u32s()
	ts.Individuals.Location = dec.f64s()
	ts.Individuals.LocationOffsets = dec.u64s()
	ts.Individuals.Parents = dec.i32s()
	ts.Individuals.ParentsOffsets = dec.u64s()
	ts.Individuals.Metadata = dec.bytes()
	ts.Individuals.MetadataOffsets = dec.u64s()
	ts.Individuals.MetadataSchema = dec.str()

	ts.Nodes.Flags = dec.u32s()
	ts.Nodes.Time = dec.f64s()
	ts.Nodes.Population = dec.i32s()
	ts.Nodes.Individual = dec.i32s()
	ts.Nodes.Metadata = dec.bytes()
	ts.Nodes.MetadataOffsets = dec.u64s()
	ts.Nodes.MetadataSchema = dec.str()

	ts.Edges.Left = dec.f64s()
	ts.Edges.Right = dec.f64s()
	ts.Edges.Parent = dec.i32s()
	ts.Edges.Child = dec.i32s()
	ts.Edges.Metadata = dec.bytes()
	ts.Edges.MetadataOffsets = dec.u64s()
	ts.Edges.MetadataSchema = dec.str()

	ts.Migrations.Left = dec.f64s()
	ts.Migrations.Right = dec.f64s()
	ts.Migrations.Node = dec.i32s()
	ts.Migrations.Source = dec.i32s()
	ts.Migrations.Dest = dec.i32s()
	ts.Migrations.Time = dec.f64s()
	ts.Migrations.Metadata = dec.bytes()
	ts.Migrations.MetadataOffsets = dec.u64s()
	ts.Migrations.MetadataSchema = dec.str()

	ts.Sites.Position = dec.f64s()
	ts.Sites.AncestralState = dec.bytes()
	ts.Sites.AncestralStateOffsets = dec.u64s()
	ts.Sites.Metadata = dec.bytes()
	ts.Sites.MetadataOffsets = dec.u64s()
	ts.Sites.MetadataSchema = dec.str()

	ts.Mutations.Site = dec.i32s()
	ts.Mutations.Node = dec.i32s()
	ts.Mutations.Parent = dec.i32s()
	ts.Mutations.Time = dec.f64s()
	ts.Mutations.DerivedState = dec.bytes()
	ts.Mutations.DerivedStateOffsets = dec.u64s()
	ts.Mutations.Metadata = dec.bytes()
	ts.Mutations.MetadataOffsets = dec.u64s()
	ts.Mutations.MetadataSchema = dec.str()

	ts.Populations.Metadata = dec.bytes()
	ts.Populations.MetadataOffsets = dec.u64s()
	ts.Populations.MetadataSchema = dec.str()

	ts.Provenances.Timestamp = dec.bytes()
	ts.Provenances.TimestampOffsets = dec.u64s()
	ts.Provenances.Record = dec.bytes()
	ts.Provenances.RecordOffsets = dec.u64s()

	if dec.err != nil {
		return nil, dec.err
	}
	return ts, ts.Validate()
}

// LoadFile reads a table set from path.
func LoadFile(path string) (*TableSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

type columnWriter struct {
	w   io.Writer
	err error
}

func (e *columnWriter) length(n int) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, uint64(n))
	}
}

func (e *columnWriter) write(v any) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

func (e *columnWriter) bytes(v []byte) { e.length(len(v)); e.write(v) }
func (e *columnWriter) str(v string)   { e.bytes([]byte(v)) }
func (e *columnWriter) u32s(v []uint32) {
	e.length(len(v))
	e.write(v)
}
func (e *columnWriter) i32s(v []int32) {
	e.length(len(v))
	e.write(v)
}
func (e *columnWriter) u64s(v []uint64) {
	e.length(len(v))
	e.write(v)
}
func (e *columnWriter) f64s(v []float64) {
	e.length(len(v))
	e.write(v)
}

type columnReader struct {
	r   io.Reader
	err error
}

func (d *columnReader) length() int {
	if d.err != nil {
		return 0
	}
	var n uint64
	d.err = binary.Read(d.r, binary.LittleEndian, &n)
	if d.err != nil {
		return 0
	}
	const maxColumn = 1 << 40
	if n > maxColumn {
		d.err = fmt.Errorf("trees: column length %d too large", n)
		return 0
	}
	return int(n)
}

func (d *columnReader) read(v any) {
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, v)
	}
}

func (d *columnReader) bytes() []byte {
	n := d.length()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]byte, n)
	d.read(out)
	return out
}

func (d *columnReader) str() string { return string(d.bytes()) }

func (d *columnReader) u32s() []uint32 {
	n := d.length()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]uint32, n)
	d.read(out)
	return out
}

func (d *columnReader) i32s() []int32 {
	n := d.length()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]int32, n)
	d.read(out)
	return out
}

func (d *columnReader) u64s() []uint64 {
	n := d.length()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]uint64, n)
	d.read(out)
	return out
}

func (d *columnReader) f64s() []float64 {
	n := d.length()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]float64, n)
	d.read(out)
	return out
}

package tszip

import (
	"fmt"
	"log/slog"

	"github.com/tszip-db/tszip/internal/carray"
	"github.com/tszip-db/tszip/trees"
)

// column is one named array awaiting encoding, carrying its values in the
// widest in-memory form plus the natural width they came from.
type column struct {
	name    string
	kind    columnKind
	delta   bool
	natural carray.Dtype
	ints    []int64
	uints   []uint64
	floats  []float64
	buf     []byte
}

func intColumn(name string, values []int64, natural carray.Dtype) column {
	c := column{name: name, kind: kindInt, natural: natural, ints: values}
	if s, ok := specFor(name); ok {
		c.delta = s.delta
	}
	return c
}

func uintColumn(name string, values []uint64, natural carray.Dtype) column {
	return column{name: name, kind: kindUint, natural: natural, uints: values}
}

func floatColumn(name string, values []float64) column {
	return column{name: name, kind: kindFloat, floats: values}
}

func bufferColumn(name string, payload []byte) column {
	return column{name: name, kind: kindBuffer, buf: payload}
}

func offsetsColumn(name string, offsets []uint64) column {
	return column{name: name, kind: kindOffsets, natural: carray.Uint64, uints: offsets, delta: true}
}

func textColumn(name string, value string) column {
	return column{name: name, kind: kindText, buf: []byte(value)}
}

func quantizedColumn(name string, indices []int64) column {
	c := column{name: name, kind: kindQuantized, natural: carray.Int64, ints: indices}
	if s, ok := specFor(name); ok {
		c.delta = s.delta
	}
	return c
}

// encode writes the column through width inference and the configured
// filter and compressor.
func (c *column) encode(w *carray.Writer, opts *Options) error {
	put := carray.PutOptions{
		Delta:      c.delta,
		Compressor: opts.compressor(),
		Level:      opts.Level,
		Kind:       c.kind.String(),
	}
	var err error
	switch c.kind {
	case kindInt, kindQuantized:
		err = w.PutInts(c.name, c.ints, minimalSigned(c.ints, c.natural), put)
	case kindUint, kindOffsets:
		err = w.PutUints(c.name, c.uints, minimalUnsigned(c.uints, c.natural), put)
	case kindFloat:
		err = w.PutFloats(c.name, c.floats, put)
	case kindBuffer, kindText:
		err = w.PutBytes(c.name, c.buf, put)
	default:
		err = fmt.Errorf("tszip: unknown column kind %d", c.kind)
	}
	if err != nil {
		return err
	}
	slog.Debug("encoded column", "name", c.name, "kind", c.kind.String(), "rows", c.len())
	return nil
}

func (c *column) len() int {
	switch c.kind {
	case kindInt, kindQuantized:
		return len(c.ints)
	case kindUint, kindOffsets:
		return len(c.uints)
	case kindFloat:
		return len(c.floats)
	}
	return len(c.buf)
}

// assembleColumns flattens the table set into the archive's named arrays,
// applying coordinate quantization to interval-bound columns and, in
// variants-only mode, rank quantization to node times.
func assembleColumns(ts *trees.TableSet, coords *dictionary, variantsOnly bool) ([]column, error) {
	q := func(name string, values []float64) (column, error) {
		indices, err := coords.quantize(values)
		if err != nil {
			return column{}, fmt.Errorf("%s: %w", name, err)
		}
		return quantizedColumn(name, indices), nil
	}

	edgesLeft, err := q("edges/left", ts.Edges.Left)
	if err != nil {
		return nil, err
	}
	edgesRight, err := q("edges/right", ts.Edges.Right)
	if err != nil {
		return nil, err
	}
	migLeft, err := q("migrations/left", ts.Migrations.Left)
	if err != nil {
		return nil, err
	}
	migRight, err := q("migrations/right", ts.Migrations.Right)
	if err != nil {
		return nil, err
	}
	sitePos, err := q("sites/position", ts.Sites.Position)
	if err != nil {
		return nil, err
	}

	nodeTime := floatColumn("nodes/time", ts.Nodes.Time)
	if variantsOnly {
		ranks, err := timeDictionary(ts).quantize(ts.Nodes.Time)
		if err != nil {
			return nil, fmt.Errorf("nodes/time: %w", err)
		}
		nodeTime = intColumn("nodes/time", ranks, carray.Int64)
	}

	columns := []column{
		uintColumn("individuals/flags", widenU32(ts.Individuals.Flags), carray.Uint32),
		floatColumn("individuals/location", ts.Individuals.Location),
		offsetsColumn("individuals/location_offset", ts.Individuals.LocationOffsets),
		intColumn("individuals/parents", widenI32(ts.Individuals.Parents), carray.Int32),
		offsetsColumn("individuals/parents_offset", ts.Individuals.ParentsOffsets),
		bufferColumn("individuals/metadata", ts.Individuals.Metadata),
		offsetsColumn("individuals/metadata_offset", ts.Individuals.MetadataOffsets),
		textColumn("individuals/metadata_schema", ts.Individuals.MetadataSchema),

		uintColumn("nodes/flags", widenU32(ts.Nodes.Flags), carray.Uint32),
		nodeTime,
		intColumn("nodes/population", widenI32(ts.Nodes.Population), carray.Int32),
		intColumn("nodes/individual", widenI32(ts.Nodes.Individual), carray.Int32),
		bufferColumn("nodes/metadata", ts.Nodes.Metadata),
		offsetsColumn("nodes/metadata_offset", ts.Nodes.MetadataOffsets),
		textColumn("nodes/metadata_schema", ts.Nodes.MetadataSchema),

		edgesLeft,
		edgesRight,
		intColumn("edges/parent", widenI32(ts.Edges.Parent), carray.Int32),
		intColumn("edges/child", widenI32(ts.Edges.Child), carray.Int32),
		bufferColumn("edges/metadata", ts.Edges.Metadata),
		offsetsColumn("edges/metadata_offset", ts.Edges.MetadataOffsets),
		textColumn("edges/metadata_schema", ts.Edges.MetadataSchema),

		migLeft,
		migRight,
		intColumn("migrations/node", widenI32(ts.Migrations.Node), carray.Int32),
		intColumn("migrations/source", widenI32(ts.Migrations.Source), carray.Int32),
		intColumn("migrations/dest", widenI32(ts.Migrations.Dest), carray.Int32),
		floatColumn("migrations/time", ts.Migrations.Time),
		bufferColumn("migrations/metadata", ts.Migrations.Metadata),
		offsetsColumn("migrations/metadata_offset", ts.Migrations.MetadataOffsets),
		textColumn("migrations/metadata_schema", ts.Migrations.MetadataSchema),

		sitePos,
		bufferColumn("sites/ancestral_state", ts.Sites.AncestralState),
		offsetsColumn("sites/ancestral_state_offset", ts.Sites.AncestralStateOffsets),
		bufferColumn("sites/metadata", ts.Sites.Metadata),
		offsetsColumn("sites/metadata_offset", ts.Sites.MetadataOffsets),
		textColumn("sites/metadata_schema", ts.Sites.MetadataSchema),

		intColumn("mutations/site", widenI32(ts.Mutations.Site), carray.Int32),
		intColumn("mutations/node", widenI32(ts.Mutations.Node), carray.Int32),
		intColumn("mutations/parent", widenI32(ts.Mutations.Parent), carray.Int32),
		floatColumn("mutations/time", ts.Mutations.Time),
		bufferColumn("mutations/derived_state", ts.Mutations.DerivedState),
		offsetsColumn("mutations/derived_state_offset", ts.Mutations.DerivedStateOffsets),
		bufferColumn("mutations/metadata", ts.Mutations.Metadata),
		offsetsColumn("mutations/metadata_offset", ts.Mutations.MetadataOffsets),
		textColumn("mutations/metadata_schema", ts.Mutations.MetadataSchema),

		bufferColumn("populations/metadata", ts.Populations.Metadata),
		offsetsColumn("populations/metadata_offset", ts.Populations.MetadataOffsets),
		textColumn("populations/metadata_schema", ts.Populations.MetadataSchema),

		bufferColumn("provenances/timestamp", ts.Provenances.Timestamp),
		offsetsColumn("provenances/timestamp_offset", ts.Provenances.TimestampOffsets),
		bufferColumn("provenances/record", ts.Provenances.Record),
		offsetsColumn("provenances/record_offset", ts.Provenances.RecordOffsets),

		floatColumn("coordinates", coords.values),
	}
	return columns, nil
}

func widenI32(values []int32) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}

func widenU32(values []uint32) []uint64 {
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = uint64(v)
	}
	return out
}

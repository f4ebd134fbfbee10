package tszip

import "strings"

// columnKind is the closed set of per-column encoding strategies.
type columnKind int

const (
	// kindInt is a signed integer column stored at its minimal width.
	kindInt columnKind = iota
	// kindUint is an unsigned integer column stored at its minimal width.
	kindUint
	// kindFloat is a float64 column stored unchanged.
	kindFloat
	// kindBuffer is the flat byte payload of a ragged column, stored as an
	// opaque byte array with no narrowing or re-encoding.
	kindBuffer
	// kindOffsets is a ragged column's offset array: unsigned, minimal
	// width, delta pre-filtered since offsets are monotonic.
	kindOffsets
	// kindQuantized is an interval-bound column replaced by indices into
	// the coordinate dictionary.
	kindQuantized
	// kindText is a string stored as its raw byte representation. Character
	// decoding happens at the model boundary, never inside the codec.
	kindText
)

func (k columnKind) String() string {
	switch k {
	case kindInt:
		return "int"
	case kindUint:
		return "uint"
	case kindFloat:
		return "float"
	case kindBuffer:
		return "buffer"
	case kindOffsets:
		return "offsets"
	case kindQuantized:
		return "quantized"
	case kindText:
		return "text"
	}
	return "unknown"
}

// columnSpec fixes the logical kind and filter choice of one archive
// column.
type columnSpec struct {
	name  string
	kind  columnKind
	delta bool
}

// archiveSchema enumerates every (table, column) array an archive holds,
// as a closed static table rather than anything derived by reflection.
// Offset arrays always take the delta filter; edges/parent and the
// quantized sites/position additionally benefit from it.
var archiveSchema = []columnSpec{
	{name: "individuals/flags", kind: kindUint},
	{name: "individuals/location", kind: kindFloat},
	{name: "individuals/location_offset", kind: kindOffsets, delta: true},
	{name: "individuals/parents", kind: kindInt},
	{name: "individuals/parents_offset", kind: kindOffsets, delta: true},
	{name: "individuals/metadata", kind: kindBuffer},
	{name: "individuals/metadata_offset", kind: kindOffsets, delta: true},
	{name: "individuals/metadata_schema", kind: kindText},

	{name: "nodes/flags", kind: kindUint},
	{name: "nodes/time", kind: kindFloat},
	{name: "nodes/population", kind: kindInt},
	{name: "nodes/individual", kind: kindInt},
	{name: "nodes/metadata", kind: kindBuffer},
	{name: "nodes/metadata_offset", kind: kindOffsets, delta: true},
	{name: "nodes/metadata_schema", kind: kindText},

	{name: "edges/left", kind: kindQuantized},
	{name: "edges/right", kind: kindQuantized},
	{name: "edges/parent", kind: kindInt, delta: true},
	{name: "edges/child", kind: kindInt},
	{name: "edges/metadata", kind: kindBuffer},
	{name: "edges/metadata_offset", kind: kindOffsets, delta: true},
	{name: "edges/metadata_schema", kind: kindText},

	{name: "migrations/left", kind: kindQuantized},
	{name: "migrations/right", kind: kindQuantized},
	{name: "migrations/node", kind: kindInt},
	{name: "migrations/source", kind: kindInt},
	{name: "migrations/dest", kind: kindInt},
	{name: "migrations/time", kind: kindFloat},
	{name: "migrations/metadata", kind: kindBuffer},
	{name: "migrations/metadata_offset", kind: kindOffsets, delta: true},
	{name: "migrations/metadata_schema", kind: kindText},

	{name: "sites/position", kind: kindQuantized, delta: true},
	{name: "sites/ancestral_state", kind: kindBuffer},
	{name: "sites/ancestral_state_offset", kind: kindOffsets, delta: true},
	{name: "sites/metadata", kind: kindBuffer},
	{name: "sites/metadata_offset", kind: kindOffsets, delta: true},
	{name: "sites/metadata_schema", kind: kindText},

	{name: "mutations/site", kind: kindInt},
	{name: "mutations/node", kind: kindInt},
	{name: "mutations/parent", kind: kindInt},
	{name: "mutations/time", kind: kindFloat},
	{name: "mutations/derived_state", kind: kindBuffer},
	{name: "mutations/derived_state_offset", kind: kindOffsets, delta: true},
	{name: "mutations/metadata", kind: kindBuffer},
	{name: "mutations/metadata_offset", kind: kindOffsets, delta: true},
	{name: "mutations/metadata_schema", kind: kindText},

	{name: "populations/metadata", kind: kindBuffer},
	{name: "populations/metadata_offset", kind: kindOffsets, delta: true},
	{name: "populations/metadata_schema", kind: kindText},

	{name: "provenances/timestamp", kind: kindBuffer},
	{name: "provenances/timestamp_offset", kind: kindOffsets, delta: true},
	{name: "provenances/record", kind: kindBuffer},
	{name: "provenances/record_offset", kind: kindOffsets, delta: true},

	{name: "coordinates", kind: kindFloat},
}

var schemaByName = func() map[string]columnSpec {
	m := make(map[string]columnSpec, len(archiveSchema))
	for _, s := range archiveSchema {
		m[s.name] = s
	}
	return m
}()

func specFor(name string) (columnSpec, bool) {
	s, ok := schemaByName[name]
	return s, ok
}

// legacyColumnKind infers a column's logical kind from its name for
// archives written without explicit per-column kind tags. This name-suffix
// convention exists only for reading pre-existing archives; new writes
// always record the kind.
func legacyColumnKind(name string) columnKind {
	switch {
	case strings.HasSuffix(name, "metadata_schema"):
		return kindText
	case strings.HasSuffix(name, "metadata"):
		return kindBuffer
	case strings.HasSuffix(name, "_offset"):
		return kindOffsets
	}
	if s, ok := specFor(name); ok {
		return s.kind
	}
	return kindFloat
}

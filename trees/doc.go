// Package trees implements the tabular tree-sequence data model: eight
// relational tables describing genealogical ancestry (individuals, nodes,
// edges, migrations, sites, mutations, populations, provenances), a native
// binary serialization for table sets, topology simplification reduced to
// site topology, and per-site variant extraction.
//
// Fixed-width columns are plain slices. Ragged columns are a flat payload
// slice plus an offset slice of length rows+1; row i of a ragged column is
// payload[offsets[i]:offsets[i+1]].
package trees

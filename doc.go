// Package tszip is a columnar archive codec for tree-sequence tables.
//
// It serializes the eight-table tree-sequence data model (see the trees
// package) into a compact, versioned, self-describing container and
// reconstructs an equivalent table set from it. Compression is lossless by
// default; the variants-only mode trades topology detail for size while
// preserving every site's position, alleles and per-sample genotypes
// exactly.
//
// Compress a table set to a file:
//
//	err := tszip.Compress(ts, "data.trees.tsz", nil)
//
// Decompress it again:
//
//	ts, err := tszip.Decompress("data.trees.tsz")
//
// The per-column encoding policy picks the narrowest integer width that
// represents a column exactly, stores ragged columns as a byte buffer plus
// a delta-filtered offset array, and replaces genomic interval bounds with
// indices into a shared coordinate dictionary.
package tszip

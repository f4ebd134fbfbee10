// Package carray implements a chunked, compressed array store inside a
// zip container.
//
// Each array is stored as a JSON metadata entry plus a single compressed
// chunk. The container root carries a JSON attribute map. The package
// provides:
//   - Writer: creates arrays and root attributes in a new container
//   - Reader: opens a container read-only and reads arrays on demand
//   - Delta: byte-exact successive-difference pre-filter for integers
//   - Zstd and Snappy chunk compressors
package carray

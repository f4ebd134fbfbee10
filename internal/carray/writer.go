package carray

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

const (
	attrsEntry = ".attrs"
	metaEntry  = ".meta"
	chunkEntry = "0"
)

// arrayMeta is the JSON metadata entry stored alongside each chunk.
type arrayMeta struct {
	Shape      []int    `json:"shape"`
	Chunks     []int    `json:"chunks"`
	Dtype      string   `json:"dtype"`
	Filters    []string `json:"filters,omitempty"`
	Compressor string   `json:"compressor"`
	Kind       string   `json:"kind,omitempty"`
}

func (m *arrayMeta) hasDelta() bool {
	for _, f := range m.Filters {
		if f == FilterDelta {
			return true
		}
	}
	return false
}

// PutOptions control how a single array is encoded.
type PutOptions struct {
	// Delta enables the successive-difference pre-filter.
	Delta bool
	// Compressor selects the chunk codec. Empty means Zstd.
	Compressor Compressor
	// Level is the compression level for codecs that support one.
	// Zero means DefaultLevel.
	Level int
	// Kind is an optional logical-kind tag recorded in the array metadata.
	Kind string
}

// Writer creates arrays and root attributes in a new container. All writes
// go to the underlying io.Writer; Close must be called to finalize the
// container directory.
type Writer struct {
	zw    *zip.Writer
	names map[string]struct{}
	err   error
}

// NewWriter returns a Writer emitting a container to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		zw:    zip.NewWriter(w),
		names: make(map[string]struct{}),
	}
}

// SetAttrs stores v, marshaled as JSON, as the container's root attributes.
func (w *Writer) SetAttrs(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("carray: marshal attrs: %w", err)
	}
	return w.writeEntry(attrsEntry, data)
}

// PutInts stores values as a signed integer array of the given dtype.
// Every value must be representable at that width.
func (w *Writer) PutInts(name string, values []int64, dtype Dtype, opts PutOptions) error {
	if !dtype.IsSigned() {
		return fmt.Errorf("carray: %s: dtype %q is not signed", name, dtype)
	}
	lo, hi := dtype.Range()
	words := make([]uint64, len(values))
	for i, v := range values {
		if v < lo || v > hi {
			return fmt.Errorf("carray: %s: value %d out of range for %q", name, v, dtype)
		}
		words[i] = uint64(v)
	}
	return w.putArray(name, words, len(values), dtype, opts)
}

// PutUints stores values as an unsigned integer array of the given dtype.
func (w *Writer) PutUints(name string, values []uint64, dtype Dtype, opts PutOptions) error {
	if !dtype.IsUnsigned() {
		return fmt.Errorf("carray: %s: dtype %q is not unsigned", name, dtype)
	}
	hi := dtype.MaxUint()
	for _, v := range values {
		if v > hi {
			return fmt.Errorf("carray: %s: value %d out of range for %q", name, v, dtype)
		}
	}
	return w.putArray(name, values, len(values), dtype, opts)
}

// PutFloats stores values as a float64 array.
func (w *Writer) PutFloats(name string, values []float64, opts PutOptions) error {
	words := make([]uint64, len(values))
	for i, v := range values {
		words[i] = math.Float64bits(v)
	}
	opts.Delta = false
	return w.putArray(name, words, len(values), Float64, opts)
}

// PutBytes stores data as an opaque byte array. The payload is never
// filtered or re-typed.
func (w *Writer) PutBytes(name string, data []byte, opts PutOptions) error {
	meta := w.newMeta(len(data), Byte, false, opts)
	return w.writeArray(name, meta, data, opts)
}

func (w *Writer) putArray(name string, words []uint64, n int, dtype Dtype, opts PutOptions) error {
	meta := w.newMeta(n, dtype, opts.Delta, opts)
	payload := encodeWords(words, dtype.ItemSize(), opts.Delta)
	return w.writeArray(name, meta, payload, opts)
}

func (w *Writer) newMeta(n int, dtype Dtype, delta bool, opts PutOptions) *arrayMeta {
	comp := opts.Compressor
	if comp == "" {
		comp = Zstd
	}
	// A zero-length array still carries one (empty) chunk.
	chunk := n
	if chunk == 0 {
		chunk = 1
	}
	m := &arrayMeta{
		Shape:      []int{n},
		Chunks:     []int{chunk},
		Dtype:      string(dtype),
		Compressor: string(comp),
		Kind:       opts.Kind,
	}
	if delta {
		m.Filters = []string{FilterDelta}
	}
	return m
}

func (w *Writer) writeArray(name string, meta *arrayMeta, payload []byte, opts PutOptions) error {
	if name == "" {
		return fmt.Errorf("carray: empty array name")
	}
	if _, ok := w.names[name]; ok {
		return fmt.Errorf("carray: array %q already exists", name)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("carray: marshal metadata for %q: %w", name, err)
	}
	chunk, err := compressChunk(Compressor(meta.Compressor), opts.Level, payload)
	if err != nil {
		return fmt.Errorf("carray: compress %q: %w", name, err)
	}
	if err := w.writeEntry(name+"/"+metaEntry, metaJSON); err != nil {
		return err
	}
	if err := w.writeEntry(name+"/"+chunkEntry, chunk); err != nil {
		return err
	}
	w.names[name] = struct{}{}
	return nil
}

// Chunks are compressed by the array codec, so container entries are stored
// without a second compression pass.
func (w *Writer) writeEntry(name string, data []byte) error {
	if w.err != nil {
		return w.err
	}
	f, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		w.err = err
		return err
	}
	if _, err := f.Write(data); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close finalizes the container directory.
func (w *Writer) Close() error {
	if w.err != nil {
		w.zw.Close()
		return w.err
	}
	return w.zw.Close()
}

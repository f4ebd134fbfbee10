package carray

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
)

// Sentinel errors for container-level failures.
var (
	// ErrNotContainer is returned when the input is not a valid container.
	ErrNotContainer = errors.New("carray: not a valid container")

	// ErrNoAttrs is returned when the container has no root attributes.
	ErrNoAttrs = errors.New("carray: container has no root attributes")

	// ErrNoArray is returned when a named array does not exist.
	ErrNoArray = errors.New("carray: no such array")
)

// Info describes a stored array without reading its chunk.
type Info struct {
	Name        string
	Dtype       Dtype
	Len         int
	NBytes      int64 // logical size: length times element size
	StoredBytes int64 // compressed chunk size in the container
	Kind        string
	Delta       bool
	Compressor  Compressor
}

// Reader provides read-only access to a container. Arrays are read on
// demand; only the entry directory and metadata are parsed up front.
type Reader struct {
	metas  map[string]*arrayMeta
	chunks map[string]*zip.File
	attrs  []byte
	closer io.Closer
}

// OpenReader opens the container at path read-only.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r, err := NewReader(f, st.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader opens a container from an in-memory or seekable source.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrNotContainer, err)
		}
		return nil, err
	}
	r := &Reader{
		metas:  make(map[string]*arrayMeta),
		chunks: make(map[string]*zip.File),
	}
	for _, f := range zr.File {
		switch {
		case f.Name == attrsEntry:
			data, err := readAll(f)
			if err != nil {
				return nil, err
			}
			r.attrs = data
		case strings.HasSuffix(f.Name, "/"+metaEntry):
			name := strings.TrimSuffix(f.Name, "/"+metaEntry)
			data, err := readAll(f)
			if err != nil {
				return nil, err
			}
			meta := &arrayMeta{}
			if err := json.Unmarshal(data, meta); err != nil {
				return nil, fmt.Errorf("%w: bad metadata for %q: %v", ErrNotContainer, name, err)
			}
			if _, err := parseDtype(meta.Dtype); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrNotContainer, name, err)
			}
			r.metas[name] = meta
		case strings.HasSuffix(f.Name, "/"+chunkEntry):
			r.chunks[strings.TrimSuffix(f.Name, "/"+chunkEntry)] = f
		}
	}
	return r, nil
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Attrs unmarshals the container's root attributes into v.
func (r *Reader) Attrs(v any) error {
	if r.attrs == nil {
		return ErrNoAttrs
	}
	if err := json.Unmarshal(r.attrs, v); err != nil {
		return fmt.Errorf("%w: bad root attributes: %v", ErrNotContainer, err)
	}
	return nil
}

// Arrays returns the names of all stored arrays in sorted order.
func (r *Reader) Arrays() []string {
	names := make([]string, 0, len(r.metas))
	for name := range r.metas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an array with the given name exists.
func (r *Reader) Has(name string) bool {
	_, ok := r.metas[name]
	return ok
}

// Info returns the metadata of a stored array.
func (r *Reader) Info(name string) (Info, error) {
	meta, ok := r.metas[name]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrNoArray, name)
	}
	chunk, ok := r.chunks[name]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q has no chunk", ErrNotContainer, name)
	}
	dtype := Dtype(meta.Dtype)
	n := meta.Shape[0]
	return Info{
		Name:        name,
		Dtype:       dtype,
		Len:         n,
		NBytes:      int64(n) * int64(dtype.ItemSize()),
		StoredBytes: int64(chunk.UncompressedSize64),
		Kind:        meta.Kind,
		Delta:       meta.hasDelta(),
		Compressor:  Compressor(meta.Compressor),
	}, nil
}

// Ints reads an integer or byte array, widening every element to int64.
// Signed and byte elements are sign-extended, unsigned zero-extended.
func (r *Reader) Ints(name string) ([]int64, error) {
	words, meta, err := r.readWords(name)
	if err != nil {
		return nil, err
	}
	dtype := Dtype(meta.Dtype)
	if dtype == Float64 {
		return nil, fmt.Errorf("carray: %q holds floats, not integers", name)
	}
	out := make([]int64, len(words))
	size := dtype.ItemSize()
	for i, w := range words {
		if dtype.IsUnsigned() {
			out[i] = int64(w)
		} else {
			out[i] = signExtend(w, size)
		}
	}
	return out, nil
}

// Uints reads an unsigned integer array.
func (r *Reader) Uints(name string) ([]uint64, error) {
	words, meta, err := r.readWords(name)
	if err != nil {
		return nil, err
	}
	if !Dtype(meta.Dtype).IsUnsigned() {
		return nil, fmt.Errorf("carray: %q is not unsigned (dtype %q)", name, meta.Dtype)
	}
	return words, nil
}

// Floats reads a float64 array.
func (r *Reader) Floats(name string) ([]float64, error) {
	words, meta, err := r.readWords(name)
	if err != nil {
		return nil, err
	}
	if Dtype(meta.Dtype) != Float64 {
		return nil, fmt.Errorf("carray: %q is not float64 (dtype %q)", name, meta.Dtype)
	}
	out := make([]float64, len(words))
	for i, w := range words {
		out[i] = math.Float64frombits(w)
	}
	return out, nil
}

// Bytes reads a one-byte-element array as a raw payload.
func (r *Reader) Bytes(name string) ([]byte, error) {
	meta, ok := r.metas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoArray, name)
	}
	if Dtype(meta.Dtype).ItemSize() != 1 {
		return nil, fmt.Errorf("carray: %q is not a byte array (dtype %q)", name, meta.Dtype)
	}
	payload, err := r.readChunk(name, meta)
	if err != nil {
		return nil, err
	}
	if meta.hasDelta() {
		words, err := decodeWords(payload, 1, true)
		if err != nil {
			return nil, err
		}
		payload = make([]byte, len(words))
		for i, w := range words {
			payload[i] = byte(w)
		}
	}
	if len(payload) != meta.Shape[0] {
		return nil, fmt.Errorf("%w: %q: chunk holds %d bytes, shape says %d",
			ErrNotContainer, name, len(payload), meta.Shape[0])
	}
	return payload, nil
}

func (r *Reader) readWords(name string) ([]uint64, *arrayMeta, error) {
	meta, ok := r.metas[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoArray, name)
	}
	payload, err := r.readChunk(name, meta)
	if err != nil {
		return nil, nil, err
	}
	dtype := Dtype(meta.Dtype)
	words, err := decodeWords(payload, dtype.ItemSize(), meta.hasDelta())
	if err != nil {
		return nil, nil, err
	}
	if len(words) != meta.Shape[0] {
		return nil, nil, fmt.Errorf("%w: %q: chunk holds %d elements, shape says %d",
			ErrNotContainer, name, len(words), meta.Shape[0])
	}
	return words, meta, nil
}

func (r *Reader) readChunk(name string, meta *arrayMeta) ([]byte, error) {
	chunk, ok := r.chunks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no chunk", ErrNotContainer, name)
	}
	data, err := readAll(chunk)
	if err != nil {
		return nil, err
	}
	out, err := decompressChunk(Compressor(meta.Compressor), data)
	if err != nil {
		return nil, fmt.Errorf("carray: decompress %q: %w", name, err)
	}
	return out, nil
}

// Close releases the underlying file handle, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

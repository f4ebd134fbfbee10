package carray

import (
	"bytes"
	"errors"
	"testing"
)

func roundTrip(t *testing.T, build func(w *Writer) error) *Reader {
	t.Helper()
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	if err := build(w); err != nil {
		t.Fatalf("build container: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	r, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open container: %v", err)
	}
	return r
}

func TestIntsRoundTrip(t *testing.T) {
	values := []int64{-128, -1, 0, 1, 127}
	r := roundTrip(t, func(w *Writer) error {
		return w.PutInts("x", values, Int8, PutOptions{})
	})
	got, err := r.Ints("x")
	if err != nil {
		t.Fatalf("Ints failed: %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("length %d != %d", len(got), len(values))
	}
	for i, v := range values {
		if got[i] != v {
			t.Errorf("value[%d]: got %d, want %d", i, got[i], v)
		}
	}
}

func TestUintsDeltaRoundTrip(t *testing.T) {
	values := []uint64{0, 0, 5, 5, 1000, 70000}
	r := roundTrip(t, func(w *Writer) error {
		return w.PutUints("offsets", values, Uint32, PutOptions{Delta: true})
	})
	info, err := r.Info("offsets")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if !info.Delta {
		t.Error("delta filter not recorded in metadata")
	}
	got, err := r.Uints("offsets")
	if err != nil {
		t.Fatalf("Uints failed: %v", err)
	}
	for i, v := range values {
		if got[i] != v {
			t.Errorf("value[%d]: got %d, want %d", i, got[i], v)
		}
	}
}

func TestDeltaWrapAround(t *testing.T) {
	// Differences overflow int8; wrapping arithmetic must still invert.
	values := []int64{-120, 120, -120, 127, -128}
	r := roundTrip(t, func(w *Writer) error {
		return w.PutInts("x", values, Int8, PutOptions{Delta: true})
	})
	got, err := r.Ints("x")
	if err != nil {
		t.Fatalf("Ints failed: %v", err)
	}
	for i, v := range values {
		if got[i] != v {
			t.Errorf("value[%d]: got %d, want %d", i, got[i], v)
		}
	}
}

func TestFloatsRoundTrip(t *testing.T) {
	values := []float64{0, 1.5, -2.25, 1e300, -1e-300}
	r := roundTrip(t, func(w *Writer) error {
		return w.PutFloats("f", values, PutOptions{})
	})
	got, err := r.Floats("f")
	if err != nil {
		t.Fatalf("Floats failed: %v", err)
	}
	for i, v := range values {
		if got[i] != v {
			t.Errorf("value[%d]: got %v, want %v", i, got[i], v)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	payload := []byte("h\x00llo \xc3\xa9\xc3\xa9")
	r := roundTrip(t, func(w *Writer) error {
		return w.PutBytes("b", payload, PutOptions{})
	})
	got, err := r.Bytes("b")
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %q, want %q", got, payload)
	}
}

func TestEmptyArray(t *testing.T) {
	r := roundTrip(t, func(w *Writer) error {
		return w.PutInts("empty", nil, Int32, PutOptions{})
	})
	info, err := r.Info("empty")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Len != 0 {
		t.Errorf("length: got %d, want 0", info.Len)
	}
	got, err := r.Ints("empty")
	if err != nil {
		t.Fatalf("Ints failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d values, want none", len(got))
	}
}

func TestSnappyCompressor(t *testing.T) {
	values := make([]int64, 1000)
	for i := range values {
		values[i] = int64(i % 7)
	}
	r := roundTrip(t, func(w *Writer) error {
		return w.PutInts("x", values, Int16, PutOptions{Compressor: Snappy})
	})
	info, err := r.Info("x")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Compressor != Snappy {
		t.Errorf("compressor: got %q, want %q", info.Compressor, Snappy)
	}
	if info.StoredBytes >= info.NBytes {
		t.Errorf("stored %d bytes not smaller than logical %d", info.StoredBytes, info.NBytes)
	}
	got, err := r.Ints("x")
	if err != nil {
		t.Fatalf("Ints failed: %v", err)
	}
	for i, v := range values {
		if got[i] != v {
			t.Fatalf("value[%d]: got %d, want %d", i, got[i], v)
		}
	}
}

func TestAttrsRoundTrip(t *testing.T) {
	type attrs struct {
		Name    string `json:"name"`
		Version []int  `json:"version"`
	}
	r := roundTrip(t, func(w *Writer) error {
		return w.SetAttrs(attrs{Name: "test", Version: []int{1, 0}})
	})
	var got attrs
	if err := r.Attrs(&got); err != nil {
		t.Fatalf("Attrs failed: %v", err)
	}
	if got.Name != "test" || len(got.Version) != 2 || got.Version[0] != 1 {
		t.Errorf("unexpected attrs: %+v", got)
	}
}

func TestMissingAttrs(t *testing.T) {
	r := roundTrip(t, func(w *Writer) error { return nil })
	var v map[string]any
	if err := r.Attrs(&v); !errors.Is(err, ErrNoAttrs) {
		t.Errorf("got %v, want ErrNoAttrs", err)
	}
}

func TestNotContainer(t *testing.T) {
	junk := []byte("this is not a zip container at all, promise")
	_, err := NewReader(bytes.NewReader(junk), int64(len(junk)))
	if !errors.Is(err, ErrNotContainer) {
		t.Errorf("got %v, want ErrNotContainer", err)
	}
}

func TestMissingArray(t *testing.T) {
	r := roundTrip(t, func(w *Writer) error { return nil })
	if _, err := r.Ints("nope"); !errors.Is(err, ErrNoArray) {
		t.Errorf("got %v, want ErrNoArray", err)
	}
}

func TestOutOfRangeValue(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	if err := w.PutInts("x", []int64{128}, Int8, PutOptions{}); err == nil {
		t.Error("expected range error for 128 in int8")
	}
	if err := w.PutUints("y", []uint64{256}, Uint8, PutOptions{}); err == nil {
		t.Error("expected range error for 256 in uint8")
	}
}

func TestDuplicateArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	if err := w.PutInts("x", []int64{1}, Int8, PutOptions{}); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	if err := w.PutInts("x", []int64{2}, Int8, PutOptions{}); err == nil {
		t.Error("expected error on duplicate array name")
	}
}

func TestArraysSorted(t *testing.T) {
	r := roundTrip(t, func(w *Writer) error {
		for _, name := range []string{"b/two", "a/one", "c"} {
			if err := w.PutInts(name, []int64{1}, Int8, PutOptions{}); err != nil {
				return err
			}
		}
		return nil
	})
	names := r.Arrays()
	want := []string{"a/one", "b/two", "c"}
	if len(names) != len(want) {
		t.Fatalf("got %d arrays, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("array[%d]: got %q, want %q", i, names[i], want[i])
		}
	}
}

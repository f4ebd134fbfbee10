package carray

import (
	"encoding/binary"
	"fmt"
)

// FilterDelta is the successive-difference pre-filter. The first element is
// stored verbatim and each following element is replaced by its wrapping
// difference from the predecessor, computed at the array's element width.
// The transform is exactly invertible by a wrapping prefix sum, including
// when differences overflow the element type.
const FilterDelta = "delta"

func widthMask(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*size) - 1
}

// encodeWords serializes raw element bit patterns at the given width,
// applying the delta filter first when requested.
func encodeWords(words []uint64, size int, delta bool) []byte {
	mask := widthMask(size)
	out := make([]byte, len(words)*size)
	var prev uint64
	for i, w := range words {
		w &= mask
		v := w
		if delta {
			v = (w - prev) & mask
			prev = w
		}
		putWord(out[i*size:], v, size)
	}
	return out
}

// decodeWords reverses encodeWords, returning raw element bit patterns.
func decodeWords(data []byte, size int, delta bool) ([]uint64, error) {
	if len(data)%size != 0 {
		return nil, fmt.Errorf("carray: chunk length %d not a multiple of element size %d", len(data), size)
	}
	mask := widthMask(size)
	words := make([]uint64, len(data)/size)
	var acc uint64
	for i := range words {
		v := getWord(data[i*size:], size)
		if delta {
			acc = (acc + v) & mask
			words[i] = acc
		} else {
			words[i] = v
		}
	}
	return words, nil
}

func putWord(b []byte, v uint64, size int) {
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	}
}

func getWord(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// signExtend widens a raw bit pattern of the given byte width to int64.
func signExtend(v uint64, size int) int64 {
	shift := uint(64 - 8*size)
	return int64(v<<shift) >> shift
}

package tszip

import "github.com/tszip-db/tszip/internal/carray"

// Width inference: the narrowest integer type that represents an array's
// observed value range exactly. Empty arrays keep their natural width
// because min and max are undefined. Boundary values are inclusive: 127
// still fits a signed 8-bit element, 128 requires 16 bits.

var signedWidths = []carray.Dtype{carray.Int8, carray.Int16, carray.Int32, carray.Int64}
var unsignedWidths = []carray.Dtype{carray.Uint8, carray.Uint16, carray.Uint32, carray.Uint64}

// minimalSigned returns the narrowest signed dtype whose range contains
// every value.
func minimalSigned(values []int64, natural carray.Dtype) carray.Dtype {
	if len(values) == 0 {
		return natural
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	for _, d := range signedWidths {
		lo, hi := d.Range()
		if lo <= minVal && maxVal <= hi {
			return d
		}
	}
	return carray.Int64
}

// minimalUnsigned returns the narrowest unsigned dtype that holds every
// value. Only the maximum needs checking.
func minimalUnsigned(values []uint64, natural carray.Dtype) carray.Dtype {
	if len(values) == 0 {
		return natural
	}
	var maxVal uint64
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	for _, d := range unsignedWidths {
		if maxVal <= d.MaxUint() {
			return d
		}
	}
	return carray.Uint64
}

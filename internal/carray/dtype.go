package carray

import "fmt"

// Dtype identifies the element type of a stored array. The string values
// follow the little-endian array-protocol convention ("<i4" is a 4-byte
// signed integer, "|i1" is a raw byte).
type Dtype string

// Supported element types.
const (
	Int8    Dtype = "<i1"
	Int16   Dtype = "<i2"
	Int32   Dtype = "<i4"
	Int64   Dtype = "<i8"
	Uint8   Dtype = "<u1"
	Uint16  Dtype = "<u2"
	Uint32  Dtype = "<u4"
	Uint64  Dtype = "<u8"
	Float64 Dtype = "<f8"
	Byte    Dtype = "|i1"
)

// ItemSize returns the size of one element in bytes.
func (d Dtype) ItemSize() int {
	switch d {
	case Int8, Uint8, Byte:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// IsSigned reports whether d is a signed integer type.
func (d Dtype) IsSigned() bool {
	switch d {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// IsUnsigned reports whether d is an unsigned integer type.
func (d Dtype) IsUnsigned() bool {
	switch d {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsInteger reports whether d is a signed or unsigned integer type.
func (d Dtype) IsInteger() bool {
	return d.IsSigned() || d.IsUnsigned()
}

// Valid reports whether d names a supported element type.
func (d Dtype) Valid() bool {
	return d.ItemSize() != 0
}

// Range returns the inclusive representable range for integer types.
func (d Dtype) Range() (min, max int64) {
	switch d {
	case Int8:
		return -1 << 7, 1<<7 - 1
	case Int16:
		return -1 << 15, 1<<15 - 1
	case Int32:
		return -1 << 31, 1<<31 - 1
	case Int64:
		return -1 << 63, 1<<63 - 1
	}
	return 0, 0
}

// MaxUint returns the inclusive maximum for unsigned types.
func (d Dtype) MaxUint() uint64 {
	switch d {
	case Uint8:
		return 1<<8 - 1
	case Uint16:
		return 1<<16 - 1
	case Uint32:
		return 1<<32 - 1
	case Uint64:
		return 1<<64 - 1
	}
	return 0
}

func parseDtype(s string) (Dtype, error) {
	d := Dtype(s)
	if !d.Valid() {
		return "", fmt.Errorf("carray: unsupported dtype %q", s)
	}
	return d, nil
}

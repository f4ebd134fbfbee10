package carray

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compressor identifies a chunk compression codec.
type Compressor string

// Supported chunk compressors.
const (
	Zstd   Compressor = "zstd"
	Snappy Compressor = "snappy"
	None   Compressor = "none"
)

// DefaultLevel is the zstd compression level used when none is configured.
// Matches the "best" end of the scale since archives are write-once.
const DefaultLevel = 9

func compressChunk(c Compressor, level int, data []byte) ([]byte, error) {
	switch c {
	case Zstd, "":
		if level <= 0 {
			level = DefaultLevel
		}
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, err
		}
		out := enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return out, nil
	case Snappy:
		return snappy.Encode(nil, data), nil
	case None:
		return data, nil
	}
	return nil, fmt.Errorf("carray: unknown compressor %q", c)
}

func decompressChunk(c Compressor, data []byte) ([]byte, error) {
	switch c {
	case Zstd, "":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case Snappy:
		return snappy.Decode(nil, data)
	case None:
		return data, nil
	}
	return nil, fmt.Errorf("carray: unknown compressor %q", c)
}

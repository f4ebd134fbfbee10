package tszip

import (
	"encoding/json"
	"fmt"
)

// FormatName is the archive identity string checked on every read.
const FormatName = "tszip"

// Format version of archives produced by this package. The major version
// must match exactly on read; any minor version under the same major is
// accepted.
const (
	FormatVersionMajor = 1
	FormatVersionMinor = 0
)

// rootAttrs is the fixed set of container root attributes.
type rootAttrs struct {
	FormatName     string          `json:"format_name"`
	FormatVersion  []int           `json:"format_version"`
	SequenceLength float64         `json:"sequence_length"`
	Provenance     json.RawMessage `json:"provenance"`
	TimeUnits      string          `json:"time_units"`
	Metadata       []byte          `json:"metadata,omitempty"`
	MetadataSchema string          `json:"metadata_schema,omitempty"`
}

// checkFormat validates archive identity and version compatibility. It is
// called before any column is read.
func checkFormat(attrs *rootAttrs, path string) error {
	if attrs.FormatName == "" || attrs.FormatVersion == nil {
		return newFormatError(FormatErrorAttrs, "missing format identification attributes", path, nil)
	}
	if attrs.FormatName != FormatName {
		return newFormatError(FormatErrorName,
			fmt.Sprintf("incorrect file format: expected %q got %q", FormatName, attrs.FormatName),
			path, nil)
	}
	if len(attrs.FormatVersion) < 2 {
		return newFormatError(FormatErrorAttrs,
			fmt.Sprintf("malformed format_version %v", attrs.FormatVersion), path, nil)
	}
	major := attrs.FormatVersion[0]
	if major < FormatVersionMajor {
		return newFormatError(FormatErrorVersion,
			fmt.Sprintf("format version %v too old, current version = [%d, %d]",
				attrs.FormatVersion, FormatVersionMajor, FormatVersionMinor),
			path, nil)
	}
	if major > FormatVersionMajor {
		return newFormatError(FormatErrorVersion,
			fmt.Sprintf("format version %v too new, current version = [%d, %d]",
				attrs.FormatVersion, FormatVersionMajor, FormatVersionMinor),
			path, nil)
	}
	return nil
}

package tszip

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive-level failures.
var (
	// ErrFormat is matched by every FormatError.
	ErrFormat = errors.New("invalid archive format")

	// ErrVersion is matched by FormatErrors caused by an unsupported
	// archive major version.
	ErrVersion = errors.New("unsupported archive version")
)

// FormatErrorType categorizes format errors.
type FormatErrorType int

const (
	// FormatErrorContainer indicates the input is not a valid archive
	// container.
	FormatErrorContainer FormatErrorType = iota
	// FormatErrorAttrs indicates missing or malformed root attributes.
	FormatErrorAttrs
	// FormatErrorName indicates a format identity string mismatch.
	FormatErrorName
	// FormatErrorVersion indicates an unsupported major version.
	FormatErrorVersion
	// FormatErrorColumn indicates a missing or mistyped column array.
	FormatErrorColumn
)

// FormatError reports that an archive cannot be read as a tszip container.
// Filesystem errors are never wrapped in a FormatError; they propagate to
// the caller unchanged.
type FormatError struct {
	Type    FormatErrorType
	Message string
	Path    string
	Cause   error
}

func (e *FormatError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// Is implements error matching against the package sentinels.
func (e *FormatError) Is(target error) bool {
	if target == ErrFormat {
		return true
	}
	if target == ErrVersion {
		return e.Type == FormatErrorVersion
	}
	return false
}

func newFormatError(errType FormatErrorType, message, path string, cause error) *FormatError {
	return &FormatError{
		Type:    errType,
		Message: message,
		Path:    path,
		Cause:   cause,
	}
}

package oif

import (
	"errors"
	"fmt"
)

// Fatal decode errors. Each aborts only the current file's pipeline; a batch
// of files continues with the next.
var (
	// ErrUnrecognizedFormat means no known magic matched.
	ErrUnrecognizedFormat = errors.New("oif: unrecognized format")

	// ErrAmbiguousByteOrder means V1 order inference was inconclusive and no
	// override was given. Recoverable by retrying with ForceSwap.
	ErrAmbiguousByteOrder = errors.New("oif: ambiguous byte order")

	// ErrMalformedHeader means a structurally impossible field value.
	ErrMalformedHeader = errors.New("oif: malformed header")

	// ErrTruncatedPixelData means the declared extents exceed the pixel file.
	ErrTruncatedPixelData = errors.New("oif: truncated pixel data")

	// ErrUnsupportedPixelType means an unknown or unconvertible datatype code.
	ErrUnsupportedPixelType = errors.New("oif: unsupported pixel type")
)

// malformedf wraps ErrMalformedHeader naming the offending field.
func malformedf(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedHeader, field, fmt.Sprintf(format, args...))
}

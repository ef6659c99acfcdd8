package tmf

import (
	"errors"
	"fmt"
)

// ErrTruncated is matched (errors.Is) by every TruncatedError.
var ErrTruncated = errors.New("tmf: truncated data")

// FormatError reports a file that is not TMF, or a version the reader refuses.
type FormatError struct {
	Magic   [3]byte
	Version uint16
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("tmf: format: %s (magic %q, version %d)", e.Reason, e.Magic[:], e.Version)
}

// TruncatedError reports a stream that ended before all declared records
// were consumed.
type TruncatedError struct {
	Section string // e.g. "header", "helper 0 name", "object 2 triangles"
	Offset  int64  // bytes consumed before the short read
	Err     error
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("tmf: truncated data in %s at offset %d", e.Section, e.Offset)
}

func (e *TruncatedError) Unwrap() []error {
	return []error{ErrTruncated, e.Err}
}

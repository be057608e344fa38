package export

import (
	"errors"
	"fmt"
)

// ErrMissingInput rejects an export before any job state exists: no
// source video or an empty segment list.
var ErrMissingInput = errors.New("video and segments are required")

// SegmentError is a render-service failure for one segment. It aborts
// the whole job; no later segments are attempted and no artifact list
// is returned.
type SegmentError struct {
	Index int // zero-based position in the input segment order
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Index+1, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// StorageError is a working-area failure: directory creation or source
// video persistence. Job-fatal, like SegmentError.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

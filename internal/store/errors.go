package store

import "fmt"

// StorageError reports an I/O or bookkeeping failure while reading or
// writing a chunk.
type StorageError struct {
	Op     string
	Digest string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Digest != "" {
		return fmt.Sprintf("storage %s failed for chunk %s: %v", e.Op, e.Digest, e.Err)
	}
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// CorruptedDataError reports a digest or size mismatch detected while
// reading a chunk back. It is never downgraded to a skip: returning
// corrupted bytes would violate the store's core guarantee.
type CorruptedDataError struct {
	Digest string
	Reason string
}

func (e *CorruptedDataError) Error() string {
	return fmt.Sprintf("corrupted chunk %s: %s", e.Digest, e.Reason)
}

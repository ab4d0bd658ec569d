package record

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrIO matches every persistence failure.
	ErrIO = errors.New("record: io failure")

	// ErrFormat is returned for blobs that are not valid records.
	ErrFormat = errors.New("record: invalid format")

	// ErrChecksum is returned when the stored checksum does not match.
	ErrChecksum = errors.New("record: checksum mismatch")

	// ErrUnknownCodec is returned when a record names a codec that is not built in.
	ErrUnknownCodec = errors.New("record: unknown header codec")
)

// IOError wraps a blob store failure for one record.
type IOError struct {
	Op   string
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("record: %s %s: %v", e.Op, e.Name, e.Err)
}

// Is matches ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

func (e *IOError) Unwrap() error { return e.Err }

// PartialWriteError reports a multi-shot write that stopped early. Records
// already written stay in the store.
type PartialWriteError struct {
	// Written holds the shot indices that were persisted.
	Written *roaring.Bitmap
	// Shot is the first shot that failed.
	Shot int
	Err  error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("record: wrote %d shots, shot %d failed: %v", e.Written.GetCardinality(), e.Shot, e.Err)
}

// Is matches ErrIO.
func (e *PartialWriteError) Is(target error) bool { return target == ErrIO }

func (e *PartialWriteError) Unwrap() error { return e.Err }

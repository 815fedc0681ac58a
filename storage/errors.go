package storage

import "github.com/pkg/errors"

var (
	ErrEmptyKey        = errors.New("key is empty")
	ErrKeyNotFound     = errors.New("key not found")
	ErrSegmentNotFound = errors.New("segment not found")
	ErrIndexUpdate     = errors.New("failed to update index")
	ErrBadRecordKind   = errors.New("unrecognized record kind")
	ErrTruncatedRecord = errors.New("record shorter than declared lengths")
	ErrEngineClosed    = errors.New("engine is closed")
)

// ErrorKind groups engine failures by how a caller should react:
// retry, report not-found, or treat as fatal.
type ErrorKind uint8

const (
	// KindInputValidation rejects malformed caller input, such as
	// an empty key.
	KindInputValidation ErrorKind = iota + 1

	// KindConcurrencyControl covers lock-acquisition failures on a
	// shared structure. The built-in index cannot produce it since
	// sync.RWMutex never fails to lock; it exists for alternate
	// Index implementations.
	KindConcurrencyControl

	// KindPersistence covers failures opening, reading, writing or
	// syncing a segment file.
	KindPersistence

	// KindIndexConsistency means the index rejected an update after
	// the record was already appended, leaving an orphaned record
	// on disk.
	KindIndexConsistency

	// KindLookup means the key is absent, or its pointer names a
	// segment the engine cannot find.
	KindLookup

	// KindDecode means an on-disk record is malformed.
	KindDecode
)

// KindOf classifies any error returned by the engine. Errors that do
// not match a sentinel are storage-level failures.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrEmptyKey):
		return KindInputValidation
	case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrSegmentNotFound):
		return KindLookup
	case errors.Is(err, ErrIndexUpdate):
		return KindIndexConsistency
	case errors.Is(err, ErrBadRecordKind), errors.Is(err, ErrTruncatedRecord):
		return KindDecode
	default:
		return KindPersistence
	}
}

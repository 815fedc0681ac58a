package storage

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// RecordKind tags what a record means for the key it carries.
type RecordKind byte

const (
	// RecordNormal marks a live key-value pair.
	RecordNormal RecordKind = 1

	// RecordTombstone marks a logical deletion of the key.
	RecordTombstone RecordKind = 2
)

// maxRecordHeaderSize bounds the two uvarint length fields.
const maxRecordHeaderSize = binary.MaxVarintLen32 * 2

// Record is one key-value entry as it travels through the engine
// and onto disk.
type Record struct {
	Key   []byte
	Value []byte
	Kind  RecordKind
}

// RecordPointer locates one encoded record in the log. Size is the
// full encoded length, so a reader needs no guessing at read time.
// Pointers are replaced wholesale on overwrite, never mutated.
type RecordPointer struct {
	SegmentID uint64
	Offset    uint64
	Size      uint32
}

// EncodeRecord serializes rec into its self-framing wire layout:
//
//	[key_len uvarint][value_len uvarint][key][value][kind]
//
// A reader holding only a byte offset can recover the record
// boundary from the two length fields and the trailing kind byte.
func EncodeRecord(rec *Record) []byte {
	header := make([]byte, maxRecordHeaderSize)

	idx := binary.PutUvarint(header, uint64(len(rec.Key)))
	idx += binary.PutUvarint(header[idx:], uint64(len(rec.Value)))

	buf := make([]byte, idx+len(rec.Key)+len(rec.Value)+1)

	copy(buf, header[:idx])
	copy(buf[idx:], rec.Key)
	copy(buf[idx+len(rec.Key):], rec.Value)
	buf[len(buf)-1] = byte(rec.Kind)

	return buf
}

// DecodeRecord reverses EncodeRecord. It fails with ErrTruncatedRecord
// when buf is shorter than the declared lengths imply, and with
// ErrBadRecordKind when the trailing tag is unrecognized.
func DecodeRecord(buf []byte) (*Record, error) {
	keyLen, n := binary.Uvarint(buf)

	if n <= 0 {
		return nil, errors.Wrap(ErrTruncatedRecord, "key length field")
	}

	valLen, m := binary.Uvarint(buf[n:])

	if m <= 0 {
		return nil, errors.Wrap(ErrTruncatedRecord, "value length field")
	}

	if keyLen > uint64(len(buf)) || valLen > uint64(len(buf)) {
		return nil, errors.Wrapf(ErrTruncatedRecord, "declared lengths %d+%d, have %d", keyLen, valLen, len(buf))
	}

	head := uint64(n + m)
	total := head + keyLen + valLen + 1

	if uint64(len(buf)) < total {
		return nil, errors.Wrapf(ErrTruncatedRecord, "declared %d bytes, have %d", total, len(buf))
	}

	kind := RecordKind(buf[total-1])

	if kind != RecordNormal && kind != RecordTombstone {
		return nil, errors.Wrapf(ErrBadRecordKind, "tag %d", byte(kind))
	}

	return &Record{
		Key:   buf[head : head+keyLen],
		Value: buf[head+keyLen : head+keyLen+valLen],
		Kind:  kind,
	}, nil
}

// decodeRecordBounds parses only the length fields out of a header
// chunk and reports the full encoded size of the record. Used by the
// recovery scan, which walks a segment without pointers.
func decodeRecordBounds(buf []byte) (total uint64, err error) {
	keyLen, n := binary.Uvarint(buf)

	if n <= 0 {
		return 0, errors.Wrap(ErrTruncatedRecord, "key length field")
	}

	valLen, m := binary.Uvarint(buf[n:])

	if m <= 0 {
		return 0, errors.Wrap(ErrTruncatedRecord, "value length field")
	}

	if keyLen > math.MaxUint32 || valLen > math.MaxUint32 {
		return 0, errors.Wrapf(ErrTruncatedRecord, "declared lengths %d+%d", keyLen, valLen)
	}

	return uint64(n+m) + keyLen + valLen + 1, nil
}

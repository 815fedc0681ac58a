package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/LingkKang/dracon/storage/fio"
	"github.com/pkg/errors"
)

// Segment is one append-only data file of the log. Its id is fixed
// for life and never reused; the write cursor only grows, and only
// by the byte count of appends that actually succeeded.
type Segment struct {
	id      uint64
	cursor  uint64
	channel fio.IOManager
}

// SegmentName builds the file path of the segment with the given id.
func SegmentName(dir string, id uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%020d", id))
}

// OpenSegment creates or opens the backing file named by id under
// dir. The cursor starts at zero; reopening a non-empty file is the
// recovery path's job, which forwards the cursor to the scanned end.
func OpenSegment(dir string, id uint64) (*Segment, error) {
	channel, err := fio.NewFileIO(SegmentName(dir, id))

	if err != nil {
		return nil, err
	}

	return &Segment{id: id, channel: channel}, nil
}

func (s *Segment) ID() uint64 {
	return s.id
}

// Cursor reports the offset the next append will land at.
func (s *Segment) Cursor() uint64 {
	return s.cursor
}

// Append writes buf at the end of the segment and returns the offset
// it landed at. The cursor advances only when the write succeeded.
func (s *Segment) Append(buf []byte) (uint64, error) {
	offset := s.cursor

	n, err := s.channel.Write(buf)

	if err != nil {
		return 0, err
	}

	s.cursor += uint64(n)

	return offset, nil
}

// ReadAt returns n bytes starting at offset.
func (s *Segment) ReadAt(offset uint64, n uint32) ([]byte, error) {
	buf := make([]byte, n)

	if _, err := s.channel.Read(buf, int64(offset)); err != nil {
		return nil, err
	}

	return buf, nil
}

func (s *Segment) Sync() error {
	return s.channel.Sync()
}

func (s *Segment) Size() (int64, error) {
	return s.channel.Size()
}

func (s *Segment) Close() error {
	return s.channel.Close()
}

// segmentIDs lists the ids of all segment files under dir, sorted
// ascending. Non-segment file names are rejected so a corrupted
// directory is noticed on open rather than at first read.
func segmentIDs(dir string) ([]uint64, error) {
	files, err := os.ReadDir(dir)

	if err != nil {
		return nil, errors.Wrap(err, "list storage directory")
	}

	ids := make([]uint64, 0, len(files))

	for _, file := range files {
		id, err := strconv.ParseUint(file.Name(), 10, 64)

		if err != nil {
			return nil, errors.Wrapf(err, "not a segment file: %s", file.Name())
		}

		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

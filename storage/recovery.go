package storage

import (
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// loadSegments discovers existing segment files, replays them into
// the index in id order and installs the highest-numbered one as the
// active segment. An empty directory starts fresh at id 0.
func (e *Engine) loadSegments() error {
	ids, err := segmentIDs(e.opts.Dir)

	if err != nil {
		return err
	}

	if len(ids) == 0 {
		seg, err := OpenSegment(e.opts.Dir, 0)

		if err != nil {
			return err
		}

		e.active = seg

		return nil
	}

	var replayed int

	for i, id := range ids {
		seg, err := OpenSegment(e.opts.Dir, id)

		if err != nil {
			return err
		}

		end, count, err := e.replaySegment(seg)

		if err != nil {
			return err
		}

		replayed += count

		if i == len(ids)-1 {
			// The resumed segment keeps appending where the log
			// ends, so recorded offsets stay truthful.
			seg.cursor = end
			e.active = seg
		} else {
			e.sealed[id] = seg
		}
	}

	level.Info(e.logger).Log("msg", "replayed log", "segments", len(ids),
		"records", replayed, "active", e.active.ID())

	return nil
}

// replaySegment walks one segment front to back, feeding each record
// into the index. Later records win over earlier ones and tombstones
// drop their key. Returns the end offset and the record count.
func (e *Engine) replaySegment(seg *Segment) (uint64, int, error) {
	size, err := seg.Size()

	if err != nil {
		return 0, 0, err
	}

	var (
		offset uint64
		count  int
		header = make([]byte, maxRecordHeaderSize)
	)

	for offset < uint64(size) {
		chunk := header

		if remaining := uint64(size) - offset; remaining < uint64(len(header)) {
			chunk = header[:remaining]
		}

		if _, err := seg.channel.Read(chunk, int64(offset)); err != nil {
			return 0, 0, err
		}

		total, err := decodeRecordBounds(chunk)

		if err != nil {
			return 0, 0, errors.Wrapf(err, "segment %d offset %d", seg.ID(), offset)
		}

		if offset+total > uint64(size) {
			return 0, 0, errors.Wrapf(ErrTruncatedRecord, "segment %d offset %d", seg.ID(), offset)
		}

		buf, err := seg.ReadAt(offset, uint32(total))

		if err != nil {
			return 0, 0, err
		}

		rec, err := DecodeRecord(buf)

		if err != nil {
			return 0, 0, errors.Wrapf(err, "segment %d offset %d", seg.ID(), offset)
		}

		if rec.Kind == RecordTombstone {
			e.index.Delete(rec.Key)
		} else {
			e.index.Put(rec.Key, RecordPointer{
				SegmentID: seg.ID(),
				Offset:    offset,
				Size:      uint32(total),
			})
		}

		offset += total
		count++
	}

	return offset, count, nil
}

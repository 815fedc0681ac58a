package storage

import (
	"os"
	"sync"
	"time"

	"github.com/LingkKang/dracon/config"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Engine is the log-structured storage engine. Writes are appended
// to the single active segment; once a segment fills up it is sealed
// into the read-only registry and a fresh one takes over. The index
// always points at the newest record of each key.
//
// The three effects of a Put (append, index update, fsync) are not
// one atomic transaction. A fault between them can leave an appended
// record that no index entry names; such records are recovered by
// the replay pass on the next Open.
type Engine struct {
	logger  log.Logger
	opts    config.Options
	metrics *EngineMetrics

	// activeMu guards the active-segment slot. Rotation takes it
	// exclusively, then sealedMu, always in that order.
	activeMu sync.RWMutex
	active   *Segment
	closed   bool

	sealedMu sync.RWMutex
	sealed   map[uint64]*Segment

	index Index
}

// Open builds an engine over the storage directory named in opts.
// Existing segments are replayed into the index in id order, last
// write wins; the highest-numbered segment resumes as active.
func Open(logger log.Logger, registerer prometheus.Registerer, opts config.Options) (*Engine, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}

	var wrapped prometheus.Registerer

	if registerer != nil {
		wrapped = prometheus.WrapRegistererWithPrefix("storage_engine_", registerer)
	}

	e := &Engine{
		logger:  logger,
		opts:    opts,
		metrics: NewEngineMetrics(wrapped),
		sealed:  make(map[uint64]*Segment),
		index:   NewBTreeIndex(),
	}

	if err := e.loadSegments(); err != nil {
		return nil, err
	}

	e.metrics.activeSegment.Set(float64(e.active.ID()))

	return e, nil
}

// Put saves a key-value pair. The key must not be empty.
func (e *Engine) Put(key []byte, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	rec := &Record{
		Key:   key,
		Value: value,
		Kind:  RecordNormal,
	}

	ptr, err := e.appendRecord(rec)

	if err != nil {
		e.metrics.appendFailures.Inc()
		return err
	}

	if !e.index.Put(key, ptr) {
		// The record is already durably appended; only a log scan
		// can recover it now.
		return errors.Wrapf(ErrIndexUpdate, "key %q at segment %d offset %d",
			key, ptr.SegmentID, ptr.Offset)
	}

	return nil
}

// Get returns the newest record stored for key.
func (e *Engine) Get(key []byte) (*Record, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	e.metrics.readsTotal.Inc()

	ptr, ok := e.index.Get(key)

	if !ok {
		e.metrics.readFailures.Inc()
		return nil, errors.Wrapf(ErrKeyNotFound, "key %q", key)
	}

	buf, err := e.readPointer(ptr)

	if err != nil {
		e.metrics.readFailures.Inc()
		return nil, err
	}

	rec, err := DecodeRecord(buf)

	if err != nil {
		e.metrics.readFailures.Inc()
		return nil, errors.Wrapf(err, "segment %d offset %d", ptr.SegmentID, ptr.Offset)
	}

	return rec, nil
}

// Sync forces the active segment durably to storage.
func (e *Engine) Sync() error {
	e.activeMu.RLock()
	defer e.activeMu.RUnlock()

	if e.closed {
		return ErrEngineClosed
	}

	return e.fsync(e.active)
}

// Close syncs and closes the active segment and every sealed one.
// The engine accepts no operations afterwards.
func (e *Engine) Close() error {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	e.closed = true

	if err := e.fsync(e.active); err != nil {
		return err
	}

	if err := e.active.Close(); err != nil {
		return errors.Wrap(err, "close active segment")
	}

	e.sealedMu.Lock()
	defer e.sealedMu.Unlock()

	for id, seg := range e.sealed {
		if err := seg.Close(); err != nil {
			return errors.Wrapf(err, "close sealed segment %d", id)
		}
	}

	return nil
}

// appendRecord encodes rec and appends it to the active segment,
// rotating first when the write would overflow the size budget.
func (e *Engine) appendRecord(rec *Record) (RecordPointer, error) {
	encoded := EncodeRecord(rec)

	e.activeMu.Lock()
	defer e.activeMu.Unlock()

	if e.closed {
		return RecordPointer{}, ErrEngineClosed
	}

	if e.active.Cursor()+uint64(len(encoded)) > uint64(e.opts.MaxSegmentSize) {
		if err := e.rotate(); err != nil {
			return RecordPointer{}, err
		}
	}

	offset, err := e.active.Append(encoded)

	if err != nil {
		return RecordPointer{}, err
	}

	e.metrics.appendsTotal.Inc()

	if e.opts.SyncWrites {
		if err := e.fsync(e.active); err != nil {
			return RecordPointer{}, err
		}
	}

	return RecordPointer{
		SegmentID: e.active.ID(),
		Offset:    offset,
		Size:      uint32(len(encoded)),
	}, nil
}

// rotate seals the active segment and installs a fresh one with the
// next id. Caller must hold activeMu exclusively.
func (e *Engine) rotate() error {
	outgoing := e.active

	if err := e.fsync(outgoing); err != nil {
		return err
	}

	e.sealedMu.Lock()
	e.sealed[outgoing.ID()] = outgoing
	e.sealedMu.Unlock()

	next, err := OpenSegment(e.opts.Dir, outgoing.ID()+1)

	if err != nil {
		return err
	}

	e.active = next

	e.metrics.rotationsTotal.Inc()
	e.metrics.activeSegment.Set(float64(next.ID()))

	level.Info(e.logger).Log("msg", "sealed segment", "id", outgoing.ID(),
		"bytes", outgoing.Cursor(), "next", next.ID())

	return nil
}

// readPointer fetches the raw encoded bytes ptr names, from the
// active segment or the sealed registry.
func (e *Engine) readPointer(ptr RecordPointer) ([]byte, error) {
	e.activeMu.RLock()
	defer e.activeMu.RUnlock()

	if e.closed {
		return nil, ErrEngineClosed
	}

	if e.active.ID() == ptr.SegmentID {
		return e.active.ReadAt(ptr.Offset, ptr.Size)
	}

	e.sealedMu.RLock()
	seg, ok := e.sealed[ptr.SegmentID]
	e.sealedMu.RUnlock()

	if !ok {
		// The index named a segment the engine does not hold: an
		// internal consistency violation, not a plain miss.
		return nil, errors.Wrapf(ErrSegmentNotFound, "segment %d", ptr.SegmentID)
	}

	return seg.ReadAt(ptr.Offset, ptr.Size)
}

func (e *Engine) fsync(s *Segment) error {
	now := time.Now()
	err := s.Sync()

	e.metrics.fsyncDuration.Observe(time.Since(now).Seconds())

	return err
}

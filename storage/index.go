package storage

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

// Index maps raw key bytes to the location of the newest record for
// that key. Implementations are chosen at engine construction, so
// alternate strategies can be swapped without touching engine logic.
type Index interface {
	// Put stores the pointer for key, replacing any previous one.
	Put(key []byte, ptr RecordPointer) bool

	// Get returns the pointer for key, if present.
	Get(key []byte) (RecordPointer, bool)

	// Delete removes key and reports whether it was present.
	Delete(key []byte) bool
}

type indexItem struct {
	key []byte
	ptr RecordPointer
}

func (it *indexItem) Less(other btree.Item) bool {
	return bytes.Compare(it.key, other.(*indexItem).key) < 0
}

// BTreeIndex is the in-memory ordered index, a wrapper over
// google/btree keyed by lexicographic key bytes. One RWMutex covers
// all operations: writes take it exclusively, lookups share it.
type BTreeIndex struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

func NewBTreeIndex() *BTreeIndex {
	return &BTreeIndex{tree: btree.New(32)}
}

func (idx *BTreeIndex) Put(key []byte, ptr RecordPointer) bool {
	item := &indexItem{
		key: append([]byte(nil), key...),
		ptr: ptr,
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tree.ReplaceOrInsert(item)

	return true
}

func (idx *BTreeIndex) Get(key []byte) (RecordPointer, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	item := idx.tree.Get(&indexItem{key: key})

	if item == nil {
		return RecordPointer{}, false
	}

	return item.(*indexItem).ptr, true
}

func (idx *BTreeIndex) Delete(key []byte) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return idx.tree.Delete(&indexItem{key: key}) != nil
}

package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBTreeIndexPut(t *testing.T) {
	idx := NewBTreeIndex()

	assert.True(t, idx.Put([]byte("a"), RecordPointer{SegmentID: 1, Offset: 2, Size: 10}))
	assert.True(t, idx.Put([]byte("b"), RecordPointer{SegmentID: 1, Offset: 12, Size: 10}))

	// Overwrite replaces the pointer wholesale.
	assert.True(t, idx.Put([]byte("a"), RecordPointer{SegmentID: 3, Offset: 0, Size: 20}))

	ptr, ok := idx.Get([]byte("a"))
	require.True(t, ok)
	assert.Equal(t, uint64(3), ptr.SegmentID)
	assert.Equal(t, uint64(0), ptr.Offset)
	assert.Equal(t, uint32(20), ptr.Size)
}

func TestBTreeIndexGet(t *testing.T) {
	idx := NewBTreeIndex()

	_, ok := idx.Get([]byte("missing"))
	assert.False(t, ok)

	idx.Put([]byte("key1"), RecordPointer{SegmentID: 1, Offset: 10, Size: 5})

	ptr, ok := idx.Get([]byte("key1"))
	require.True(t, ok)
	assert.Equal(t, uint64(1), ptr.SegmentID)
	assert.Equal(t, uint64(10), ptr.Offset)
}

func TestBTreeIndexDelete(t *testing.T) {
	idx := NewBTreeIndex()

	idx.Put([]byte("key1"), RecordPointer{SegmentID: 1, Offset: 10, Size: 5})

	assert.True(t, idx.Delete([]byte("key1")))
	assert.False(t, idx.Delete([]byte("key1")))
	assert.False(t, idx.Delete([]byte("never-written")))

	_, ok := idx.Get([]byte("key1"))
	assert.False(t, ok)
}

func TestBTreeIndexKeyCopied(t *testing.T) {
	idx := NewBTreeIndex()

	key := []byte("mutable")
	idx.Put(key, RecordPointer{SegmentID: 1, Offset: 0, Size: 1})

	// Caller reuses its buffer; the index must not follow.
	key[0] = 'X'

	_, ok := idx.Get([]byte("mutable"))
	assert.True(t, ok)
}

func TestBTreeIndexConcurrent(t *testing.T) {
	idx := NewBTreeIndex()

	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			for i := 0; i < 200; i++ {
				key := []byte(fmt.Sprintf("w%d-k%d", w, i))
				idx.Put(key, RecordPointer{SegmentID: uint64(w), Offset: uint64(i)})

				ptr, ok := idx.Get(key)
				assert.True(t, ok)
				assert.Equal(t, uint64(i), ptr.Offset)
			}
		}(w)
	}

	wg.Wait()
}

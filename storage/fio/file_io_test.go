package fio

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileIO(t *testing.T) *FileIO {
	t.Helper()

	f, err := NewFileIO(filepath.Join(t.TempDir(), "000.data"))
	require.NoError(t, err)

	t.Cleanup(func() { f.Close() })

	return f
}

func TestFileIOWrite(t *testing.T) {
	f := newTestFileIO(t)

	n, err := f.Write([]byte("key1"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = f.Write([]byte("key_abcd"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(12), size)
}

func TestFileIORead(t *testing.T) {
	f := newTestFileIO(t)

	chunks := []string{"key1", "key_abcd", "a-longer-chunk-of-data"}

	offsets := make([]int64, 0, len(chunks))
	var offset int64

	for _, c := range chunks {
		offsets = append(offsets, offset)

		n, err := f.Write([]byte(c))
		require.NoError(t, err)
		offset += int64(n)
	}

	// Read back out of write order.
	for i := len(chunks) - 1; i >= 0; i-- {
		buf := make([]byte, len(chunks[i]))

		n, err := f.Read(buf, offsets[i])
		require.NoError(t, err)
		assert.Equal(t, len(chunks[i]), n)
		assert.Equal(t, chunks[i], string(buf))
	}
}

func TestFileIOReadPastEnd(t *testing.T) {
	f := newTestFileIO(t)

	_, err := f.Write([]byte("abc"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	_, err = f.Read(buf, 0)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestFileIOSync(t *testing.T) {
	f := newTestFileIO(t)

	_, err := f.Write([]byte("durable"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
}

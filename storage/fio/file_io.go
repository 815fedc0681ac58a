package fio

import (
	"os"

	"github.com/pkg/errors"
)

const dataFilePerm = 0o644

// IOManager abstracts the byte-level I/O of one backing file.
// Writes always land at the current end of the file, whatever
// offsets the caller tracks on its own.
type IOManager interface {
	// Read fills buf with bytes starting at offset and returns
	// how many were read.
	Read(buf []byte, offset int64) (int, error)

	// Write appends buf at the end of the file and returns how
	// many bytes were written.
	Write(buf []byte) (int, error)

	// Sync forces written data durably to storage.
	Sync() error

	// Size reports the current length of the file in bytes.
	Size() (int64, error)

	Close() error
}

// FileIO is the file-backed IOManager.
type FileIO struct {
	file *os.File
}

// NewFileIO opens (creating if needed) the file at name in
// read+append mode, so every write goes to end-of-file.
func NewFileIO(name string) (*FileIO, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR|os.O_APPEND, dataFilePerm)

	if err != nil {
		return nil, errors.Wrapf(err, "open data file %s", name)
	}

	return &FileIO{file: f}, nil
}

func (fio *FileIO) Read(buf []byte, offset int64) (int, error) {
	n, err := fio.file.ReadAt(buf, offset)

	if err != nil {
		return n, errors.Wrapf(err, "read %d bytes at offset %d", len(buf), offset)
	}

	return n, nil
}

func (fio *FileIO) Write(buf []byte) (int, error) {
	n, err := fio.file.Write(buf)

	if err != nil {
		return n, errors.Wrap(err, "append to data file")
	}

	return n, nil
}

func (fio *FileIO) Sync() error {
	if err := fio.file.Sync(); err != nil {
		return errors.Wrap(err, "sync data file")
	}

	return nil
}

func (fio *FileIO) Size() (int64, error) {
	stat, err := fio.file.Stat()

	if err != nil {
		return 0, errors.Wrap(err, "stat data file")
	}

	return stat.Size(), nil
}

func (fio *FileIO) Close() error {
	return fio.file.Close()
}

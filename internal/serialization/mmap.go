package serialization

import (
	"fmt"

	"golang.org/x/exp/mmap"
)

// MmapReader reads .gaze files through a read-only memory mapping. Only the
// header is parsed up front; tensor bytes are paged in on demand.
//
// Important: Always call Close() when done to unmap the file (use defer).
type MmapReader struct {
	*archive
	mapping *mmap.ReaderAt
}

// NewMmapReader maps a .gaze file and validates its header and checksum.
func NewMmapReader(path string) (*MmapReader, error) {
	return NewMmapReaderWithOptions(path, ReaderOptions{})
}

// NewMmapReaderWithOptions maps a .gaze file with custom options.
func NewMmapReaderWithOptions(path string, opts ReaderOptions) (*MmapReader, error) {
	mapping, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	a, err := openArchive(mapping, int64(mapping.Len()), opts)
	if err != nil {
		_ = mapping.Close()
		return nil, err
	}
	return &MmapReader{archive: a, mapping: mapping}, nil
}

// Size returns the mapped file length in bytes.
func (r *MmapReader) Size() int {
	return r.mapping.Len()
}

// Close unmaps the file.
func (r *MmapReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.mapping.Close()
}

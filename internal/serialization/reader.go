package serialization

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// ReaderOptions configures how a checkpoint is opened.
type ReaderOptions struct {
	SkipChecksumValidation bool // faster open, no corruption check
}

// archive holds the parsed layout of a .gaze file behind any io.ReaderAt.
type archive struct {
	src        io.ReaderAt
	header     Header
	flags      uint32
	checksum   [ChecksumSize]byte
	dataOffset int64
	dataSize   int64
	index      map[string]int
	closed     bool
}

// openArchive parses and validates the file layout. size is the file length.
func openArchive(src io.ReaderAt, size int64, opts ReaderOptions) (*archive, error) {
	prefix := make([]byte, FixedHeaderSize)
	if size < FixedHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrTruncated, size, FixedHeaderSize)
	}
	if _, err := src.ReadAt(prefix, 0); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	fixed, err := decodeFixedHeader(prefix)
	if err != nil {
		return nil, err
	}

	headerSize := int64(fixed.headerSize) //nolint:gosec // G115: bounded by MaxHeaderSize
	dataSize := int64(fixed.dataSize)     //nolint:gosec // G115: checked against file size below
	a := &archive{
		src:        src,
		flags:      fixed.flags,
		checksum:   fixed.checksum,
		dataOffset: dataOffset(headerSize),
		dataSize:   dataSize,
	}
	if dataSize < 0 || a.dataOffset+dataSize > size {
		return nil, fmt.Errorf("%w: data section [%d, +%d) beyond file size %d", ErrTruncated, a.dataOffset, fixed.dataSize, size)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := src.ReadAt(headerJSON, FixedHeaderSize); err != nil {
		return nil, fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &a.header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	if err := ValidateHeader(&a.header, dataSize); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !opts.SkipChecksumValidation {
		computed, err := ComputeChecksumReader(io.NewSectionReader(src, a.dataOffset, dataSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read tensor data for checksum: %w", err)
		}
		if err := ValidateChecksum(computed, a.checksum); err != nil {
			return nil, err
		}
	}

	a.index = make(map[string]int, len(a.header.Tensors))
	for i, t := range a.header.Tensors {
		a.index[t.Name] = i
	}
	return a, nil
}

// Header returns the file header.
func (a *archive) Header() Header {
	return a.header
}

// Metadata returns the metadata map from the header.
func (a *archive) Metadata() map[string]string {
	return a.header.Metadata
}

// Flags returns the flags bitfield.
func (a *archive) Flags() uint32 {
	return a.flags
}

// Checksum returns the stored SHA-256 of the data section.
func (a *archive) Checksum() [ChecksumSize]byte {
	return a.checksum
}

// TensorNames returns all tensor names in file order (sorted).
func (a *archive) TensorNames() []string {
	names := make([]string, len(a.header.Tensors))
	for i, meta := range a.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns metadata about a specific tensor.
func (a *archive) TensorInfo(name string) (*TensorMeta, error) {
	i, ok := a.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
	}
	meta := a.header.Tensors[i]
	return &meta, nil
}

// ReadTensor reads a single tensor into a new CPU RawTensor.
func (a *archive) ReadTensor(name string) (*tensor.RawTensor, error) {
	if a.closed {
		return nil, ErrClosed
	}
	meta, err := a.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	dtype, err := parseDType(meta.DType)
	if err != nil {
		return nil, err
	}

	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("invalid shape for tensor %s: %w", name, err)
	}
	if _, err := a.src.ReadAt(raw.Data(), a.dataOffset+meta.Offset); err != nil {
		return nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}
	return raw, nil
}

// ReadStateDict reads all tensors into a state dictionary.
func (a *archive) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	stateDict := make(map[string]*tensor.RawTensor, len(a.header.Tensors))
	for _, meta := range a.header.Tensors {
		raw, err := a.ReadTensor(meta.Name)
		if err != nil {
			return nil, err
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, nil
}

// Reader reads .gaze files with positioned reads on an *os.File.
type Reader struct {
	*archive
	file *os.File
}

// NewReader opens a .gaze file, validating its header and checksum.
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, ReaderOptions{})
}

// NewReaderWithOptions opens a .gaze file with custom options.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	a, err := openArchive(file, info.Size(), opts)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &Reader{archive: a, file: file}, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

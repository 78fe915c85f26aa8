package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// Version is the library version recorded in every header.
const Version = "0.3.0"

// Writer writes models in .gaze format.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a new .gaze file writer.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// WriteStateDict writes a state dictionary with a fresh checkpoint id.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	_, err := WriteTo(w.file, stateDict, modelType, metadata)
	return err
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// WriteTo writes a state dictionary in .gaze format to out and returns the
// header it wrote. Tensors are laid out in name order.
func WriteTo(out io.Writer, stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) (Header, error) {
	header := Header{
		FormatVersion:  FormatVersion,
		GazenetVersion: Version,
		ModelType:      modelType,
		CheckpointID:   uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Tensors:        make([]TensorMeta, 0, len(stateDict)),
		Metadata:       metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	var data bytes.Buffer
	for _, name := range slices.Sorted(maps.Keys(stateDict)) {
		if err := ValidateTensorName(name); err != nil {
			return Header{}, err
		}
		raw := stateDict[name]
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  raw.DType().String(),
			Shape:  slices.Clone([]int(raw.Shape())),
			Offset: int64(data.Len()),
			Size:   int64(raw.ByteSize()),
		})
		data.Write(raw.Data())
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return Header{}, fmt.Errorf("failed to marshal header: %w", err)
	}

	fixed := fixedHeader{
		version:    FormatVersion,
		headerSize: uint64(len(headerJSON)),
		dataSize:   uint64(data.Len()),
		checksum:   ComputeChecksum(data.Bytes()),
	}
	if len(header.Metadata) > 0 {
		fixed.flags |= FlagHasMetadata
	}

	padding := dataOffset(int64(len(headerJSON))) - int64(FixedHeaderSize) - int64(len(headerJSON))
	for _, chunk := range [][]byte{fixed.encode(), headerJSON, make([]byte, padding), data.Bytes()} {
		if _, err := out.Write(chunk); err != nil {
			return Header{}, fmt.Errorf("failed to write checkpoint: %w", err)
		}
	}

	return header, nil
}

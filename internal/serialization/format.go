package serialization

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "GAZE"
	FormatVersion   = 2
	FixedHeaderSize = 64   // 0x40 bytes
	HeaderAlignment = 64   // tensor data starts on a 64-byte boundary
	ChecksumSize    = 32   // SHA-256
	ChecksumOffset  = 0x20 // checksum position in the fixed header
)

// Flags for the .gaze format.
const (
	FlagHasMetadata uint32 = 1 << 0 // metadata map is non-empty
)

// Header represents the JSON header in a .gaze file.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	GazenetVersion string            `json:"gazenet_version"` // library version that wrote the file
	ModelType      string            `json:"model_type"`
	CheckpointID   string            `json:"checkpoint_id"` // random UUID per write
	CreatedAt      time.Time         `json:"created_at"`
	Tensors        []TensorMeta      `json:"tensors"` // sorted by name
	Metadata       map[string]string `json:"metadata"`
}

// TensorMeta describes a tensor in the .gaze file.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "stage1.0.conv1.weight"
	DType  string `json:"dtype"`  // "float32" or "float64"
	Shape  []int  `json:"shape"`  // tensor shape
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// fixedHeader is the decoded 64-byte prefix of a .gaze file.
type fixedHeader struct {
	version    uint32
	flags      uint32
	headerSize uint64
	dataSize   uint64
	checksum   [ChecksumSize]byte
}

func (h fixedHeader) encode() []byte {
	b := make([]byte, FixedHeaderSize)
	copy(b[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(b[4:8], h.version)
	binary.LittleEndian.PutUint32(b[8:12], h.flags)
	// 0x0C-0x0F reserved
	binary.LittleEndian.PutUint64(b[16:24], h.headerSize)
	binary.LittleEndian.PutUint64(b[24:32], h.dataSize)
	copy(b[ChecksumOffset:ChecksumOffset+ChecksumSize], h.checksum[:])
	return b
}

func decodeFixedHeader(b []byte) (fixedHeader, error) {
	var h fixedHeader
	if len(b) < FixedHeaderSize {
		return h, fmt.Errorf("%w: %d bytes, need %d", ErrTruncated, len(b), FixedHeaderSize)
	}
	if string(b[0:4]) != MagicBytes {
		return h, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, b[0:4], MagicBytes)
	}
	h.version = binary.LittleEndian.Uint32(b[4:8])
	if h.version != FormatVersion {
		return h, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, h.version, FormatVersion)
	}
	h.flags = binary.LittleEndian.Uint32(b[8:12])
	h.headerSize = binary.LittleEndian.Uint64(b[16:24])
	h.dataSize = binary.LittleEndian.Uint64(b[24:32])
	copy(h.checksum[:], b[ChecksumOffset:ChecksumOffset+ChecksumSize])
	if h.headerSize > MaxHeaderSize {
		return h, fmt.Errorf("%w: %d bytes, max %d", ErrHeaderTooLarge, h.headerSize, MaxHeaderSize)
	}
	return h, nil
}

// dataOffset returns where tensor data starts for a JSON header of headerSize bytes.
func dataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}

// parseDType converts a header dtype string to tensor.DataType.
func parseDType(s string) (tensor.DataType, error) {
	dt, ok := tensor.ParseDataType(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
	}
	return dt, nil
}

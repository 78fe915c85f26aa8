package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

func rawOf(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

func sampleStateDict(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	return map[string]*tensor.RawTensor{
		"stem.weight":     rawOf(t, tensor.Shape{2, 1, 1, 1}, 1.5, -2),
		"bn.running_mean": rawOf(t, tensor.Shape{3}, 0.1, 0.2, 0.3),
		"fc.bias":         rawOf(t, tensor.Shape{1}, 7),
	}
}

func writeFile(t *testing.T, sd map[string]*tensor.RawTensor, metadata map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.gaze")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteStateDict(sd, "gazenet", metadata))
	require.NoError(t, w.Close())
	return path
}

// TestRoundTrip tests that both readers restore every tensor.
func TestRoundTrip(t *testing.T) {
	sd := sampleStateDict(t)
	path := writeFile(t, sd, map[string]string{"depth": "8"})

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	m, err := NewMmapReader(path)
	require.NoError(t, err)
	defer m.Close()

	for _, loaded := range []func() (map[string]*tensor.RawTensor, error){r.ReadStateDict, m.ReadStateDict} {
		got, err := loaded()
		require.NoError(t, err)
		require.Len(t, got, len(sd))
		for name, want := range sd {
			require.Contains(t, got, name)
			assert.Equal(t, want.Shape(), got[name].Shape(), name)
			assert.Equal(t, want.AsFloat32(), got[name].AsFloat32(), name)
		}
	}

	h := r.Header()
	assert.Equal(t, FormatVersion, h.FormatVersion)
	assert.Equal(t, "gazenet", h.ModelType)
	assert.Equal(t, Version, h.GazenetVersion)
	assert.Equal(t, "8", r.Metadata()["depth"])
	assert.Equal(t, FlagHasMetadata, r.Flags()&FlagHasMetadata)
	_, err = uuid.Parse(h.CheckpointID)
	assert.NoError(t, err)
	assert.Equal(t, h.CheckpointID, m.Header().CheckpointID)
	assert.Equal(t, r.Checksum(), m.Checksum())
}

// TestLayout tests sorted tensors, aligned data and distinct checkpoint ids.
func TestLayout(t *testing.T) {
	sd := sampleStateDict(t)
	var first, second bytes.Buffer
	h1, err := WriteTo(&first, sd, "gazenet", nil)
	require.NoError(t, err)
	h2, err := WriteTo(&second, sd, "gazenet", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"bn.running_mean", "fc.bias", "stem.weight"},
		[]string{h1.Tensors[0].Name, h1.Tensors[1].Name, h1.Tensors[2].Name})
	assert.Equal(t, int64(0), h1.Tensors[0].Offset)
	assert.Equal(t, int64(12), h1.Tensors[1].Offset)
	assert.Equal(t, int64(16), h1.Tensors[2].Offset)
	assert.NotEqual(t, h1.CheckpointID, h2.CheckpointID)

	b := first.Bytes()
	assert.Equal(t, MagicBytes, string(b[0:4]))
	headerSize := int64(binary.LittleEndian.Uint64(b[16:24]))
	dataSize := int64(binary.LittleEndian.Uint64(b[24:32]))
	assert.Equal(t, int64(24), dataSize)
	off := dataOffset(headerSize)
	assert.Zero(t, off%HeaderAlignment)
	assert.Equal(t, int64(len(b)), off+dataSize)
}

// TestTensorAccess tests single-tensor reads and missing names.
func TestTensorAccess(t *testing.T) {
	path := writeFile(t, sampleStateDict(t), nil)
	r, err := NewReader(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"bn.running_mean", "fc.bias", "stem.weight"}, r.TensorNames())
	raw, err := r.ReadTensor("fc.bias")
	require.NoError(t, err)
	assert.Equal(t, []float32{7}, raw.AsFloat32())

	_, err = r.ReadTensor("nope")
	assert.True(t, errors.Is(err, ErrTensorNotFound))

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	_, err = r.ReadTensor("fc.bias")
	assert.True(t, errors.Is(err, ErrClosed))
}

// TestCorruption tests that damaged files are rejected.
func TestCorruption(t *testing.T) {
	path := writeFile(t, sampleStateDict(t), nil)
	pristine, err := os.ReadFile(path)
	require.NoError(t, err)

	corrupt := func(t *testing.T, mutate func([]byte) []byte) string {
		t.Helper()
		b := mutate(bytes.Clone(pristine))
		p := filepath.Join(t.TempDir(), "bad.gaze")
		require.NoError(t, os.WriteFile(p, b, 0o600))
		return p
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"flipped data byte", func(b []byte) []byte { b[len(b)-1] ^= 0xFF; return b }, ErrChecksumMismatch},
		{"bad magic", func(b []byte) []byte { copy(b, "NOPE"); return b }, ErrInvalidMagic},
		{"future version", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:8], 3); return b }, ErrUnsupportedVersion},
		{"huge header", func(b []byte) []byte { binary.LittleEndian.PutUint64(b[16:24], MaxHeaderSize+1); return b }, ErrHeaderTooLarge},
		{"truncated", func(b []byte) []byte { return b[:len(b)-4] }, ErrTruncated},
		{"too short", func(b []byte) []byte { return b[:10] }, ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := corrupt(t, tt.mutate)

			_, err := NewReader(p)
			assert.True(t, errors.Is(err, tt.want), "reader: %v", err)

			_, err = NewMmapReader(p)
			assert.True(t, errors.Is(err, tt.want), "mmap: %v", err)
		})
	}

	// Skipping the checksum accepts flipped data.
	p := corrupt(t, tests[0].mutate)
	r, err := NewReaderWithOptions(p, ReaderOptions{SkipChecksumValidation: true})
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

// TestWriteTo_InvalidName tests that unsafe names are refused at write time.
func TestWriteTo_InvalidName(t *testing.T) {
	sd := map[string]*tensor.RawTensor{"../escape": rawOf(t, tensor.Shape{1}, 1)}
	_, err := WriteTo(&bytes.Buffer{}, sd, "gazenet", nil)
	assert.True(t, errors.Is(err, ErrInvalidTensorName))
}

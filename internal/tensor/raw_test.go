package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRawTensor_ZeroCopy tests that typed views share the byte buffer.
func TestRawTensor_ZeroCopy(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Float32, CPU)
	require.NoError(t, err)
	assert.Equal(t, 24, raw.ByteSize())
	assert.Equal(t, []int{2, 1}, raw.Strides())

	raw.AsFloat32()[0] = 42
	assert.Equal(t, float32(42), raw.AsFloat32()[0])
	assert.Panics(t, func() { raw.AsFloat64() })

	_, err = NewRaw(Shape{3, 0}, Float32, CPU)
	assert.Error(t, err)
}

// TestRawTensor_CloneAndView tests deep copies and shared views.
func TestRawTensor_CloneAndView(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float64, CPU)
	require.NoError(t, err)
	raw.AsFloat64()[5] = 7

	clone := raw.Clone()
	clone.AsFloat64()[5] = 1
	assert.Equal(t, 7.0, raw.AsFloat64()[5])

	view, err := raw.View(Shape{6})
	require.NoError(t, err)
	view.AsFloat64()[0] = 3
	assert.Equal(t, 3.0, raw.AsFloat64()[0])

	_, err = raw.View(Shape{4})
	assert.Error(t, err)
}

// TestNewRawFromBytes tests size checks on external buffers.
func TestNewRawFromBytes(t *testing.T) {
	data := make([]byte, 16)
	raw, err := NewRawFromBytes(data, Shape{2, 2}, Float32, CPU)
	require.NoError(t, err)
	data[0] = 1
	assert.Zero(t, raw.Data()[0], "bytes must be copied")

	_, err = NewRawFromBytes(data, Shape{2, 3}, Float32, CPU)
	assert.Error(t, err)
}

package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShape_Basics tests element counts, validation and strides.
func TestShape_Basics(t *testing.T) {
	s := Shape{8, 64, 9, 15}
	assert.Equal(t, 8*64*9*15, s.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.NoError(t, s.Validate())
	assert.Error(t, Shape{3, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
	assert.Equal(t, []int{8640, 135, 15, 1}, s.ComputeStrides())

	c := s.Clone()
	c[0] = 1
	assert.Equal(t, 8, s[0], "Clone must not share storage")
	assert.True(t, s.Equal(Shape{8, 64, 9, 15}))
	assert.False(t, s.Equal(c))
}

// TestBroadcastShapes tests NumPy broadcasting rules.
func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      Shape
		expected  Shape
		broadcast bool
	}{
		{Shape{3, 4}, Shape{3, 4}, Shape{3, 4}, false},
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{1, 64, 1, 1}, Shape{8, 64, 9, 15}, Shape{8, 64, 9, 15}, true},
		{Shape{2}, Shape{4, 2}, Shape{4, 2}, true},
	}
	for _, tt := range tests {
		got, needs, err := BroadcastShapes(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
		assert.Equal(t, tt.broadcast, needs)
	}

	_, _, err := BroadcastShapes(Shape{3, 4}, Shape{3, 5})
	assert.Error(t, err)
}

// TestConvOutputSize tests the backbone's spatial sizes.
func TestConvOutputSize(t *testing.T) {
	assert.Equal(t, 36, ConvOutputSize(36, 3, 1, 1))
	assert.Equal(t, 18, ConvOutputSize(36, 3, 2, 1))
	assert.Equal(t, 30, ConvOutputSize(60, 3, 2, 1))
	assert.Equal(t, 9, ConvOutputSize(18, 3, 2, 1))
	assert.Equal(t, 15, ConvOutputSize(30, 3, 2, 1))
	assert.Equal(t, 4, ConvOutputSize(9, 2, 2, 0))
}

// TestTriu tests triangle sizes and row-major slot order.
func TestTriu(t *testing.T) {
	assert.Equal(t, 2080, TriuSize(64))
	assert.Equal(t, 6, TriuSize(3))

	// d=3: (0,0)(0,1)(0,2)(1,1)(1,2)(2,2)
	k := 0
	for r := 0; r < 3; r++ {
		for c := r; c < 3; c++ {
			assert.Equal(t, k, TriuIndex(r, c, 3), "(%d,%d)", r, c)
			k++
		}
	}

	// Last diagonal entry maps to the last slot.
	assert.Equal(t, 2079, TriuIndex(63, 63, 64))
	assert.Equal(t, 64, TriuIndex(1, 1, 64))
}

// TestDataType tests names and sizes.
func TestDataType(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, "float32", Float32.String())

	dt, ok := ParseDataType("float64")
	assert.True(t, ok)
	assert.Equal(t, Float64, dt)
	_, ok = ParseDataType("int8")
	assert.False(t, ok)
}

package cpu

import (
	"testing"

	"github.com/gaze-ml/gazenet/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestMaxPool2D_Basic(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 4, 4}, seq(16)...)

	output := backend.MaxPool2D(input, 2, 2)

	assert.True(t, output.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.Equal(t, []float32{6, 8, 14, 16}, output.AsFloat32())
}

func TestMaxPool2D_OddSize(t *testing.T) {
	// The trailing row/column that does not fill a window is dropped (floor).
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 3, 5}, seq(15)...)

	output := backend.MaxPool2D(input, 2, 2)

	assert.True(t, output.Shape().Equal(tensor.Shape{1, 1, 1, 2}))
	assert.Equal(t, []float32{7, 9}, output.AsFloat32())
}

func TestMaxPool2D_Negative(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 2, 2}, -4, -3, -2, -1)

	assert.Equal(t, []float32{-1}, backend.MaxPool2D(input, 2, 2).AsFloat32())
}

func TestGlobalAvgPool2D(t *testing.T) {
	backend := New()
	// Two samples, two channels of 2x2.
	input := rawFrom(t, tensor.Shape{2, 2, 2, 2}, seq(16)...)

	output := backend.GlobalAvgPool2D(input)

	assert.True(t, output.Shape().Equal(tensor.Shape{2, 2, 1, 1}))
	assert.Equal(t, []float32{2.5, 6.5, 10.5, 14.5}, output.AsFloat32())
}

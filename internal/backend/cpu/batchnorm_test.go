package cpu

import (
	"math"
	"testing"

	"github.com/gaze-ml/gazenet/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestBatchNorm2D_Affine(t *testing.T) {
	backend := New()

	// One sample, two channels of two pixels.
	input := rawFrom(t, tensor.Shape{1, 2, 1, 2}, 1, 3, 10, 20)
	mean := rawFrom(t, tensor.Shape{2}, 2, 15)
	variance := rawFrom(t, tensor.Shape{2}, 1, 25)
	weight := rawFrom(t, tensor.Shape{2}, 2, 1)
	bias := rawFrom(t, tensor.Shape{2}, 0.5, -1)

	out := backend.BatchNorm2D(input, mean, variance, weight, bias, 0).AsFloat32()

	// channel 0: (x-2)/1*2+0.5 ; channel 1: (x-15)/5*1-1
	assert.InDeltaSlice(t, []float32{-1.5, 2.5, -2, 0}, out, 1e-6)
}

func TestBatchNorm2D_Eps(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 1, 1}, 1)
	zero := rawFrom(t, tensor.Shape{1}, 0)
	one := rawFrom(t, tensor.Shape{1}, 1)

	out := backend.BatchNorm2D(input, zero, zero, one, zero, 1e-5).AsFloat32()
	assert.InDelta(t, 1/math.Sqrt(1e-5), out[0], 1e-1)
}

func TestBatchNorm2D_ShapeMismatch(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 2, 1, 1}, 1, 2)
	p := rawFrom(t, tensor.Shape{3}, 1, 1, 1)

	assert.Panics(t, func() { backend.BatchNorm2D(input, p, p, p, p, 1e-5) })
}

func TestChannelMoments(t *testing.T) {
	backend := New()
	// Two samples, two channels, two pixels. Channel 0 holds 1,2 | 3,4;
	// channel 1 holds 5,5 | 5,5.
	input := rawFrom(t, tensor.Shape{2, 2, 1, 2}, 1, 2, 5, 5, 3, 4, 5, 5)

	mean, variance := backend.ChannelMoments(input)

	assert.InDeltaSlice(t, []float32{2.5, 5}, mean.AsFloat32(), 1e-6)
	assert.InDeltaSlice(t, []float32{1.25, 0}, variance.AsFloat32(), 1e-6)
}

// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaze-ml/gazenet/backend/cpu"
	"github.com/gaze-ml/gazenet/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.Backend)(nil)
}

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, tensor.CPU, raw.Device())
	assert.Equal(t, 24, raw.ByteSize())
	assert.Len(t, raw.AsFloat32(), 6)
}

// TestTensorAPI tests creation and arithmetic through the public package.
func TestTensorAPI(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	y := tensor.Full[float32](tensor.Shape{1, 3}, 10, backend)

	z := x.Add(y)
	assert.Equal(t, []float32{11, 12, 13, 14, 15, 16}, z.Data())

	cat := tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{x, tensor.Zeros[float32](tensor.Shape{2, 1}, backend)}, 1)
	assert.Equal(t, tensor.Shape{2, 4}, cat.Shape())

	_, err = tensor.FromSlice([]float32{1, 2}, tensor.Shape{3}, backend)
	assert.Error(t, err)
}

// TestSeededCreation tests that a fixed seed reproduces random tensors.
func TestSeededCreation(t *testing.T) {
	backend := cpu.New()
	a := tensor.Randn[float32](tensor.Shape{4, 4}, rand.New(rand.NewSource(3)), backend)
	b := tensor.Randn[float32](tensor.Shape{4, 4}, rand.New(rand.NewSource(3)), backend)
	assert.Equal(t, a.Data(), b.Data())

	u := tensor.Uniform[float32](tensor.Shape{100}, -0.5, 0.5, rand.New(rand.NewSource(3)), backend)
	for _, v := range u.Data() {
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
	}
}

// TestShapeHelpers tests the convolution and triangle helpers.
func TestShapeHelpers(t *testing.T) {
	assert.Equal(t, 18, tensor.ConvOutputSize(36, 3, 2, 1))
	assert.Equal(t, 2080, tensor.TriuSize(64))
	assert.Equal(t, 0, tensor.TriuIndex(0, 0, 4))
	assert.Equal(t, 4, tensor.TriuIndex(1, 1, 4))
	assert.Equal(t, 9, tensor.TriuIndex(3, 3, 4))

	out, needs, err := tensor.BroadcastShapes(tensor.Shape{2, 1, 5}, tensor.Shape{3, 1})
	require.NoError(t, err)
	assert.True(t, needs)
	assert.Equal(t, tensor.Shape{2, 3, 5}, out)
}

package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/gaze-ml/gazenet/internal/backend/cpu"
	"github.com/gaze-ml/gazenet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreation tests Zeros, Ones, Full and FromSlice.
func TestCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0, 0}, tensor.Zeros[float32](tensor.Shape{3}, backend).Data())
	assert.Equal(t, []float64{1, 1}, tensor.Ones[float64](tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float32{2.5, 2.5}, tensor.Full[float32](tensor.Shape{1, 2}, 2.5, backend).Data())

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	assert.Equal(t, float32(3), x.At(1, 0))
	assert.Equal(t, tensor.Float32, x.DType())

	_, err = tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend)
	assert.Error(t, err)
}

// TestRandom_Seeded tests that a fixed seed reproduces random tensors.
func TestRandom_Seeded(t *testing.T) {
	backend := cpu.New()
	shape := tensor.Shape{4, 5}

	a := tensor.Randn[float32](shape, rand.New(rand.NewSource(1)), backend)
	b := tensor.Randn[float32](shape, rand.New(rand.NewSource(1)), backend)
	c := tensor.Randn[float32](shape, rand.New(rand.NewSource(2)), backend)
	assert.Equal(t, a.Data(), b.Data())
	assert.NotEqual(t, a.Data(), c.Data())

	u := tensor.Uniform[float32](shape, -0.5, 0.5, rand.New(rand.NewSource(1)), backend)
	for _, v := range u.Data() {
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
	}
}

// TestAccessors tests At, Set, Item and Clone.
func TestAccessors(t *testing.T) {
	backend := cpu.New()
	x := tensor.Zeros[float32](tensor.Shape{2, 3, 4}, backend)

	x.Set(9, 1, 2, 3)
	assert.Equal(t, float32(9), x.At(1, 2, 3))
	assert.Equal(t, float32(9), x.Data()[23])
	assert.Panics(t, func() { x.At(2, 0, 0) })
	assert.Panics(t, func() { x.At(0, 0) })

	clone := x.Clone()
	clone.Set(1, 1, 2, 3)
	assert.Equal(t, float32(9), x.At(1, 2, 3))

	assert.Equal(t, float32(4), tensor.Full[float32](tensor.Shape{1}, 4, backend).Item())
	assert.Panics(t, func() { x.Item() })
	assert.Contains(t, x.String(), "[2 3 4]")
}

// TestOps tests backend-delegating methods.
func TestOps(t *testing.T) {
	backend := cpu.New()
	a, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	row, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{1, 3}, backend)
	require.NoError(t, err)

	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, a.Add(row).Data())
	assert.Equal(t, []float32{-9, -18, -27, -6, -15, -24}, a.Sub(row).Data())
	assert.Equal(t, []float32{10, 40, 90, 40, 100, 180}, a.Mul(row).Data())
	assert.Equal(t, []float32{2, 4, 6, 8, 10, 12}, a.MulScalar(2).Data())

	// [2,3] @ [3,2]
	prod := a.MatMul(a.T())
	assert.Equal(t, tensor.Shape{2, 2}, prod.Shape())
	assert.Equal(t, []float32{14, 32, 32, 77}, prod.Data())

	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, a.T().Data())
	assert.Equal(t, tensor.Shape{3, 2}, a.Reshape(3, 2).Shape())
	assert.Equal(t, tensor.Shape{2, 3}, a.Reshape(2, 1, 3).Flatten().Shape())
	assert.Panics(t, func() { a.Reshape(4, 2) })
}

// TestCat tests concatenation along the feature dimension.
func TestCat(t *testing.T) {
	backend := cpu.New()
	features := tensor.Full[float32](tensor.Shape{2, 3}, 1, backend)
	pose := tensor.Full[float32](tensor.Shape{2, 2}, 2, backend)

	joined := tensor.Cat([]*tensor.Tensor[float32, *cpu.CPUBackend]{features, pose}, 1)
	assert.Equal(t, tensor.Shape{2, 5}, joined.Shape())
	assert.Equal(t, []float32{1, 1, 1, 2, 2, 1, 1, 1, 2, 2}, joined.Data())
	assert.Panics(t, func() { tensor.Cat[float32, *cpu.CPUBackend](nil, 0) })
}

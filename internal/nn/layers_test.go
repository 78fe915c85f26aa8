package nn

import (
	"testing"

	"github.com/gaze-ml/gazenet/internal/backend/cpu"
	"github.com/gaze-ml/gazenet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromSlice(t *testing.T, data []float32, shape tensor.Shape, backend *cpu.CPUBackend) *tensor.Tensor[float32, *cpu.CPUBackend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, backend)
	require.NoError(t, err)
	return x
}

func arange(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i + 1)
	}
	return out
}

// TestConv2D_Creation tests Conv2D layer creation.
func TestConv2D_Creation(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(3, 16, 3, 3, 1, 1, false, backend)

	assert.Equal(t, 3, conv.InChannels())
	assert.Equal(t, 16, conv.OutChannels())
	assert.True(t, conv.Weight().Tensor().Shape().Equal(tensor.Shape{16, 3, 3, 3}))
	assert.Nil(t, conv.Bias())
	assert.Len(t, conv.Parameters(), 1)
	assert.Len(t, conv.StateDict(), 1)

	withBias := NewConv2D(2080, 64, 1, 1, 1, 0, true, backend)
	assert.Len(t, withBias.Parameters(), 2)
	assert.True(t, withBias.Bias().Tensor().Shape().Equal(tensor.Shape{64}))
}

// TestConv2D_DefaultInitBound tests that default weights stay within 1/sqrt(fan_in).
func TestConv2D_DefaultInitBound(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(4, 8, 3, 3, 1, 1, true, backend)
	bound := float32(1 / 6.0) // fan_in = 36

	for _, p := range conv.Parameters() {
		for _, v := range p.Data() {
			assert.LessOrEqual(t, v, bound)
			assert.GreaterOrEqual(t, v, -bound)
		}
	}
}

// TestConv2D_ForwardShape tests forward pass output shape.
func TestConv2D_ForwardShape(t *testing.T) {
	backend := cpu.New()
	tests := []struct {
		name     string
		conv     *Conv2D[*cpu.CPUBackend]
		input    tensor.Shape
		expected tensor.Shape
	}{
		{"stem", NewConv2D(3, 16, 3, 3, 1, 1, false, backend), tensor.Shape{2, 3, 36, 60}, tensor.Shape{2, 16, 36, 60}},
		{"downsample", NewConv2D(16, 32, 3, 3, 2, 1, false, backend), tensor.Shape{2, 16, 36, 60}, tensor.Shape{2, 32, 18, 30}},
		{"projection", NewConv2D(32, 64, 1, 1, 2, 0, false, backend), tensor.Shape{1, 32, 18, 30}, tensor.Shape{1, 64, 9, 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.conv.Forward(tensor.Zeros[float32](tt.input, backend))
			assert.Equal(t, tt.expected, out.Shape())
			hw := tt.conv.ComputeOutputSize(tt.input[2], tt.input[3])
			assert.Equal(t, [2]int{tt.expected[2], tt.expected[3]}, hw)
		})
	}
}

// TestConv2D_Bias tests that the bias is broadcast over batch and space.
func TestConv2D_Bias(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(1, 2, 1, 1, 1, 0, true, backend)
	Fill(conv.Weight(), 2)
	copy(conv.Bias().Data(), []float32{1, -1})

	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}, backend)
	out := conv.Forward(x)

	assert.Equal(t, []float32{3, 5, 7, 9, 1, 3, 5, 7}, out.Data())
}

// TestConv2D_InvalidInput tests that wrong channel counts panic.
func TestConv2D_InvalidInput(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(3, 4, 3, 3, 1, 1, false, backend)

	assert.Panics(t, func() {
		conv.Forward(tensor.Zeros[float32](tensor.Shape{1, 2, 5, 5}, backend))
	})
	assert.Panics(t, func() {
		conv.Forward(tensor.Zeros[float32](tensor.Shape{3, 5, 5}, backend))
	})
	assert.Panics(t, func() { NewConv2D(0, 4, 3, 3, 1, 1, false, backend) })
	assert.Panics(t, func() { NewConv2D(3, 4, 3, 3, 0, 1, false, backend) })
}

// TestLinear_Forward tests y = x @ W.T + b with known values.
func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	fc := NewLinear(2, 2, backend)
	copy(fc.Weight().Data(), []float32{1, 2, 3, 4})
	Fill(fc.Bias(), 1)

	x := fromSlice(t, []float32{1, 1, 2, 0}, tensor.Shape{2, 2}, backend)
	out := fc.Forward(x)

	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{4, 8, 3, 7}, out.Data())
}

// TestLinear_InvalidInput tests that wrong feature counts panic.
func TestLinear_InvalidInput(t *testing.T) {
	backend := cpu.New()
	fc := NewLinear(64, 62, backend)

	assert.Panics(t, func() {
		fc.Forward(tensor.Zeros[float32](tensor.Shape{2, 63}, backend))
	})
	assert.Panics(t, func() {
		fc.Forward(tensor.Zeros[float32](tensor.Shape{2, 64, 1}, backend))
	})
}

// TestActivations tests ReLU and Sigmoid modules.
func TestActivations(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{-2, 0, 3}, tensor.Shape{3}, backend)

	assert.Equal(t, []float32{0, 0, 3}, NewReLU[*cpu.CPUBackend]().Forward(x).Data())

	s := NewSigmoid[*cpu.CPUBackend]().Forward(x).Data()
	assert.InDelta(t, 0.1192, s[0], 1e-4)
	assert.InDelta(t, 0.5, s[1], 1e-6)
	assert.InDelta(t, 0.9526, s[2], 1e-4)

	assert.Nil(t, NewReLU[*cpu.CPUBackend]().Parameters())
	assert.Empty(t, NewSigmoid[*cpu.CPUBackend]().StateDict())
}

// TestPooling tests MaxPool2D, AdaptiveAvgPool2D and Flatten.
func TestPooling(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, arange(16), tensor.Shape{1, 1, 4, 4}, backend)

	maxed := NewMaxPool2D(2, 2, backend).Forward(x)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, maxed.Shape())
	assert.Equal(t, []float32{6, 8, 14, 16}, maxed.Data())

	avg := NewAdaptiveAvgPool2D(backend).Forward(x)
	assert.Equal(t, tensor.Shape{1, 1, 1, 1}, avg.Shape())
	assert.InDelta(t, 8.5, avg.Data()[0], 1e-6)

	flat := NewFlatten[*cpu.CPUBackend]().Forward(tensor.Zeros[float32](tensor.Shape{2, 64, 1, 1}, backend))
	assert.Equal(t, tensor.Shape{2, 64}, flat.Shape())

	assert.Equal(t, [2]int{4, 7}, NewMaxPool2D(2, 2, backend).ComputeOutputSize(9, 15))
}

// TestMSELoss tests the mean squared error metric.
func TestMSELoss(t *testing.T) {
	backend := cpu.New()
	mse := NewMSELoss(backend)

	pred := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	target := fromSlice(t, []float32{1, 0, 3, 2}, tensor.Shape{2, 2}, backend)

	loss := mse.Forward(pred, target)
	assert.Equal(t, tensor.Shape{1}, loss.Shape())
	assert.InDelta(t, 2.0, loss.Item(), 1e-6) // (0 + 4 + 0 + 4) / 4
	assert.Nil(t, mse.Parameters())

	assert.Panics(t, func() {
		mse.Forward(pred, fromSlice(t, []float32{1, 2}, tensor.Shape{2, 1}, backend))
	})
}

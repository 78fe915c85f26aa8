package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// FanMode selects which fan a variance-scaling initializer preserves.
type FanMode int

// Fan modes for KaimingNormal.
const (
	FanIn  FanMode = iota // preserve variance in the forward pass
	FanOut                // preserve variance in the backward pass
)

// Fans returns fan_in and fan_out of a weight shape:
//   - [out, in, kh, kw] (convolution): in*kh*kw, out*kh*kw
//   - [out, in] (linear): in, out
//   - [n]: n, n
func Fans(shape tensor.Shape) (fanIn, fanOut int) {
	switch len(shape) {
	case 1:
		return shape[0], shape[0]
	case 2:
		return shape[1], shape[0]
	case 4:
		receptive := shape[2] * shape[3]
		return shape[1] * receptive, shape[0] * receptive
	default:
		panic(fmt.Sprintf("init: unsupported weight rank %d", len(shape)))
	}
}

// DefaultUniform creates the default weight for a layer with the given fan_in:
// U(-1/sqrt(fan_in), 1/sqrt(fan_in)), which is what Kaiming-uniform with
// a=sqrt(5) reduces to. Biases of convolutions and linear layers use the same bound.
func DefaultUniform[B tensor.Backend](fanIn int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := 1 / math.Sqrt(float64(fanIn))
	return tensor.Uniform[float32](shape, -bound, bound, rng, backend)
}

// KaimingNormal refills p from N(0, 2/fan) where fan is chosen by mode
// (He et al., 2015, ReLU gain).
func KaimingNormal[B tensor.Backend](p *Parameter[B], mode FanMode, rng *rand.Rand) {
	fanIn, fanOut := Fans(p.Tensor().Shape())
	fan := fanIn
	if mode == FanOut {
		fan = fanOut
	}
	Normal(p, 0, math.Sqrt(2.0/float64(fan)), rng)
}

// Normal refills p from N(mean, std²).
func Normal[B tensor.Backend](p *Parameter[B], mean, std float64, rng *rand.Rand) {
	t := p.Tensor()
	src := tensor.Randn[float32](t.Shape(), rng, t.Backend()).Data()
	dst := p.Data()
	for i, v := range src {
		dst[i] = float32(mean + std*float64(v))
	}
}

// UniformFill refills p from U(-bound, bound).
func UniformFill[B tensor.Backend](p *Parameter[B], bound float64, rng *rand.Rand) {
	t := p.Tensor()
	copy(p.Data(), tensor.Uniform[float32](t.Shape(), -bound, bound, rng, t.Backend()).Data())
}

// Fill sets every element of p to value.
func Fill[B tensor.Backend](p *Parameter[B], value float32) {
	data := p.Data()
	for i := range data {
		data[i] = value
	}
}

// Zeros creates a tensor filled with zeros.
// This is commonly used for bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}

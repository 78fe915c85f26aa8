package cpu

import (
	"fmt"
	"math"

	"github.com/gaze-ml/gazenet/internal/parallel"
	"github.com/gaze-ml/gazenet/internal/tensor"
)

// BatchNorm2D normalizes every channel of an [N, C, H, W] tensor:
//
//	y = (x - mean[c]) / sqrt(variance[c] + eps) * weight[c] + bias[c]
//
// mean, variance, weight and bias must all have shape [C].
func (cpu *CPUBackend) BatchNorm2D(input, mean, variance, weight, bias *tensor.RawTensor, eps float64) *tensor.RawTensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	C := shape[1]
	for name, p := range map[string]*tensor.RawTensor{"mean": mean, "variance": variance, "weight": weight, "bias": bias} {
		if !p.Shape().Equal(tensor.Shape{C}) {
			panic(fmt.Sprintf("batchnorm2d: %s shape %v, expected [%d]", name, p.Shape(), C))
		}
		if p.DType() != input.DType() {
			panic(fmt.Sprintf("batchnorm2d: %s dtype %s, expected %s", name, p.DType(), input.DType()))
		}
	}

	output := cpu.newResult("batchnorm2d", shape, input.DType())
	plane := shape[2] * shape[3]

	switch input.DType() {
	case tensor.Float32:
		batchNorm(output.AsFloat32(), input.AsFloat32(), mean.AsFloat32(), variance.AsFloat32(),
			weight.AsFloat32(), bias.AsFloat32(), shape[0], C, plane, eps, cpu.par)
	case tensor.Float64:
		batchNorm(output.AsFloat64(), input.AsFloat64(), mean.AsFloat64(), variance.AsFloat64(),
			weight.AsFloat64(), bias.AsFloat64(), shape[0], C, plane, eps, cpu.par)
	default:
		panic(fmt.Sprintf("batchnorm2d: unsupported dtype %s", input.DType()))
	}

	return output
}

func batchNorm[T float](out, in, mean, variance, weight, bias []T, N, C, plane int, eps float64, cfg parallel.Config) {
	parallel.ForBatch(N, C, func(n, c int) {
		// Fold normalization and affine transform into y = x*scale + shift.
		scale := float64(weight[c]) / math.Sqrt(float64(variance[c])+eps)
		shift := float64(bias[c]) - float64(mean[c])*scale
		base := (n*C + c) * plane
		for i := base; i < base+plane; i++ {
			out[i] = T(float64(in[i])*scale + shift)
		}
	}, cfg)
}

// ChannelMoments returns the per-channel mean and biased variance of an
// [N, C, H, W] tensor, reduced over the N, H and W axes.
func (cpu *CPUBackend) ChannelMoments(input *tensor.RawTensor) (mean, variance *tensor.RawTensor) {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("channel_moments: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	C := shape[1]
	mean = cpu.newResult("channel_moments", tensor.Shape{C}, input.DType())
	variance = cpu.newResult("channel_moments", tensor.Shape{C}, input.DType())
	plane := shape[2] * shape[3]

	switch input.DType() {
	case tensor.Float32:
		channelMoments(mean.AsFloat32(), variance.AsFloat32(), input.AsFloat32(), shape[0], C, plane)
	case tensor.Float64:
		channelMoments(mean.AsFloat64(), variance.AsFloat64(), input.AsFloat64(), shape[0], C, plane)
	default:
		panic(fmt.Sprintf("channel_moments: unsupported dtype %s", input.DType()))
	}

	return mean, variance
}

// channelMoments uses two passes in float64 to keep the variance stable.
func channelMoments[T float](mean, variance, in []T, N, C, plane int) {
	count := float64(N * plane)
	for c := 0; c < C; c++ {
		var sum float64
		for n := 0; n < N; n++ {
			for _, v := range in[(n*C+c)*plane : (n*C+c+1)*plane] {
				sum += float64(v)
			}
		}
		mu := sum / count

		var sq float64
		for n := 0; n < N; n++ {
			for _, v := range in[(n*C+c)*plane : (n*C+c+1)*plane] {
				d := float64(v) - mu
				sq += d * d
			}
		}
		mean[c] = T(mu)
		variance[c] = T(sq / count)
	}
}

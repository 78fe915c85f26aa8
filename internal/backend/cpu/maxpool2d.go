package cpu

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/parallel"
	"github.com/gaze-ml/gazenet/internal/tensor"
)

// MaxPool2D performs 2D max pooling without padding.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width = (width - kernelSize) / stride + 1
//
// Example (2x2 pool, stride=2):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N, C, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]

	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if kernelSize > H || kernelSize > W {
		panic(fmt.Sprintf("maxpool2d: kernel size %d too large for input %dx%d", kernelSize, H, W))
	}

	HOut := tensor.ConvOutputSize(H, kernelSize, stride, 0)
	WOut := tensor.ConvOutputSize(W, kernelSize, stride, 0)

	output := cpu.newResult("maxpool2d", tensor.Shape{N, C, HOut, WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		maxpool2d(output.AsFloat32(), input.AsFloat32(), N, C, H, W, HOut, WOut, kernelSize, stride, cpu.par)
	case tensor.Float64:
		maxpool2d(output.AsFloat64(), input.AsFloat64(), N, C, H, W, HOut, WOut, kernelSize, stride, cpu.par)
	default:
		panic(fmt.Sprintf("maxpool2d: unsupported dtype %s", input.DType()))
	}

	return output
}

func maxpool2d[T float](out, in []T, N, C, H, W, HOut, WOut, k, stride int, cfg parallel.Config) {
	parallel.ForBatch(N, C, func(n, c int) {
		src := in[(n*C+c)*H*W : (n*C+c+1)*H*W]
		dst := out[(n*C+c)*HOut*WOut : (n*C+c+1)*HOut*WOut]
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				h0, w0 := oh*stride, ow*stride
				best := src[h0*W+w0]
				for kh := 0; kh < k; kh++ {
					for kw := 0; kw < k; kw++ {
						if v := src[(h0+kh)*W+w0+kw]; v > best {
							best = v
						}
					}
				}
				dst[oh*WOut+ow] = best
			}
		}
	}, cfg)
}

// GlobalAvgPool2D averages each channel over its spatial extent:
// [N, C, H, W] → [N, C, 1, 1].
func (cpu *CPUBackend) GlobalAvgPool2D(input *tensor.RawTensor) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("global_avgpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N, C := inputShape[0], inputShape[1]
	plane := inputShape[2] * inputShape[3]

	output := cpu.newResult("global_avgpool2d", tensor.Shape{N, C, 1, 1}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		planeMeans(output.AsFloat32(), input.AsFloat32(), plane)
	case tensor.Float64:
		planeMeans(output.AsFloat64(), input.AsFloat64(), plane)
	default:
		panic(fmt.Sprintf("global_avgpool2d: unsupported dtype %s", input.DType()))
	}

	return output
}

// planeMeans writes the mean of every consecutive run of plane elements.
// Sums accumulate in float64 for both element types.
func planeMeans[T float](out, in []T, plane int) {
	for i := range out {
		var sum float64
		for _, v := range in[i*plane : (i+1)*plane] {
			sum += float64(v)
		}
		out[i] = T(sum / float64(plane))
	}
}

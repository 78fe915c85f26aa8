package cpu

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/parallel"
	"github.com/gaze-ml/gazenet/internal/tensor"
)

// Conv2D performs 2D convolution using im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Algorithm: Im2col
//  1. Transform input patches into rows of a column buffer (im2col)
//  2. Treat the kernel as a [C_out, C_in*K_h*K_w] matrix
//  3. Dot every kernel row with every patch row, one output channel per task
//  4. Write straight into the [N, C_out, H_out, W_out] layout
//
// Reference: "High Performance Convolutional Neural Networks for Document Processing"
// (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d or padding %d", stride, padding))
	}

	g := convGeometry{
		N:       inputShape[0],
		CIn:     inputShape[1],
		H:       inputShape[2],
		W:       inputShape[3],
		COut:    kernelShape[0],
		KH:      kernelShape[2],
		KW:      kernelShape[3],
		stride:  stride,
		padding: padding,
	}

	if g.CIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", g.CIn, kernelShape[1]))
	}
	if input.DType() != kernel.DType() {
		panic(fmt.Sprintf("conv2d: dtype mismatch %s vs %s", input.DType(), kernel.DType()))
	}

	g.HOut = tensor.ConvOutputSize(g.H, g.KH, stride, padding)
	g.WOut = tensor.ConvOutputSize(g.W, g.KW, stride, padding)
	if g.HOut <= 0 || g.WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", g.HOut, g.WOut))
	}

	output := cpu.newResult("conv2d", tensor.Shape{g.N, g.COut, g.HOut, g.WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		conv2d(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), g, cpu.par)
	case tensor.Float64:
		conv2d(output.AsFloat64(), input.AsFloat64(), kernel.AsFloat64(), g, cpu.par)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	return output
}

// convGeometry holds the dimensions of one convolution call.
type convGeometry struct {
	N, CIn, H, W    int
	COut, KH, KW    int
	HOut, WOut      int
	stride, padding int
}

func conv2d[T float](out, in, kernel []T, g convGeometry, cfg parallel.Config) {
	colWidth := g.CIn * g.KH * g.KW
	spatial := g.HOut * g.WOut
	colHeight := g.N * spatial

	colBuf := make([]T, colHeight*colWidth)
	im2col(colBuf, in, g)

	parallel.For(g.COut, func(co int) {
		kRow := kernel[co*colWidth : (co+1)*colWidth]
		for j := 0; j < colHeight; j++ {
			patch := colBuf[j*colWidth : (j+1)*colWidth]
			var sum T
			for k, kv := range kRow {
				sum += kv * patch[k]
			}
			n, p := j/spatial, j%spatial
			out[(n*g.COut+co)*spatial+p] = sum
		}
	}, cfg.WithMinChunkSize(1))
}

// im2col transforms input tensor into column matrix.
//
// Input: [N, C, H, W]
// Output: colBuf [N * H_out * W_out, C * K_h * K_w]
//
// Each row of colBuf is the flattened (zero-padded) patch under one output position.
func im2col[T float](colBuf, in []T, g convGeometry) {
	colWidth := g.CIn * g.KH * g.KW
	row := 0

	for n := 0; n < g.N; n++ {
		for oh := 0; oh < g.HOut; oh++ {
			for ow := 0; ow < g.WOut; ow++ {
				hStart := oh*g.stride - g.padding
				wStart := ow*g.stride - g.padding
				bufIdx := row * colWidth

				for c := 0; c < g.CIn; c++ {
					plane := (n*g.CIn + c) * g.H * g.W
					for kh := 0; kh < g.KH; kh++ {
						h := hStart + kh
						for kw := 0; kw < g.KW; kw++ {
							w := wStart + kw
							if h >= 0 && h < g.H && w >= 0 && w < g.W {
								colBuf[bufIdx] = in[plane+h*g.W+w]
							} else {
								colBuf[bufIdx] = 0
							}
							bufIdx++
						}
					}
				}

				row++
			}
		}
	}
}

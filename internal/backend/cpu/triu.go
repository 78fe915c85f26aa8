package cpu

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/parallel"
	"github.com/gaze-ml/gazenet/internal/tensor"
)

// TriuOuter computes second-order channel statistics at every location.
//
// For input x of shape [N, C, H, W] the result has shape [N, C(C+1)/2, H, W]
// and channel tensor.TriuIndex(r, c, C) holds x[:, r] * x[:, c] for
// 0 <= r <= c < C. Each output channel is written exactly once.
func (cpu *CPUBackend) TriuOuter(input *tensor.RawTensor) *tensor.RawTensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("triu_outer: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}

	N, C := shape[0], shape[1]
	plane := shape[2] * shape[3]
	output := cpu.newResult("triu_outer", tensor.Shape{N, tensor.TriuSize(C), shape[2], shape[3]}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		triuOuter(output.AsFloat32(), input.AsFloat32(), N, C, plane, cpu.par)
	case tensor.Float64:
		triuOuter(output.AsFloat64(), input.AsFloat64(), N, C, plane, cpu.par)
	default:
		panic(fmt.Sprintf("triu_outer: unsupported dtype %s", input.DType()))
	}

	return output
}

// triuOuter assigns one (sample, row) pair per task; row r owns the
// contiguous output channels TriuIndex(r, r) .. TriuIndex(r, C-1).
func triuOuter[T float](out, in []T, N, C, plane int, cfg parallel.Config) {
	P := tensor.TriuSize(C)
	parallel.ForBatch(N, C, func(n, r int) {
		xr := in[(n*C+r)*plane : (n*C+r+1)*plane]
		k := tensor.TriuIndex(r, r, C)
		for c := r; c < C; c++ {
			xc := in[(n*C+c)*plane : (n*C+c+1)*plane]
			dst := out[(n*P+k)*plane : (n*P+k+1)*plane]
			for i, v := range xr {
				dst[i] = v * xc[i]
			}
			k++
		}
	}, cfg)
}

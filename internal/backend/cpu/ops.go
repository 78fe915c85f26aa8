package cpu

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := cpu.newResult("mul_scalar", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		scaleInto(result.AsFloat32(), x.AsFloat32(), float32(scalar))
	case tensor.Float64:
		scaleInto(result.AsFloat64(), x.AsFloat64(), scalar)
	default:
		panic(fmt.Sprintf("mul_scalar: unsupported dtype %s", x.DType()))
	}
	return result
}

func scaleInto[T float](dst, src []T, s T) {
	for i, v := range src {
		dst[i] = v * s
	}
}

// binary dispatches an element-wise operation by dtype, taking the fast path
// when both operands already have the output shape.
func (cpu *CPUBackend) binary(op string, a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result := cpu.newResult(op, outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), outShape, a.Shape(), b.Shape(), needsBroadcast,
			func(x, y float32) float32 { return float32(f(float64(x), float64(y))) })
	case tensor.Float64:
		binaryKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), outShape, a.Shape(), b.Shape(), needsBroadcast, f)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}

	return result
}

func binaryKernel[T float](out, a, b []T, outShape, aShape, bShape tensor.Shape, needsBroadcast bool, f func(x, y T) T) {
	if !needsBroadcast {
		for i := range out {
			out[i] = f(a[i], b[i])
		}
		return
	}

	aStr := broadcastStrides(aShape, outShape)
	bStr := broadcastStrides(bShape, outShape)
	ndim := len(outShape)
	idx := make([]int, ndim)
	ai, bi := 0, 0
	for i := range out {
		out[i] = f(a[ai], b[bi])
		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			ai += aStr[d]
			bi += bStr[d]
			if idx[d] < outShape[d] {
				break
			}
			ai -= aStr[d] * outShape[d]
			bi -= bStr[d] * outShape[d]
			idx[d] = 0
		}
	}
}

// broadcastStrides aligns src to out from the right; broadcast dimensions get stride 0.
func broadcastStrides(src, out tensor.Shape) []int {
	strides := make([]int, len(out))
	srcStrides := src.ComputeStrides()
	offset := len(out) - len(src)
	for i, dim := range src {
		if dim != 1 {
			strides[offset+i] = srcStrides[i]
		}
	}
	return strides
}

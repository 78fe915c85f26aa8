// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/parallel"
	"github.com/gaze-ml/gazenet/internal/tensor"
)

// float is the set of element types the CPU kernels are instantiated for.
type float interface {
	~float32 | ~float64
}

// CPUBackend implements tensor operations on CPU. Convolution and the
// second-order kernels fan out over channels using internal/parallel.
type CPUBackend struct {
	device   tensor.Device
	par      parallel.Config
	features Features
}

// New creates a new CPU backend with parallelism sized to the host.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend using the given parallel configuration.
// parallel.Config{} (Enabled=false) gives fully sequential, deterministic
// scheduling.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		par:      cfg,
		features: DetectFeatures(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Features returns the SIMD capabilities detected on this host.
func (cpu *CPUBackend) Features() Features {
	return cpu.features
}

// Parallel returns the parallel execution configuration.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.par
}

// String describes the backend and its host capabilities.
func (cpu *CPUBackend) String() string {
	return fmt.Sprintf("%s(workers=%d, features=%s)", cpu.Name(), cpu.par.NumWorkers, cpu.features)
}

// newResult allocates an output tensor, panicking with the operation name on failure.
func (cpu *CPUBackend) newResult(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

// Reshape returns a tensor with the same data but different shape.
// The result shares the input's buffer.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	view, err := t.View(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

// Transpose transposes the tensor by permuting its dimensions.
// With no axes, all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := cpu.newResult("transpose", newShape, t.DType())

	// srcStrides[i] is the input stride of output axis i.
	inStrides := t.Strides()
	srcStrides := make([]int, ndim)
	for i, ax := range axes {
		srcStrides[i] = inStrides[ax]
	}

	switch t.DType() {
	case tensor.Float32:
		permute(result.AsFloat32(), t.AsFloat32(), newShape, srcStrides)
	case tensor.Float64:
		permute(result.AsFloat64(), t.AsFloat64(), newShape, srcStrides)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}

// permute walks the output in row-major order, reading src through srcStrides.
func permute[T float](dst, src []T, outShape tensor.Shape, srcStrides []int) {
	ndim := len(outShape)
	idx := make([]int, ndim)
	srcOff := 0
	for i := range dst {
		dst[i] = src[srcOff]
		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			srcOff += srcStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			srcOff -= srcStrides[d] * outShape[d]
			idx[d] = 0
		}
	}
}

// Cat concatenates tensors along dim.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors")
	}
	first := tensors[0].Shape()
	ndim := len(first)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dim %d out of range for %dD tensors", dim, ndim))
	}

	outShape := first.Clone()
	outShape[dim] = 0
	for i, t := range tensors {
		s := t.Shape()
		if len(s) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dims, expected %d", i, len(s), ndim))
		}
		if t.DType() != tensors[0].DType() {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), tensors[0].DType()))
		}
		for d := range s {
			if d != dim && s[d] != first[d] {
				panic(fmt.Sprintf("cat: tensor %d shape %v incompatible with %v along dim %d", i, s, first, d))
			}
		}
		outShape[dim] += s[dim]
	}

	result := cpu.newResult("cat", outShape, tensors[0].DType())

	// Work on bytes: every tensor contributes a contiguous run per outer index.
	outer := first[:dim].NumElements()
	elem := result.DType().Size()
	out := result.Data()
	pos := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			run := t.Shape()[dim:].NumElements() * elem
			pos += copy(out[pos:pos+run], t.Data()[o*run:(o+1)*run])
		}
	}

	return result
}

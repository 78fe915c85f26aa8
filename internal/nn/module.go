// Package nn implements the neural network modules gazenet models are built from.
//
// This package provides building blocks for constructing networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named weight tensors
//   - Layers: Conv2D, BatchNorm2D, Linear, pooling, activations
//   - Blocks: pre-activation BasicBlock, Stage, CovarianceGate, SpatialAttention
//   - Sequential: Container for stacking layers
//   - Apply: PyTorch-style recursive visitor used for weight initialization
//
// Modules are forward-only: parameters are set at construction, by an
// initializer pass, or from a checkpoint via LoadStateDict.
package nn

import (
	"fmt"
	"strings"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	stem := nn.NewSequential[B](
//	    nn.NewConv2D(3, 16, 3, 3, 1, 1, false, backend),
//	    nn.NewBatchNorm2D(16, backend),
//	    nn.NewReLU[B](),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	// Shape errors are programming errors and panic.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including those of nested modules. Activation functions return nil.
	Parameters() []*Parameter[B]

	// StateDict returns every tensor needed to restore the module
	// (parameters and buffers such as BatchNorm running statistics) keyed
	// by dotted name.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies tensors produced by StateDict back into the module.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// Container is implemented by modules that hold other modules.
type Container[B tensor.Backend] interface {
	Children() []Module[B]
}

// ModeSetter is implemented by modules whose behavior differs between
// training and evaluation (BatchNorm2D).
type ModeSetter interface {
	SetTraining(training bool)
}

// Apply calls fn on m and then, depth first, on every module nested in it.
//
//	nn.Apply[B](model, func(m nn.Module[B]) {
//	    if conv, ok := m.(*nn.Conv2D[B]); ok {
//	        nn.KaimingNormal(conv.Weight(), nn.FanOut, rng)
//	    }
//	})
func Apply[B tensor.Backend](m Module[B], fn func(Module[B])) {
	fn(m)
	if c, ok := m.(Container[B]); ok {
		for _, child := range c.Children() {
			Apply(child, fn)
		}
	}
}

// SetTraining switches every mode-dependent module nested in m.
func SetTraining[B tensor.Backend](m Module[B], training bool) {
	Apply(m, func(mod Module[B]) {
		if s, ok := mod.(ModeSetter); ok {
			s.SetTraining(training)
		}
	})
}

// CountParameters returns the number of scalar weights in params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.Tensor().NumElements()
	}
	return n
}

// MergeStateDict copies src into dst with every key prefixed by "prefix.".
func MergeStateDict(dst map[string]*tensor.RawTensor, prefix string, src map[string]*tensor.RawTensor) {
	for name, raw := range src {
		dst[prefix+"."+name] = raw
	}
}

// SubStateDict returns the entries of stateDict under "prefix." with the
// prefix removed.
func SubStateDict(stateDict map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	sub := make(map[string]*tensor.RawTensor)
	p := prefix + "."
	for key, raw := range stateDict {
		if name, ok := strings.CutPrefix(key, p); ok {
			sub[name] = raw
		}
	}
	return sub
}

// loadNamed copies stateDict[name] into dst, checking presence, shape and dtype.
func loadNamed(stateDict map[string]*tensor.RawTensor, name string, dst *tensor.RawTensor) error {
	src, ok := stateDict[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingTensor, name)
	}
	if !src.Shape().Equal(dst.Shape()) {
		return fmt.Errorf("%w: %q has shape %v, expected %v", ErrShapeMismatch, name, src.Shape(), dst.Shape())
	}
	if src.DType() != dst.DType() {
		return fmt.Errorf("%w: %q has dtype %s, expected %s", ErrShapeMismatch, name, src.DType(), dst.DType())
	}
	copy(dst.Data(), src.Data())
	return nil
}

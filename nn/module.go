// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/gaze-ml/gazenet/internal/nn"
	"github.com/gaze-ml/gazenet/tensor"
)

// Module is the base interface for all neural network components.
//
// Every module implements:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//   - StateDict: Export parameters and buffers for serialization
//   - LoadStateDict: Import them back
type Module[B tensor.Backend] = nn.Module[B]

// Container is implemented by modules that hold other modules.
type Container[B tensor.Backend] = nn.Container[B]

// ModeSetter is implemented by modules that behave differently in training
// and evaluation mode.
type ModeSetter = nn.ModeSetter

// Parameter is a named weight tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Errors returned by LoadStateDict.
var (
	ErrMissingTensor = nn.ErrMissingTensor
	ErrShapeMismatch = nn.ErrShapeMismatch
)

// Apply calls fn on m and then, depth first, on every module it contains.
func Apply[B tensor.Backend](m Module[B], fn func(Module[B])) {
	nn.Apply(m, fn)
}

// SetTraining switches every mode-dependent layer in m.
func SetTraining[B tensor.Backend](m Module[B], training bool) {
	nn.SetTraining(m, training)
}

// CountParameters returns the total number of scalar weights in params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	return nn.CountParameters(params)
}

// MergeStateDict copies src into dst with every key prefixed by "prefix.".
func MergeStateDict(dst map[string]*tensor.RawTensor, prefix string, src map[string]*tensor.RawTensor) {
	nn.MergeStateDict(dst, prefix, src)
}

// SubStateDict returns the entries of stateDict under "prefix." with the prefix removed.
func SubStateDict(stateDict map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	return nn.SubStateDict(stateDict, prefix)
}

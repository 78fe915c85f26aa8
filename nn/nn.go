// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/gaze-ml/gazenet/internal/nn"
	"github.com/gaze-ml/gazenet/tensor"
)

// Layers

// Conv2D represents a 2D convolutional layer.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	backend := cpu.New()
//	conv := nn.NewConv2D(3, 16, 3, 3, 1, 1, false, backend)  // in=3, out=16, kernel=3x3, stride=1, padding=1, no bias
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, backend)
}

// BatchNorm2D represents per-channel batch normalization of [N, C, H, W] input.
type BatchNorm2D[B tensor.Backend] = nn.BatchNorm2D[B]

// NewBatchNorm2D creates a batch normalization layer in evaluation mode.
//
// Example:
//
//	bn := nn.NewBatchNorm2D(16, backend)
//	bn.SetTraining(true) // normalize with batch statistics
func NewBatchNorm2D[B tensor.Backend](numFeatures int, backend B) *BatchNorm2D[B] {
	return nn.NewBatchNorm2D(numFeatures, backend)
}

// BatchNorm2D defaults.
const (
	DefaultBatchNormEps      = nn.DefaultBatchNormEps
	DefaultBatchNormMomentum = nn.DefaultBatchNormMomentum
)

// Linear represents a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with bias.
//
// Example:
//
//	fc := nn.NewLinear(64, 62, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a new 2D max pooling layer.
//
// Example:
//
//	pool := nn.NewMaxPool2D(2, 2, backend)  // kernel=2, stride=2
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, backend)
}

// AdaptiveAvgPool2D averages each channel to a single value: [N, C, H, W] -> [N, C, 1, 1].
type AdaptiveAvgPool2D[B tensor.Backend] = nn.AdaptiveAvgPool2D[B]

// NewAdaptiveAvgPool2D creates a global average pooling layer.
func NewAdaptiveAvgPool2D[B tensor.Backend](backend B) *AdaptiveAvgPool2D[B] {
	return nn.NewAdaptiveAvgPool2D(backend)
}

// Flatten reshapes [N, ...] to [N, prod(...)].
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid represents the logistic activation function.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Containers

// Sequential applies modules in order.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a sequential container.
//
// Example:
//
//	head := nn.NewSequential[*cpu.Backend](
//	    nn.NewLinear(64, 62, backend),
//	    nn.NewReLU[*cpu.Backend](),
//	)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Blocks

// BasicBlock is a pre-activation residual block.
type BasicBlock[B tensor.Backend] = nn.BasicBlock[B]

// NewBasicBlock creates a residual block. The shortcut is a 1x1 convolution
// unless the block keeps both channels and resolution.
func NewBasicBlock[B tensor.Backend](inChannels, outChannels, stride int, backend B) *BasicBlock[B] {
	return nn.NewBasicBlock(inChannels, outChannels, stride, backend)
}

// NewStage stacks nBlocks residual blocks; only the first changes channels
// or resolution.
//
// Example:
//
//	stage := nn.NewStage(16, 32, 2, 2, backend) // [N, 16, 36, 60] -> [N, 32, 18, 30]
func NewStage[B tensor.Backend](inChannels, outChannels, nBlocks, stride int, backend B) *Sequential[B] {
	return nn.NewStage(inChannels, outChannels, nBlocks, stride, backend)
}

// CovarianceGate re-weights a feature map with its second-order channel statistics.
type CovarianceGate[B tensor.Backend] = nn.CovarianceGate[B]

// NewCovarianceGate creates a covariance gate over the given number of channels.
func NewCovarianceGate[B tensor.Backend](channels int, backend B) *CovarianceGate[B] {
	return nn.NewCovarianceGate(channels, backend)
}

// SpatialAttention halves resolution and applies a learned sigmoid mask.
type SpatialAttention[B tensor.Backend] = nn.SpatialAttention[B]

// NewSpatialAttention creates a spatial attention gate.
func NewSpatialAttention[B tensor.Backend](channels int, backend B) *SpatialAttention[B] {
	return nn.NewSpatialAttention(channels, backend)
}

// Metrics

// MSELoss computes mean squared error.
type MSELoss[B tensor.Backend] = nn.MSELoss[B]

// NewMSELoss creates a mean squared error metric.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return nn.NewMSELoss(backend)
}

// Initialization

// FanMode selects which fan KaimingNormal preserves.
type FanMode = nn.FanMode

// Fan modes.
const (
	FanIn  = nn.FanIn
	FanOut = nn.FanOut
)

// Fans returns fan_in and fan_out of a weight shape.
func Fans(shape tensor.Shape) (fanIn, fanOut int) {
	return nn.Fans(shape)
}

// DefaultUniform returns a tensor drawn from U(-1/sqrt(fanIn), 1/sqrt(fanIn)).
func DefaultUniform[B tensor.Backend](fanIn int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return nn.DefaultUniform(fanIn, shape, rng, backend)
}

// KaimingNormal re-draws p from N(0, 2/fan) for the selected fan.
func KaimingNormal[B tensor.Backend](p *Parameter[B], mode FanMode, rng *rand.Rand) {
	nn.KaimingNormal(p, mode, rng)
}

// Normal re-draws p from N(mean, std²).
func Normal[B tensor.Backend](p *Parameter[B], mean, std float64, rng *rand.Rand) {
	nn.Normal(p, mean, std, rng)
}

// UniformFill re-draws p from U(-bound, bound).
func UniformFill[B tensor.Backend](p *Parameter[B], bound float64, rng *rand.Rand) {
	nn.UniformFill(p, bound, rng)
}

// Fill sets every element of p to value.
func Fill[B tensor.Backend](p *Parameter[B], value float32) {
	nn.Fill(p, value)
}

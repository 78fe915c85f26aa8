// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Conv2D, BatchNorm2D, Linear, MaxPool2D, AdaptiveAvgPool2D, Flatten
//   - Activations: ReLU, Sigmoid
//   - Blocks: pre-activation BasicBlock, Stage, CovarianceGate, SpatialAttention
//   - Metrics: MSELoss
//   - Utilities: Sequential, Module interface, Parameter, Apply, state dicts
//   - Initialization: KaimingNormal, Normal, UniformFill, Fill, DefaultUniform
//
// # Basic Usage
//
//	import (
//	    "github.com/gaze-ml/gazenet/nn"
//	    "github.com/gaze-ml/gazenet/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    stem := nn.NewSequential[*cpu.Backend](
//	        nn.NewConv2D(3, 16, 3, 3, 1, 1, false, backend),
//	        nn.NewStage(16, 32, 2, 2, backend),
//	        nn.NewCovarianceGate(32, backend),
//	    )
//
//	    output := stem.Forward(input)
//	}
//
// # Blocks
//
// BasicBlock: pre-activation residual block, relu(bn(x)) feeds both the
// convolution path and the shortcut.
//
// CovarianceGate: re-weights a feature map with a learned projection of the
// per-location channel outer product. Output shape equals input shape.
//
// SpatialAttention: halves the resolution and scales it by a sigmoid mask.
//
// # Initialization
//
// Layers start with U(-1/sqrt(fan_in), 1/sqrt(fan_in)) weights. Use Apply with
// the initializers to re-draw them from a seeded source:
//
//	rng := rand.New(rand.NewSource(1))
//	nn.Apply(model, func(m nn.Module[B]) {
//	    if conv, ok := m.(*nn.Conv2D[B]); ok {
//	        nn.KaimingNormal(conv.Weight(), nn.FanOut, rng)
//	    }
//	})
//
// # State Dicts
//
// StateDict keys are dotted paths ("0.conv1.weight", "proj.bias"). BatchNorm
// running statistics are included. LoadStateDict reports ErrMissingTensor and
// ErrShapeMismatch.
package nn

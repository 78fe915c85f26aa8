// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for gazenet.
//
// # Overview
//
// Tensors are the fundamental data structure of the network. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting for element-wise operations
//   - Seeded random creation for reproducible weights
//   - Shape helpers for convolutions and the covariance triangle
//
// # Basic Usage
//
//	import (
//	    "github.com/gaze-ml/gazenet/tensor"
//	    "github.com/gaze-ml/gazenet/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//	}
//
// # Supported Data Types
//
// Float32 and Float64. Models compute in float32.
//
// # Layout
//
// Image tensors are NCHW: [batch, channels, height, width], row-major.
//
// # Broadcasting
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)     // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)      // (3, 4)
//	c := a.Add(b)                                                // (3, 4)
package tensor

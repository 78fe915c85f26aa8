// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Im2col algorithm for convolutions
//   - Per-channel BatchNorm and channel-moment kernels
//   - The upper-triangle outer product used by the covariance gate
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	import (
//	    "github.com/gaze-ml/gazenet/backend/cpu"
//	    "github.com/gaze-ml/gazenet/gaze"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := gaze.New(gaze.DefaultConfig(), backend)
//	}
//
// # Parallelism
//
// Convolution, pooling, normalization and TriuOuter split their work over
// (batch, channel) pairs. NewWithConfig(cpu.Config{}) disables the pool.
//
// # Thread Safety
//
// The CPU backend holds no mutable state and is safe for concurrent use.
package cpu

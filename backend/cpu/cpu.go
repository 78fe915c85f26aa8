// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/gaze-ml/gazenet/internal/backend/cpu"
	"github.com/gaze-ml/gazenet/internal/parallel"
	"github.com/gaze-ml/gazenet/tensor"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend provides pure Go implementations of every operation the
// gaze network needs, fanning out over channels with a worker pool.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Config controls the backend's worker pool.
type Config = parallel.Config

// Features lists the SIMD extensions detected on the host CPU.
type Features = internalcpu.Features

// New creates a new CPU backend sized to the host.
//
// Example:
//
//	import (
//	    "github.com/gaze-ml/gazenet/backend/cpu"
//	    "github.com/gaze-ml/gazenet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit worker configuration.
// Config{} runs every kernel sequentially.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultConfig returns the worker configuration New uses.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// DetectFeatures queries the running CPU.
func DetectFeatures() Features {
	return internalcpu.DetectFeatures()
}

// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gaze provides the gaze-estimation network.
//
// # Overview
//
// The network takes an eye image [N, 3, 36, 60] and a head pose [N, 2]:
//   - conv 3x3 -> three pre-activation residual stages -> BatchNorm -> ReLU
//   - a feature gate (covariance, spatial or none)
//
// Forward returns the gated feature map ([N, 64, 9, 15] by default).
// Predict continues through a pooled regression head that mixes in pose and
// returns [N, 2] gaze angles (pitch, yaw) in radians.
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
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    features, err := model.Forward(image, pose)
//	    angles, err := model.Predict(image, pose)
//	}
//
// # Configuration
//
// Config is loaded from YAML with LoadConfig; missing keys keep their
// DefaultConfig values and unknown keys are rejected:
//
//	depth: 14          # 6n+2, n blocks per stage
//	base_channels: 16
//	gate: spatial
//	seed: 7
//
// # Checkpoints
//
// Save writes weights, BatchNorm statistics and the configuration to a .gaze
// file; Load and LoadMmap rebuild an identical model from it.
//
// # Reproducibility
//
// Weights are drawn from Config.Seed. The same seed on the same configuration
// yields bit-identical models.
package gaze

// Copyright 2025 GazeNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package gaze

import (
	"github.com/gaze-ml/gazenet/internal/gaze"
	"github.com/gaze-ml/gazenet/tensor"
)

// Model is the gaze network.
type Model[B tensor.Backend] = gaze.Model[B]

// Config captures the model hyperparameters.
type Config = gaze.Config

// Overrides holds command-line values applied on top of a Config.
type Overrides = gaze.Overrides

// Metrics summarizes predictions against ground-truth angles.
type Metrics = gaze.Metrics

// Gate selects the block applied to the backbone's feature map.
type Gate = gaze.Gate

// Supported gates.
const (
	GateCovariance = gaze.GateCovariance
	GateSpatial    = gaze.GateSpatial
	GateNone       = gaze.GateNone
)

// ModelType is the model type recorded in gazenet checkpoints.
const ModelType = gaze.ModelType

// Errors.
var (
	ErrInvalidDepth      = gaze.ErrInvalidDepth
	ErrInvalidConfig     = gaze.ErrInvalidConfig
	ErrImageShape        = gaze.ErrImageShape
	ErrPoseShape         = gaze.ErrPoseShape
	ErrTargetShape       = gaze.ErrTargetShape
	ErrNotGazeCheckpoint = gaze.ErrNotGazeCheckpoint
)

// DefaultConfig returns the eye-image configuration (depth 8, covariance gate).
func DefaultConfig() Config {
	return gaze.DefaultConfig()
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	return gaze.LoadConfig(path)
}

// New builds a model from cfg and initializes its weights from cfg.Seed.
//
// Example:
//
//	model, err := gaze.New(gaze.DefaultConfig(), cpu.New())
func New[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	return gaze.New(cfg, backend)
}

// Load rebuilds a model from a checkpoint written by Model.Save.
func Load[B tensor.Backend](path string, backend B) (*Model[B], error) {
	return gaze.Load(path, backend)
}

// LoadMmap is Load through a memory-mapped reader.
func LoadMmap[B tensor.Backend](path string, backend B) (*Model[B], error) {
	return gaze.LoadMmap(path, backend)
}

// Vector converts (pitch, yaw) in radians to a unit gaze direction.
func Vector(pitch, yaw float64) [3]float64 {
	return gaze.Vector(pitch, yaw)
}

// AngularError returns the mean angle in degrees between [N, 2] predicted and
// target (pitch, yaw) tensors.
func AngularError[B tensor.Backend](pred, target *tensor.Tensor[float32, B]) (float64, error) {
	return gaze.AngularError(pred, target)
}

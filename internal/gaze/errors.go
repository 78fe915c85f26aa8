package gaze

import "errors"

// Errors returned by model construction and inference.
var (
	ErrInvalidDepth  = errors.New("invalid depth")
	ErrInvalidConfig = errors.New("invalid config")
	ErrImageShape    = errors.New("image shape mismatch")
	ErrPoseShape     = errors.New("pose shape mismatch")
	ErrTargetShape   = errors.New("target shape mismatch")
)

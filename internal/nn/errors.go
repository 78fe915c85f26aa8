package nn

import "errors"

// Errors returned by LoadStateDict.
var (
	ErrMissingTensor = errors.New("missing tensor in state dict")
	ErrShapeMismatch = errors.New("tensor shape mismatch")
)

package nn

import "errors"

// State-dict loading errors.
var (
	ErrMissingTensor = errors.New("missing tensor in state dict")
	ErrShapeMismatch = errors.New("tensor shape mismatch")
	ErrDTypeMismatch = errors.New("tensor dtype mismatch")
)

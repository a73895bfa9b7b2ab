// Package nn implements the neural-network building blocks of netdyn.
//
// This package provides:
//   - Module interface: base interface for all NN components
//   - Parameter, StopGradient: trainable and frozen leaves
//   - Initializers: TruncNormal, LecunNormal, XavierNormal, Uniform, Constant
//   - Linear: affine layer with configurable initialization and trainability
//   - MLP, SCM, GatedNet: two-layer models for studying learning dynamics
//   - Activations: Identity, ReLU, Sigmoid, Tanh, Erf
//   - MSELoss
//
// All models are float32 and generic over the backend. Construction is
// deterministic given a random.Key.
package nn

import (
	"github.com/netdyn/netdyn/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// Frozen leaves are not included. Returns an empty slice for modules
	// without trainable parameters (e.g., activation functions).
	Parameters() []*Parameter[B]
}

// Model is a Module whose state can be saved and restored.
type Model[B tensor.Backend] interface {
	Module[B]

	// StateDict returns every leaf, trainable or frozen, by name.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies tensors from stateDict into the model.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

package nn

import (
	"fmt"

	"github.com/netdyn/netdyn/internal/tensor"
)

// Activation is an element-wise function applied to pre-activations.
// The Forward methods of the activation modules below are Activations.
type Activation[B tensor.Backend] func(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

// Identity returns the identity activation.
func Identity[B tensor.Backend]() Activation[B] {
	return func(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
		return x
	}
}

// ParseActivation returns the activation named by name:
// "identity" (or ""), "relu", "sigmoid", "tanh" or "erf".
func ParseActivation[B tensor.Backend](name string) (Activation[B], error) {
	switch name {
	case "", "identity", "linear":
		return Identity[B](), nil
	case "relu":
		return NewReLU[B]().Forward, nil
	case "sigmoid":
		return NewSigmoid[B]().Forward, nil
	case "tanh":
		return NewTanh[B]().Forward, nil
	case "erf":
		return NewErf[B]().Forward, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

// activationBackend returns the backend of x as a tensor.ActivationBackend.
func activationBackend[B tensor.Backend](op string, x *tensor.Tensor[float32, B]) tensor.ActivationBackend {
	backend := x.Backend()
	act, ok := any(backend).(tensor.ActivationBackend)
	if !ok {
		panic(fmt.Sprintf("%s: backend %s must implement activation operations", op, backend.Name()))
	}
	return act
}

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// Example:
//
//	relu := nn.NewReLU[Backend]()
//	output := relu.Forward(input)  // All negative values become 0
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.New[float32](activationBackend("ReLU", input).ReLU(input.Raw()), input.Backend())
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.New[float32](activationBackend("Sigmoid", input).Sigmoid(input.Raw()), input.Backend())
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}

// Tanh is a hyperbolic tangent activation module.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies Tanh activation.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.New[float32](activationBackend("Tanh", input).Tanh(input.Raw()), input.Backend())
}

// Parameters returns an empty slice (Tanh has no trainable parameters).
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}

// Erf is the scaled error-function activation g(x) = erf(x/√2),
// the usual nonlinearity of soft-committee machines.
type Erf[B tensor.Backend] struct{}

// NewErf creates a new Erf activation module.
func NewErf[B tensor.Backend]() *Erf[B] {
	return &Erf[B]{}
}

// Forward applies erf(x/√2).
func (e *Erf[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.New[float32](activationBackend("Erf", input).Erf(input.Raw()), input.Backend())
}

// Parameters returns an empty slice (Erf has no trainable parameters).
func (e *Erf[B]) Parameters() []*Parameter[B] {
	return nil
}

package nn

import (
	"github.com/netdyn/netdyn/internal/tensor"
)

// Leaf is a named tensor owned by a layer: either a trainable Parameter
// or a frozen StopGradient.
//
// Forward passes read leaves through Value, which for a frozen leaf blocks
// gradient flow. Checkpointing reads them through Tensor.
type Leaf[B tensor.Backend] interface {
	// Name returns the leaf name (e.g., "weight", "bias").
	Name() string

	// Tensor returns the stored tensor.
	Tensor() *tensor.Tensor[float32, B]

	// Value returns the tensor to use in a forward pass.
	Value() *tensor.Tensor[float32, B]

	// Trainable reports whether gradients flow to this leaf.
	Trainable() bool
}

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that require gradient computation during training.
// They typically represent weights and biases of layers.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := grads[w.Raw()] // after autodiff.Backward
type Parameter[B tensor.Backend] struct {
	name   string                     // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor[float32, B] // The parameter tensor
	grad   *tensor.Tensor[float32, B] // Gradient tensor (set by the caller after backward)
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Value returns the parameter tensor itself, so gradients reach it.
func (p *Parameter[B]) Value() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Trainable always returns true.
func (p *Parameter[B]) Trainable() bool {
	return true
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been set.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// StopGradient wraps a tensor that takes part in forward computation but
// is treated as a constant by differentiation.
//
// Value returns the wrapped data unchanged. On a backend implementing
// tensor.StopGradientBackend (the autodiff backend) it is a fresh view the
// tape never connects to the wrapped tensor; on other backends it is a
// detached tensor. Either way no gradient is ever recorded for Tensor().Raw().
//
// Example:
//
//	frozen := nn.NewStopGradient("weight", w)
//	y := x.MatMul(frozen.Value().T())
//	grads := autodiff.Backward(y.Sum(), backend)
//	_, ok := grads[w.Raw()] // false
type StopGradient[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewStopGradient wraps t.
func NewStopGradient[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *StopGradient[B] {
	return &StopGradient[B]{name: name, tensor: t}
}

// Name returns the leaf name.
func (s *StopGradient[B]) Name() string {
	return s.name
}

// Tensor returns the wrapped tensor.
func (s *StopGradient[B]) Tensor() *tensor.Tensor[float32, B] {
	return s.tensor
}

// Value returns the wrapped value with gradient flow blocked.
func (s *StopGradient[B]) Value() *tensor.Tensor[float32, B] {
	backend := s.tensor.Backend()
	if sg, ok := any(backend).(tensor.StopGradientBackend); ok {
		return tensor.New[float32](sg.StopGradient(s.tensor.Raw()), backend)
	}
	return s.tensor.Detach()
}

// Trainable always returns false.
func (s *StopGradient[B]) Trainable() bool {
	return false
}

// newLeaf wraps t as a Parameter when trainable, otherwise as a StopGradient.
func newLeaf[B tensor.Backend](name string, t *tensor.Tensor[float32, B], trainable bool) Leaf[B] {
	if trainable {
		return NewParameter(name, t)
	}
	return NewStopGradient(name, t)
}

// trainableParameters returns the Parameters among leaves, skipping nil leaves.
func trainableParameters[B tensor.Backend](leaves ...Leaf[B]) []*Parameter[B] {
	var params []*Parameter[B]
	for _, leaf := range leaves {
		if p, ok := leaf.(*Parameter[B]); ok {
			params = append(params, p)
		}
	}
	return params
}

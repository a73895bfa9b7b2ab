// Package optim implements the optimizers used to train netdyn models.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation with optional decoupled weight decay
//
// Optimizers receive only trainable parameters (Module.Parameters), so
// frozen leaves are never updated.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
//
//	for step := range steps {
//	    loss := lossFn.Forward(model.Forward(x), y)
//	    grads := autodiff.Backward(loss, backend)
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	    backend.Tape().Clear()
//	}
package optim

import (
	"fmt"

	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	//
	// Takes a gradient map from autodiff.Backward. Parameters absent from
	// the map are left unchanged.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// New creates the optimizer named by name ("sgd" or "adam") with learning rate lr
// and default hyperparameters otherwise.
func New[B tensor.Backend](name string, params []*nn.Parameter[B], lr float32, backend B) (Optimizer, error) {
	switch name {
	case "", "sgd":
		return NewSGD(params, SGDConfig{LR: lr}, backend), nil
	case "adam":
		return NewAdam(params, AdamConfig{LR: lr}, backend), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", name)
	}
}

// getGradient retrieves the gradient for a parameter and records it on
// the parameter.
//
// Returns nil if no gradient is found (parameter wasn't part of computation graph).
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor, backend B) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	grad, ok := grads[param.Tensor().Raw()]
	if !ok {
		return nil
	}
	param.SetGrad(tensor.New[float32](grad, backend))
	return grad
}

// zeroGrads clears the gradient of every parameter.
func zeroGrads[B tensor.Backend](params []*nn.Parameter[B]) {
	for _, param := range params {
		param.ZeroGrad()
	}
}

// loadBuffer validates a saved optimizer buffer against param.
func loadBuffer[B tensor.Backend](name string, raw *tensor.RawTensor, param *nn.Parameter[B], backend B) (*tensor.Tensor[float32, B], error) {
	if !raw.Shape().Equal(param.Tensor().Shape()) {
		return nil, fmt.Errorf("%s: expected shape %v, got %v: %w", name, param.Tensor().Shape(), raw.Shape(), nn.ErrShapeMismatch)
	}
	if raw.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%s: expected float32, got %v: %w", name, raw.DType(), nn.ErrDTypeMismatch)
	}
	return tensor.New[float32](raw.Clone(), backend), nil
}

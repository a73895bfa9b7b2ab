package nn

import (
	"fmt"

	"github.com/netdyn/netdyn/internal/tensor"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²), or half of it when Half is set,
// the convention of most soft-committee learning-dynamics analyses.
//
// The loss is built from differentiable tensor operations, so on an
// autodiff backend it can be passed directly to autodiff.Backward.
//
// Example:
//
//	mse := nn.NewMSELoss(backend)
//	loss := mse.Forward(model.Forward(input), targets)
type MSELoss[B tensor.Backend] struct {
	backend B
	half    bool
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return &MSELoss[B]{backend: backend}
}

// NewHalfMSELoss creates an MSE loss scaled by ½.
func NewHalfMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return &MSELoss[B]{backend: backend, half: true}
}

// Half reports whether the loss is scaled by ½.
func (m *MSELoss[B]) Half() bool {
	return m.half
}

// Forward computes the MSE loss as a 0-D tensor.
//
// Panics if predictions and targets differ in shape.
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("MSELoss: predictions %v and targets %v must have the same shape",
			predictions.Shape(), targets.Shape()))
	}

	diff := predictions.Sub(targets)
	loss := diff.Mul(diff).Mean()
	if m.half {
		loss = loss.MulScalar(0.5)
	}
	return loss
}

// Parameters returns an empty slice (loss functions have no trainable parameters).
func (m *MSELoss[B]) Parameters() []*Parameter[B] {
	return nil
}

package ops

import "github.com/netdyn/netdyn/internal/tensor"

// ScalarKind selects the scalar operation recorded by ScalarOp.
type ScalarKind int

// Scalar operations.
const (
	ScalarMul ScalarKind = iota
	ScalarAdd
	ScalarDiv
)

// ScalarOp represents x ⊙ c for a constant c.
//
// Backward pass:
//   - mul: grad_x = outputGrad * c
//   - add: grad_x = outputGrad
//   - div: grad_x = outputGrad / c
type ScalarOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	kind   ScalarKind
	scalar float64
}

// NewScalarOp creates a new ScalarOp.
func NewScalarOp(kind ScalarKind, input, output *tensor.RawTensor, scalar float64) *ScalarOp {
	return &ScalarOp{input: input, output: output, kind: kind, scalar: scalar}
}

// Backward computes the input gradient.
func (op *ScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	switch op.kind {
	case ScalarMul:
		return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
	case ScalarDiv:
		return []*tensor.RawTensor{backend.DivScalar(outputGrad, op.scalar)}
	default:
		return []*tensor.RawTensor{outputGrad}
	}
}

// Inputs returns the input tensor.
func (op *ScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *ScalarOp) Output() *tensor.RawTensor { return op.output }

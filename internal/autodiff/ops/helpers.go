package ops

import (
	"fmt"
	"math"

	"github.com/netdyn/netdyn/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	// Leading dimensions the target does not have.
	for len(grad.Shape()) > len(targetShape) {
		grad = backend.SumDim(grad, 0, false)
	}

	// Dimensions stretched from size 1.
	for i, dim := range targetShape {
		if dim == 1 && grad.Shape()[i] > 1 {
			grad = backend.SumDim(grad, i, true)
		}
	}

	if !grad.Shape().Equal(targetShape) {
		panic(fmt.Sprintf("reduceBroadcast: cannot reduce %v to %v", grad.Shape(), targetShape))
	}
	return grad
}

// unsqueeze reinserts a reduced dimension of size 1 at dim.
func unsqueeze(grad *tensor.RawTensor, dim int, backend tensor.Backend) *tensor.RawTensor {
	shape := grad.Shape()
	newShape := make(tensor.Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)
	return backend.Reshape(grad, newShape)
}

// normalizeDim resolves a negative dim against ndim.
func normalizeDim(dim, ndim int) int {
	if dim < 0 {
		return ndim + dim
	}
	return dim
}

// mapRaw allocates a tensor shaped like x holding f applied element-wise.
// Used for local derivatives that have no backend kernel.
func mapRaw(x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape(), x.DType(), x.Device())

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = f(v)
		}
	default:
		panic(fmt.Sprintf("ops: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// erfDerivative is d/dx erf(x/√2) = sqrt(2/π)·exp(-x²/2).
func erfDerivative(x float64) float64 {
	return math.Sqrt(2/math.Pi) * math.Exp(-x*x/2)
}

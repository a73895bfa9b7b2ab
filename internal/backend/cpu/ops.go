package cpu

import (
	"github.com/netdyn/netdyn/internal/tensor"
)

type float interface {
	~float32 | ~float64
}

// binaryVectorized applies f element-wise to same-shaped operands.
func binaryVectorized[T float](dst, a, b []T, f func(x, y float64) float64) {
	for i := range a {
		dst[i] = T(f(float64(a[i]), float64(b[i])))
	}
}

// binaryBroadcast applies f element-wise with broadcasting.
func binaryBroadcast[T float](dst, a, b []T, aShape, bShape, outShape tensor.Shape, f func(x, y float64) float64) {
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	for i := range dst {
		aIdx := computeFlatIndex(i, outStrides, aStrides)
		bIdx := computeFlatIndex(i, outStrides, bStrides)
		dst[i] = T(f(float64(a[aIdx]), float64(b[bIdx])))
	}
}

// unary applies f element-wise.
func unary[T float](dst, src []T, f func(x float64) float64) {
	for i, v := range src {
		dst[i] = T(f(float64(v)))
	}
}

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations and must
// never modify their inputs.
//
// Implementations:
//   - CPU: Pure Go, BLAS-backed matrix multiplication
//   - Autodiff: decorator over any Backend that records a gradient tape
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations: (M, K) @ (K, N) -> (M, N)
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor // broadcast to shape

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	DivScalar(x *RawTensor, scalar float64) *RawTensor

	// Reduction operations
	Sum(x *RawTensor) *RawTensor                            // total sum (0-D result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // sum along dimension
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor // mean along dimension

	// Metadata
	Name() string
	Device() Device
}

// ActivationBackend is implemented by backends that provide element-wise
// activation kernels. Models type-assert for it at call time.
type ActivationBackend interface {
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Erf(x *RawTensor) *RawTensor // erf(x / √2)
}

// StopGradientBackend is implemented by backends that track gradients.
// StopGradient returns a tensor with the value of x through which no
// gradient flows back to x.
type StopGradientBackend interface {
	StopGradient(x *RawTensor) *RawTensor
}

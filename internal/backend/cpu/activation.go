package cpu

import (
	"math"

	"github.com/netdyn/netdyn/internal/tensor"
)

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapUnary("relu", x, func(v float64) float64 { return math.Max(0, v) })
}

// Sigmoid computes 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapUnary("sigmoid", x, func(v float64) float64 { return 1.0 / (1.0 + math.Exp(-v)) })
}

// Tanh computes the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapUnary("tanh", x, math.Tanh)
}

// Erf computes erf(x / √2) element-wise, the soft-committee activation.
func (cpu *CPUBackend) Erf(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapUnary("erf", x, func(v float64) float64 { return math.Erf(v / math.Sqrt2) })
}

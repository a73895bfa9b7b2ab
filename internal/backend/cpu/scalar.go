package cpu

import (
	"fmt"

	"github.com/netdyn/netdyn/internal/tensor"
)

// MulScalar multiplies each element by a scalar: result = x * scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.mapUnary("mulscalar", x, func(v float64) float64 { return v * scalar })
}

// AddScalar adds a scalar to each element: result = x + scalar.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.mapUnary("addscalar", x, func(v float64) float64 { return v + scalar })
}

// DivScalar divides each element by a scalar: result = x / scalar.
func (cpu *CPUBackend) DivScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.mapUnary("divscalar", x, func(v float64) float64 { return v / scalar })
}

// mapUnary allocates a result shaped like x and fills it with f(x).
func (cpu *CPUBackend) mapUnary(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		unary(result.AsFloat32(), x.AsFloat32(), f)
	case tensor.Float64:
		unary(result.AsFloat64(), x.AsFloat64(), f)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}

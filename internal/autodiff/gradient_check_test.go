package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdyn/netdyn/internal/autodiff"
	"github.com/netdyn/netdyn/internal/backend/cpu"
	"github.com/netdyn/netdyn/internal/tensor"
)

type scalarFn func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend]

func act(f func(b Backend, r *tensor.RawTensor) *tensor.RawTensor) scalarFn {
	return func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
		b := x.Backend()
		return tensor.New[float64](f(b, x.Raw()), b)
	}
}

// checkGradient compares autodiff gradients of f at x with central differences.
func checkGradient(t *testing.T, f scalarFn, data []float64, shape tensor.Shape) {
	t.Helper()

	backend := newRecording()
	x, err := tensor.FromSlice(data, shape, backend)
	require.NoError(t, err)

	grads := autodiff.Backward(f(x), backend)
	analytic, ok := grads[x.Raw()]
	require.True(t, ok, "no gradient for input")

	eval := func(values []float64) float64 {
		b := autodiff.New(cpu.New())
		xe, err := tensor.FromSlice(values, shape, b)
		require.NoError(t, err)
		return f(xe).Item()
	}

	const h = 1e-6
	for i := range data {
		plus := append([]float64(nil), data...)
		minus := append([]float64(nil), data...)
		plus[i] += h
		minus[i] -= h
		numeric := (eval(plus) - eval(minus)) / (2 * h)
		assert.InDelta(t, numeric, analytic.AsFloat64()[i], 1e-5, "element %d", i)
	}
}

func TestGradientCheck(t *testing.T) {
	data := []float64{0.3, -1.2, 0.7, 2.1, -0.4, 1.5}
	shape := tensor.Shape{2, 3}

	tests := []struct {
		name string
		f    scalarFn
	}{
		{"relu", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			return act(func(b Backend, r *tensor.RawTensor) *tensor.RawTensor { return b.ReLU(r) })(x).Mul(x).Sum()
		}},
		{"sigmoid", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			return act(func(b Backend, r *tensor.RawTensor) *tensor.RawTensor { return b.Sigmoid(r) })(x).Sum()
		}},
		{"tanh", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			return act(func(b Backend, r *tensor.RawTensor) *tensor.RawTensor { return b.Tanh(r) })(x).Sum()
		}},
		{"erf", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			return act(func(b Backend, r *tensor.RawTensor) *tensor.RawTensor { return b.Erf(r) })(x).Sum()
		}},
		{"div", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			return x.Div(x.Mul(x).AddScalar(1)).Sum()
		}},
		{"sub", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			return x.MulScalar(3).Sub(x.Mul(x)).Sum()
		}},
		{"transpose-matmul", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			return x.MatMul(x.T()).Sum()
		}},
		{"meandim", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			m := x.MeanDim(1, false)
			return m.Mul(m).Sum()
		}},
		{"sumdim-keep", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			s := x.SumDim(0, true)
			return s.Mul(x).Sum()
		}},
		{"reshape-expand", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			r := x.Reshape(3, 2).SumDim(1, true)
			return r.Expand(tensor.Shape{3, 4}).Mul(r.Expand(tensor.Shape{3, 4})).Sum()
		}},
		{"divscalar", func(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
			return x.Mul(x).DivScalar(4).Mean()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkGradient(t, tt.f, data, shape)
		})
	}
}

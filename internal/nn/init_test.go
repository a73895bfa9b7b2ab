package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

func draw(init nn.Initializer, shape tensor.Shape, key random.Key) []float64 {
	existing := tensor.MustNewRaw(shape, tensor.Float32, tensor.CPU)
	return toFloat64(init(existing, key).AsFloat32())
}

func TestInitializers_Statistics(t *testing.T) {
	const out, in = 200, 300
	shape := tensor.Shape{out, in}
	key := random.NewKey(11)

	tests := []struct {
		name    string
		init    nn.Initializer
		wantStd float64
		bound   float64 // 0 means unbounded
	}{
		{"xavier", nn.XavierNormal(), math.Sqrt(2.0 / (in + out)), 0},
		{"xavier-scaled", nn.XavierNormal(nn.WithScale(4)), math.Sqrt(8.0 / (in + out)), 0},
		// Truncation to ±2σ is compensated by the 0.8796 factor.
		{"lecun", nn.LecunNormal(), math.Sqrt(1.0 / in), 2 * math.Sqrt(1.0/in) / 0.87962566103423978},
		{"trunc", nn.TruncNormal(nn.WithStddev(0.5)), 0.5 * 0.87962566103423978, 1},
		{"trunc-bounds", nn.TruncNormal(nn.WithBounds(-1, 1)), 0.5396, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := draw(tt.init, shape, key)

			assert.InDelta(t, 0, stat.Mean(values, nil), 0.02*tt.wantStd+1e-3)
			assert.InEpsilon(t, tt.wantStd, stat.StdDev(values, nil), 0.02)

			if tt.bound > 0 {
				assert.LessOrEqual(t, floats.Max(values), tt.bound+1e-6)
				assert.GreaterOrEqual(t, floats.Min(values), -tt.bound-1e-6)
			}
		})
	}
}

func TestInitializers_Deterministic(t *testing.T) {
	inits := []nn.Initializer{
		nn.XavierNormal(),
		nn.LecunNormal(),
		nn.TruncNormal(),
		nn.Uniform(-1, 1),
	}

	shape := tensor.Shape{4, 3}
	for _, init := range inits {
		a := draw(init, shape, random.NewKey(1))
		b := draw(init, shape, random.NewKey(1))
		c := draw(init, shape, random.NewKey(2))

		assert.Equal(t, a, b)
		assert.NotEqual(t, a, c)
	}
}

func TestInitializers_DoNotMutate(t *testing.T) {
	existing := tensor.MustNewRaw(tensor.Shape{3, 3}, tensor.Float64, tensor.CPU)
	existing.Fill(7)

	result := nn.XavierNormal()(existing, random.NewKey(0))

	assert.Equal(t, tensor.Float64, result.DType())
	assert.Equal(t, existing.Shape(), result.Shape())
	for _, v := range existing.AsFloat64() {
		assert.Equal(t, 7.0, v)
	}

	constant := nn.Constant(2.5)(existing, random.NewKey(0))
	assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5}, constant.AsFloat64())
	assert.Equal(t, make([]float64, 9), nn.Zeros()(existing, random.NewKey(0)).AsFloat64())
}

func TestInitializers_Uniform(t *testing.T) {
	values := draw(nn.Uniform(-0.25, 0.25), tensor.Shape{1000}, random.NewKey(3))
	assert.GreaterOrEqual(t, floats.Min(values), -0.25)
	assert.LessOrEqual(t, floats.Max(values), 0.25)
}

func TestInitializers_InvalidBounds(t *testing.T) {
	assert.Panics(t, func() { nn.TruncNormal(nn.WithBounds(1, -1)) })
}

package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Initializer produces a new parameter tensor with the shape and dtype of
// existing. The existing tensor is never modified. The draw is a pure
// function of key: calling an initializer twice with the same key gives
// bit-identical tensors.
type Initializer func(existing *tensor.RawTensor, key random.Key) *tensor.RawTensor

// truncNormalScale is the standard deviation of N(0, 1) truncated to [-2, 2].
const truncNormalScale = 0.87962566103423978

// InitOption configures an Initializer.
type InitOption func(*initConfig)

type initConfig struct {
	scale  float64 // Variance scale
	stddev float64 // TruncNormal standard deviation
	lower  float64 // Truncation bounds, in standard deviations
	upper  float64
}

func defaultInitConfig() initConfig {
	return initConfig{
		scale:  1,
		stddev: 1,
		lower:  -2,
		upper:  2,
	}
}

// WithScale sets the variance scale for LecunNormal and XavierNormal (default: 1).
func WithScale(scale float64) InitOption {
	return func(c *initConfig) {
		c.scale = scale
	}
}

// WithStddev sets the standard deviation for TruncNormal (default: 1).
func WithStddev(stddev float64) InitOption {
	return func(c *initConfig) {
		c.stddev = stddev
	}
}

// WithBounds sets the truncation bounds in standard deviations (default: [-2, 2]).
func WithBounds(lower, upper float64) InitOption {
	return func(c *initConfig) {
		c.lower = lower
		c.upper = upper
	}
}

func applyInitOptions(opts []InitOption) initConfig {
	cfg := defaultInitConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.lower >= cfg.upper {
		panic(fmt.Sprintf("init: truncation bounds must satisfy lower < upper, got [%v, %v]", cfg.lower, cfg.upper))
	}
	return cfg
}

// TruncNormal draws stddev·z with z ~ N(0, 1) restricted to [lower, upper].
//
// Example:
//
//	init := nn.TruncNormal(nn.WithStddev(0.02))
func TruncNormal(opts ...InitOption) Initializer {
	cfg := applyInitOptions(opts)
	return func(existing *tensor.RawTensor, key random.Key) *tensor.RawTensor {
		return sampleTruncNormal(existing, key, cfg.stddev, cfg.lower, cfg.upper)
	}
}

// LecunNormal draws from a truncated normal with std = sqrt(scale / fanIn),
// corrected for the variance lost to truncation.
func LecunNormal(opts ...InitOption) Initializer {
	cfg := applyInitOptions(opts)
	return func(existing *tensor.RawTensor, key random.Key) *tensor.RawTensor {
		fanIn, _ := fans(existing.Shape())
		std := math.Sqrt(cfg.scale/float64(fanIn)) / truncNormalScale
		return sampleTruncNormal(existing, key, std, cfg.lower, cfg.upper)
	}
}

// XavierNormal draws from N(0, scale·2 / (fanIn + fanOut)).
func XavierNormal(opts ...InitOption) Initializer {
	cfg := applyInitOptions(opts)
	return func(existing *tensor.RawTensor, key random.Key) *tensor.RawTensor {
		fanIn, fanOut := fans(existing.Shape())
		std := math.Sqrt(cfg.scale * 2 / float64(fanIn+fanOut))
		dist := distuv.Normal{Mu: 0, Sigma: std, Src: key.Source()}
		return sample(existing, dist.Rand)
	}
}

// Uniform draws from U(low, high).
func Uniform(low, high float64) Initializer {
	return func(existing *tensor.RawTensor, key random.Key) *tensor.RawTensor {
		dist := distuv.Uniform{Min: low, Max: high, Src: key.Source()}
		return sample(existing, dist.Rand)
	}
}

// Constant fills every element with value. The key is ignored.
func Constant(value float64) Initializer {
	return func(existing *tensor.RawTensor, _ random.Key) *tensor.RawTensor {
		result := tensor.MustNewRaw(existing.Shape(), existing.DType(), existing.Device())
		result.Fill(value)
		return result
	}
}

// Zeros fills every element with zero.
func Zeros() Initializer {
	return Constant(0)
}

// fans returns fan-in and fan-out for a weight shape.
// For a 2-D [out, in] weight fanIn = in and fanOut = out; for 1-D shapes
// both are the length. Higher-rank shapes treat trailing dims as receptive field.
func fans(shape tensor.Shape) (fanIn, fanOut int) {
	switch len(shape) {
	case 0:
		return 1, 1
	case 1:
		return shape[0], shape[0]
	default:
		receptive := 1
		for _, d := range shape[2:] {
			receptive *= d
		}
		return shape[1] * receptive, shape[0] * receptive
	}
}

func sampleTruncNormal(existing *tensor.RawTensor, key random.Key, std, lower, upper float64) *tensor.RawTensor {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: key.Source()}
	return sample(existing, func() float64 {
		for {
			z := dist.Rand()
			if z >= lower && z <= upper {
				return std * z
			}
		}
	})
}

// sample allocates a tensor like existing with elements drawn from next.
func sample(existing *tensor.RawTensor, next func() float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(existing.Shape(), existing.DType(), existing.Device())

	switch result.DType() {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = float32(next())
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = next()
		}
	default:
		panic(fmt.Sprintf("init: unsupported dtype %s", result.DType()))
	}

	return result
}

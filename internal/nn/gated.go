package nn

import (
	"fmt"

	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Gate computes per-hidden-unit multipliers from the network input.
// The result must have the shape of the pre-activations or be a 0-D scalar.
type Gate[B tensor.Backend] func(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

// ConstantGate returns a gate that ignores x and yields the scalar value.
func ConstantGate[B tensor.Backend](value float32) Gate[B] {
	return func(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
		return tensor.Scalar(value, x.Backend())
	}
}

// GatedNetConfig holds configuration for a GatedNet.
type GatedNetConfig[B tensor.Backend] struct {
	InFeatures     int     // Input dimension (required)
	HiddenFeatures int     // Number of hidden units (default: InFeatures)
	Gate           Gate[B] // Gating function (default: ConstantGate(1))

	// Linear holds options for fc1. Its InFeatures and OutFeatures are ignored.
	Linear LinearConfig
}

// GatedNet is an SCM whose activation is replaced by a multiplicative gate:
//
//	preacts  = fc1(x)
//	gates    = gate(x)
//	postacts = gates * preacts
//	y        = mean(postacts)
//
// With the default constant-1 gate it computes exactly what an SCM with
// identity activation computes. It is a provisional design; richer gating
// may replace the Gate signature.
type GatedNet[B tensor.Backend] struct {
	fc1  *Linear[B]
	gate Gate[B]
}

// NewGatedNet creates a new GatedNet. fc1 is built from key directly.
func NewGatedNet[B tensor.Backend](cfg GatedNetConfig[B], key random.Key, backend B) *GatedNet[B] {
	if cfg.HiddenFeatures == 0 {
		cfg.HiddenFeatures = cfg.InFeatures
	}
	if cfg.Gate == nil {
		cfg.Gate = ConstantGate[B](1)
	}

	fc1Cfg := cfg.Linear
	fc1Cfg.InFeatures, fc1Cfg.OutFeatures = cfg.InFeatures, cfg.HiddenFeatures

	return &GatedNet[B]{
		fc1:  NewLinear(fc1Cfg, key, backend),
		gate: cfg.Gate,
	}
}

// ForwardPass returns the output together with the pre-activations, gates
// and post-activations.
func (g *GatedNet[B]) ForwardPass(x *tensor.Tensor[float32, B]) (y, preacts, gates, postacts *tensor.Tensor[float32, B]) {
	preacts = g.fc1.Forward(x)
	gates = g.gate(x)

	if len(gates.Shape()) != 0 && !gates.Shape().Equal(preacts.Shape()) {
		panic(fmt.Sprintf("GatedNet.ForwardPass: gates shape %v must match pre-activations %v or be a scalar",
			gates.Shape(), preacts.Shape()))
	}

	postacts = gates.Mul(preacts)
	y = postacts.MeanDim(-1, false)
	return y, preacts, gates, postacts
}

// Forward returns only the output of ForwardPass.
func (g *GatedNet[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y, _, _, _ := g.ForwardPass(x)
	return y
}

// Parameters returns the trainable parameters of fc1.
func (g *GatedNet[B]) Parameters() []*Parameter[B] {
	return g.fc1.Parameters()
}

// NumHiddens returns the number of hidden units.
func (g *GatedNet[B]) NumHiddens() int {
	return g.fc1.OutFeatures()
}

// FC1 returns the first layer.
func (g *GatedNet[B]) FC1() *Linear[B] {
	return g.fc1
}

// StateDict returns fc1's leaves keyed "fc1.*".
func (g *GatedNet[B]) StateDict() map[string]*tensor.RawTensor {
	return prefixed("fc1.", g.fc1.StateDict())
}

// LoadStateDict loads fc1.
func (g *GatedNet[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := g.fc1.LoadStateDict(unprefixed("fc1.", stateDict)); err != nil {
		return fmt.Errorf("fc1.%w", err)
	}
	return nil
}

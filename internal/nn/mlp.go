package nn

import (
	"fmt"

	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

// MLPConfig holds configuration for an MLP.
type MLPConfig[B tensor.Backend] struct {
	InFeatures     int           // Input dimension (required)
	HiddenFeatures int           // Hidden width (default: InFeatures)
	OutFeatures    int           // Output dimension (default: 1)
	Act            Activation[B] // Hidden activation (default: identity)

	// Linear holds the layer options shared by fc1 and fc2.
	// Its InFeatures and OutFeatures are ignored.
	Linear LinearConfig

	// FC2, if set, replaces Linear for the second layer only,
	// e.g. to freeze fc1 while training the readout.
	FC2 *LinearConfig
}

// MLP is a two-layer perceptron whose output is scaled by 1/hidden width:
//
//	preact = fc1(x)
//	y      = fc2(act(preact)) / num_hiddens
//
// The scaling keeps the output magnitude independent of the hidden width.
//
// Example:
//
//	mlp := nn.NewMLP(nn.MLPConfig[B]{InFeatures: 10, HiddenFeatures: 100, Act: nn.NewReLU[B]().Forward}, key, backend)
//	y, preact := mlp.ForwardPass(x)
type MLP[B tensor.Backend] struct {
	fc1        *Linear[B]
	fc2        *Linear[B]
	act        Activation[B]
	numHiddens int
}

// NewMLP creates a new MLP. fc1 and fc2 are built from the two halves of key.Split2().
func NewMLP[B tensor.Backend](cfg MLPConfig[B], key random.Key, backend B) *MLP[B] {
	if cfg.HiddenFeatures == 0 {
		cfg.HiddenFeatures = cfg.InFeatures
	}
	if cfg.OutFeatures == 0 {
		cfg.OutFeatures = 1
	}
	if cfg.Act == nil {
		cfg.Act = Identity[B]()
	}

	key1, key2 := key.Split2()

	fc1Cfg := cfg.Linear
	fc1Cfg.InFeatures, fc1Cfg.OutFeatures = cfg.InFeatures, cfg.HiddenFeatures

	fc2Cfg := cfg.Linear
	if cfg.FC2 != nil {
		fc2Cfg = *cfg.FC2
	}
	fc2Cfg.InFeatures, fc2Cfg.OutFeatures = cfg.HiddenFeatures, cfg.OutFeatures

	return &MLP[B]{
		fc1:        NewLinear(fc1Cfg, key1, backend),
		fc2:        NewLinear(fc2Cfg, key2, backend),
		act:        cfg.Act,
		numHiddens: cfg.HiddenFeatures,
	}
}

// ForwardPass returns the output and the first-layer pre-activation.
func (m *MLP[B]) ForwardPass(x *tensor.Tensor[float32, B]) (y, preact *tensor.Tensor[float32, B]) {
	preact = m.fc1.Forward(x)
	y = m.fc2.Forward(m.act(preact)).DivScalar(float32(m.numHiddens))
	return y, preact
}

// Forward returns only the output of ForwardPass.
func (m *MLP[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y, _ := m.ForwardPass(x)
	return y
}

// Parameters returns the trainable parameters of both layers.
func (m *MLP[B]) Parameters() []*Parameter[B] {
	return append(m.fc1.Parameters(), m.fc2.Parameters()...)
}

// NumHiddens returns the hidden width.
func (m *MLP[B]) NumHiddens() int {
	return m.numHiddens
}

// FC1 returns the first layer.
func (m *MLP[B]) FC1() *Linear[B] {
	return m.fc1
}

// FC2 returns the second layer.
func (m *MLP[B]) FC2() *Linear[B] {
	return m.fc2
}

// StateDict returns all leaves keyed "fc1.*" and "fc2.*".
func (m *MLP[B]) StateDict() map[string]*tensor.RawTensor {
	return mergeStateDicts(
		prefixed("fc1.", m.fc1.StateDict()),
		prefixed("fc2.", m.fc2.StateDict()),
	)
}

// LoadStateDict loads both layers.
func (m *MLP[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := m.fc1.LoadStateDict(unprefixed("fc1.", stateDict)); err != nil {
		return fmt.Errorf("fc1.%w", err)
	}
	if err := m.fc2.LoadStateDict(unprefixed("fc2.", stateDict)); err != nil {
		return fmt.Errorf("fc2.%w", err)
	}
	return nil
}

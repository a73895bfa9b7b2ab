package nn

import (
	"fmt"

	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

// SCMConfig holds configuration for a soft-committee machine.
type SCMConfig[B tensor.Backend] struct {
	InFeatures     int           // Input dimension (required)
	HiddenFeatures int           // Number of hidden units (default: InFeatures)
	Act            Activation[B] // Hidden activation (default: identity)

	// Linear holds options for fc1. Its InFeatures and OutFeatures are ignored.
	Linear LinearConfig
}

// SCM is a soft-committee machine: a two-layer network whose second layer
// is fixed to the average of the hidden activations.
//
//	preact = fc1(x)
//	y      = mean(act(preact))
//
// A 1-D input gives a scalar output; a [batch, in] input gives [batch],
// averaging over the hidden units of each row.
type SCM[B tensor.Backend] struct {
	fc1 *Linear[B]
	act Activation[B]
}

// NewSCM creates a new SCM. fc1 is built from key directly.
func NewSCM[B tensor.Backend](cfg SCMConfig[B], key random.Key, backend B) *SCM[B] {
	if cfg.HiddenFeatures == 0 {
		cfg.HiddenFeatures = cfg.InFeatures
	}
	if cfg.Act == nil {
		cfg.Act = Identity[B]()
	}

	fc1Cfg := cfg.Linear
	fc1Cfg.InFeatures, fc1Cfg.OutFeatures = cfg.InFeatures, cfg.HiddenFeatures

	return &SCM[B]{
		fc1: NewLinear(fc1Cfg, key, backend),
		act: cfg.Act,
	}
}

// ForwardPass returns the output and the pre-activation.
func (s *SCM[B]) ForwardPass(x *tensor.Tensor[float32, B]) (y, preact *tensor.Tensor[float32, B]) {
	preact = s.fc1.Forward(x)
	y = s.act(preact).MeanDim(-1, false)
	return y, preact
}

// Forward returns only the output of ForwardPass.
func (s *SCM[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y, _ := s.ForwardPass(x)
	return y
}

// Parameters returns the trainable parameters of fc1.
func (s *SCM[B]) Parameters() []*Parameter[B] {
	return s.fc1.Parameters()
}

// NumHiddens returns the number of hidden units.
func (s *SCM[B]) NumHiddens() int {
	return s.fc1.OutFeatures()
}

// FC1 returns the first layer.
func (s *SCM[B]) FC1() *Linear[B] {
	return s.fc1
}

// StateDict returns fc1's leaves keyed "fc1.*".
func (s *SCM[B]) StateDict() map[string]*tensor.RawTensor {
	return prefixed("fc1.", s.fc1.StateDict())
}

// LoadStateDict loads fc1.
func (s *SCM[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := s.fc1.LoadStateDict(unprefixed("fc1.", stateDict)); err != nil {
		return fmt.Errorf("fc1.%w", err)
	}
	return nil
}

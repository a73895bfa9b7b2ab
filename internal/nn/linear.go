package nn

import (
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

// LinearConfig holds configuration for a Linear layer.
//
// The zero value of every optional field is its default.
type LinearConfig struct {
	InFeatures   int         // Number of input features (required, > 0)
	OutFeatures  int         // Number of output features (required, > 0)
	NoBias       bool        // Omit the bias vector (default: bias present)
	FreezeWeight bool        // Wrap the weight in StopGradient (default: trainable)
	BiasValue    float32     // Constant bias value (default: 0)
	TrainBias    bool        // Make the bias trainable (default: frozen)
	Init         Initializer // Weight initializer (default: XavierNormal())
}

// Linear implements an affine layer: y = W·x + b.
//
// where:
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// The weight and bias are each either a trainable Parameter or a frozen
// StopGradient.
//
// Construction is a two-phase build. First default parameters are drawn
// uniformly from U(-1/sqrt(in), 1/sqrt(in)) using key. Then the weight is
// replaced by cfg.Init evaluated with the same key, and the bias is
// replaced by the constant BiasValue.
//
// Example:
//
//	layer := nn.NewLinear(nn.LinearConfig{InFeatures: 784, OutFeatures: 128}, key, backend)
//	output := layer.Forward(input) // [784] -> [128], or [32, 784] -> [32, 128]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      Leaf[B] // [out_features, in_features]
	bias        Leaf[B] // [out_features], nil without bias
	backend     B
}

// NewLinear creates a new Linear layer.
//
// Non-positive feature counts are rejected by tensor allocation.
func NewLinear[B tensor.Backend](cfg LinearConfig, key random.Key, backend B) *Linear[B] {
	if cfg.Init == nil {
		cfg.Init = XavierNormal()
	}

	weightRaw, biasRaw := defaultLinearParams(cfg.InFeatures, cfg.OutFeatures, !cfg.NoBias, key, backend.Device())

	// The initializer reuses key rather than drawing fresh randomness.
	weight := tensor.New[float32](cfg.Init(weightRaw, key), backend)

	l := &Linear[B]{
		inFeatures:  cfg.InFeatures,
		outFeatures: cfg.OutFeatures,
		weight:      newLeaf("weight", weight, !cfg.FreezeWeight),
		backend:     backend,
	}

	if biasRaw != nil {
		bias := tensor.New[float32](Constant(float64(cfg.BiasValue))(biasRaw, key), backend)
		l.bias = newLeaf("bias", bias, cfg.TrainBias)
	}

	return l
}

// defaultLinearParams draws the default weight and bias from the two
// halves of key.Split2().
func defaultLinearParams(in, out int, useBias bool, key random.Key, device tensor.Device) (weight, bias *tensor.RawTensor) {
	weightKey, biasKey := key.Split2()

	shape := tensor.Shape{out, in}
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("linear: invalid features in=%d out=%d: %v", in, out, err))
	}

	bound := 1 / math.Sqrt(float64(in))
	init := Uniform(-bound, bound)

	weight = init(tensor.MustNewRaw(shape, tensor.Float32, device), weightKey)
	if useBias {
		bias = init(tensor.MustNewRaw(tensor.Shape{out}, tensor.Float32, device), biasKey)
	}
	return weight, bias
}

// Forward computes the output of the linear layer.
//
// Input [in_features] gives W·x + b with shape [out_features].
// Input [batch, in_features] gives x·Wᵀ + b with shape [batch, out_features].
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	w := l.weight.Value()

	var output *tensor.Tensor[float32, B]
	switch {
	case len(inputShape) == 1 && inputShape[0] == l.inFeatures:
		// [out, in] @ [in, 1] -> [out, 1] -> [out]
		output = w.MatMul(input.Reshape(l.inFeatures, 1)).Reshape(l.outFeatures)
	case len(inputShape) == 2 && inputShape[1] == l.inFeatures:
		// [batch, in] @ [in, out] -> [batch, out]
		output = input.MatMul(w.T())
	default:
		panic(fmt.Sprintf("Linear.Forward: expected input [%d] or [batch, %d], got shape %v",
			l.inFeatures, l.inFeatures, inputShape))
	}

	if l.bias != nil {
		// [out] broadcasts over the batch dimension.
		output = output.Add(l.bias.Value())
	}

	return output
}

// Parameters returns the trainable parameters of this layer.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return trainableParameters(l.Leaves()...)
}

// Leaves returns the weight and, if present, the bias, trainable or not.
func (l *Linear[B]) Leaves() []Leaf[B] {
	if l.bias != nil {
		return []Leaf[B]{l.weight, l.bias}
	}
	return []Leaf[B]{l.weight}
}

// Weight returns the weight leaf.
func (l *Linear[B]) Weight() Leaf[B] {
	return l.weight
}

// Bias returns the bias leaf, or nil if the layer has no bias.
func (l *Linear[B]) Bias() Leaf[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of leaf names to raw tensors.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, leaf := range l.Leaves() {
		stateDict[leaf.Name()] = leaf.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict copies parameters from a state dictionary.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, leaf := range l.Leaves() {
		if err := loadLeaf(leaf, stateDict); err != nil {
			return err
		}
	}
	return nil
}

func loadLeaf[B tensor.Backend](leaf Leaf[B], stateDict map[string]*tensor.RawTensor) error {
	raw, ok := stateDict[leaf.Name()]
	if !ok {
		return fmt.Errorf("%s: %w", leaf.Name(), ErrMissingTensor)
	}

	dst := leaf.Tensor()
	if !raw.Shape().Equal(dst.Shape()) {
		return fmt.Errorf("%s: expected %v, got %v: %w", leaf.Name(), dst.Shape(), raw.Shape(), ErrShapeMismatch)
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s: expected float32, got %v: %w", leaf.Name(), raw.DType(), ErrDTypeMismatch)
	}

	copy(dst.Data(), raw.AsFloat32())
	return nil
}

// prefixed returns stateDict with every key prefixed.
func prefixed(prefix string, stateDict map[string]*tensor.RawTensor) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor, len(stateDict))
	for name, raw := range stateDict {
		out[prefix+name] = raw
	}
	return out
}

// unprefixed returns the entries of stateDict under prefix, with the prefix removed.
func unprefixed(prefix string, stateDict map[string]*tensor.RawTensor) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			out[rest] = raw
		}
	}
	return out
}

// mergeStateDicts combines state dicts of sublayers.
func mergeStateDicts(dicts ...map[string]*tensor.RawTensor) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for _, d := range dicts {
		maps.Copy(out, d)
	}
	return out
}

// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Errors returned by LoadStateDict.
var (
	ErrMissingTensor = nn.ErrMissingTensor
	ErrShapeMismatch = nn.ErrShapeMismatch
	ErrDTypeMismatch = nn.ErrDTypeMismatch
)

// Layers

// Linear is an affine layer with configurable initialization and trainability.
type Linear[B tensor.Backend] = nn.Linear[B]

// LinearConfig configures a Linear layer. Its zero value (apart from the
// feature counts) gives a trainable Xavier-initialized weight and a frozen
// zero bias.
type LinearConfig = nn.LinearConfig

// NewLinear creates a new linear layer. Construction is deterministic in key.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(nn.LinearConfig{
//	    InFeatures:  784,
//	    OutFeatures: 128,
//	    Init:        nn.LecunNormal(),
//	    TrainBias:   true,
//	}, random.NewKey(0), backend)
func NewLinear[B tensor.Backend](cfg LinearConfig, key random.Key, backend B) *Linear[B] {
	return nn.NewLinear(cfg, key, backend)
}

// Models

// MLP is a two-layer perceptron y = fc2(act(fc1(x))) / hidden.
type MLP[B tensor.Backend] = nn.MLP[B]

// MLPConfig configures an MLP.
type MLPConfig[B tensor.Backend] = nn.MLPConfig[B]

// NewMLP creates a new MLP. fc1 and fc2 are built from the two halves of key.
func NewMLP[B tensor.Backend](cfg MLPConfig[B], key random.Key, backend B) *MLP[B] {
	return nn.NewMLP(cfg, key, backend)
}

// SCM is a soft committee machine: the mean of act(fc1(x)) over hidden units.
type SCM[B tensor.Backend] = nn.SCM[B]

// SCMConfig configures an SCM.
type SCMConfig[B tensor.Backend] = nn.SCMConfig[B]

// NewSCM creates a new soft committee machine.
//
// Example:
//
//	model := nn.NewSCM(nn.SCMConfig[Backend]{
//	    InFeatures:     100,
//	    HiddenFeatures: 2,
//	    Act:            nn.Activation[Backend](nn.NewErf[Backend]().Forward),
//	}, random.NewKey(0), backend)
func NewSCM[B tensor.Backend](cfg SCMConfig[B], key random.Key, backend B) *SCM[B] {
	return nn.NewSCM(cfg, key, backend)
}

// GatedNet averages gate(x) * fc1(x) over hidden units.
type GatedNet[B tensor.Backend] = nn.GatedNet[B]

// GatedNetConfig configures a GatedNet.
type GatedNetConfig[B tensor.Backend] = nn.GatedNetConfig[B]

// Gate computes per-hidden-unit multipliers from the network input.
type Gate[B tensor.Backend] = nn.Gate[B]

// NewGatedNet creates a new gated network.
func NewGatedNet[B tensor.Backend](cfg GatedNetConfig[B], key random.Key, backend B) *GatedNet[B] {
	return nn.NewGatedNet(cfg, key, backend)
}

// ConstantGate returns a gate that opens every unit by value.
func ConstantGate[B tensor.Backend](value float32) Gate[B] {
	return nn.ConstantGate[B](value)
}

// Activation functions

// Activation is an element-wise function used between layers.
type Activation[B tensor.Backend] = nn.Activation[B]

// Identity returns the identity activation.
func Identity[B tensor.Backend]() Activation[B] {
	return nn.Identity[B]()
}

// ParseActivation returns the activation named by name:
// identity (or "" / linear), relu, sigmoid, tanh or erf.
func ParseActivation[B tensor.Backend](name string) (Activation[B], error) {
	return nn.ParseActivation[B](name)
}

// ReLU represents the Rectified Linear Unit activation function.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid represents the Sigmoid activation function.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh represents the hyperbolic tangent activation function.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a new Tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Erf represents the scaled error function erf(x/√2).
type Erf[B tensor.Backend] = nn.Erf[B]

// NewErf creates a new Erf activation.
func NewErf[B tensor.Backend]() *Erf[B] {
	return nn.NewErf[B]()
}

// Loss functions

// MSELoss represents Mean Squared Error loss.
type MSELoss[B tensor.Backend] = nn.MSELoss[B]

// NewMSELoss creates a new MSE loss function.
//
// Example:
//
//	criterion := nn.NewMSELoss(backend)
//	loss := criterion.Forward(predictions, targets)
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return nn.NewMSELoss(backend)
}

// NewHalfMSELoss creates an MSE loss scaled by ½.
func NewHalfMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return nn.NewHalfMSELoss(backend)
}

// Initializers

// Initializer returns a new tensor shaped like existing, drawn from key.
type Initializer = nn.Initializer

// InitOption configures an Initializer.
type InitOption = nn.InitOption

// WithScale sets the variance scale (default: 1).
func WithScale(scale float64) InitOption {
	return nn.WithScale(scale)
}

// WithStddev sets the standard deviation of TruncNormal (default: 1).
func WithStddev(stddev float64) InitOption {
	return nn.WithStddev(stddev)
}

// WithBounds sets the truncation bounds in standard deviations (default: -2, 2).
func WithBounds(lower, upper float64) InitOption {
	return nn.WithBounds(lower, upper)
}

// TruncNormal samples a truncated normal distribution.
func TruncNormal(opts ...InitOption) Initializer {
	return nn.TruncNormal(opts...)
}

// LecunNormal samples a truncated normal with variance scale/fan_in.
func LecunNormal(opts ...InitOption) Initializer {
	return nn.LecunNormal(opts...)
}

// XavierNormal samples a normal with variance 2·scale/(fan_in + fan_out).
func XavierNormal(opts ...InitOption) Initializer {
	return nn.XavierNormal(opts...)
}

// Uniform samples U(low, high).
func Uniform(low, high float64) Initializer {
	return nn.Uniform(low, high)
}

// Constant fills with value.
func Constant(value float64) Initializer {
	return nn.Constant(value)
}

// Zeros fills with zeros.
func Zeros() Initializer {
	return nn.Zeros()
}

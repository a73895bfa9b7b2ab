// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] = nn.Module[B]

// Model is a Module whose state can be exported and restored:
//   - StateDict: every leaf, trainable or frozen, by dotted name
//   - LoadStateDict: copy tensors back, failing on missing names or mismatched shapes
//
// Linear, MLP, SCM and GatedNet implement Model.
type Model[B tensor.Backend] = nn.Model[B]

// Leaf is a named model tensor: a trainable Parameter or a frozen StopGradient.
//
// Methods:
//
//	Name() string
//	    Returns the leaf name (e.g., "weight", "bias").
//
//	Tensor() *tensor.Tensor[float32, B]
//	    Returns the stored tensor.
//
//	Value() *tensor.Tensor[float32, B]
//	    Returns the tensor to use in a forward pass. For frozen leaves no
//	    gradient flows back through it.
//
//	Trainable() bool
//	    Reports whether optimizers update the leaf.
type Leaf[B tensor.Backend] = nn.Leaf[B]

// Parameter represents a trainable parameter in a neural network.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad()  // nil until an optimizer step records it
//
// Note: Parameter is implemented as a type alias because it is used as a return type
// in the Module interface. Go's type system requires exact type matches for interface
// implementations, so we cannot use an interface here.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new trainable parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// StopGradient is a frozen leaf: it contributes its value to the forward
// pass and receives zero gradient.
type StopGradient[B tensor.Backend] = nn.StopGradient[B]

// NewStopGradient wraps t as a frozen leaf.
func NewStopGradient[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *StopGradient[B] {
	return nn.NewStopGradient(name, t)
}

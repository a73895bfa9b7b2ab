// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network building blocks of netdyn.
//
// # Overview
//
// This package contains:
//   - Linear: affine layer with configurable initialization and trainability
//   - MLP, SCM, GatedNet: two-layer models for studying learning dynamics
//   - Parameter and StopGradient leaves
//   - Activations: Identity, ReLU, Sigmoid, Tanh, Erf
//   - Initializers: TruncNormal, LecunNormal, XavierNormal, Uniform, Constant
//   - MSELoss
//
// # Basic Usage
//
//	import (
//	    "github.com/netdyn/netdyn/autodiff"
//	    "github.com/netdyn/netdyn/backend/cpu"
//	    "github.com/netdyn/netdyn/nn"
//	    "github.com/netdyn/netdyn/random"
//	)
//
//	type Backend = *autodiff.Backend[*cpu.Backend]
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//
//	    act, _ := nn.ParseActivation[Backend]("erf")
//	    model := nn.NewSCM(nn.SCMConfig[Backend]{
//	        InFeatures:     100,
//	        HiddenFeatures: 2,
//	        Act:            act,
//	    }, random.NewKey(0), backend)
//
//	    y := model.Forward(x)  // x: (batch, 100), y: (batch)
//	}
//
// # Trainability
//
// Every model tensor is a Leaf. Trainable leaves are Parameters and are
// returned by Module.Parameters. Frozen leaves are StopGradients: their
// value is used in the forward pass but no gradient reaches them, and
// optimizers never see them. Linear freezes its bias by default.
//
// # Determinism
//
// Construction is deterministic given a random.Key. MLP splits its key
// between fc1 and fc2. Linear reuses its key for the default draw and the
// custom initializer, so the two are correlated.
//
// # State Dicts
//
// Models expose StateDict and LoadStateDict with dotted names
// ("fc1.weight", "fc2.bias"). Use the serialization package to write them
// to SafeTensors files.
package nn

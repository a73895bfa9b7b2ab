// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction and decoupled weight decay
//   - Optimizer interface for custom optimizers
//
// Optimizers only receive trainable parameters. Leaves frozen through
// nn.LinearConfig (FreezeWeight, TrainBias unset) are never updated.
//
// # Training Loop Pattern
//
//	backend := autodiff.New(cpu.New())
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
//	mse := nn.NewMSELoss(backend)
//
//	for step := range numSteps {
//	    backend.Tape().StartRecording()
//
//	    // 1. Zero gradients
//	    optimizer.ZeroGrad()
//
//	    // 2. Forward pass
//	    loss := mse.Forward(model.Forward(x), y)
//
//	    // 3. Backward pass
//	    grads := autodiff.Backward(loss, backend)
//
//	    // 4. Update parameters
//	    optimizer.Step(grads)
//	    backend.Tape().Clear()
//	}
//
// The train package wraps this loop for teacher-student experiments.
package optim

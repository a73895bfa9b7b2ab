// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Matrix multiplication through gonum BLAS
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//   - ReLU, Sigmoid, Tanh and Erf activation kernels
//
// # Basic Usage
//
//	import (
//	    "github.com/netdyn/netdyn/backend/cpu"
//	    "github.com/netdyn/netdyn/nn"
//	    "github.com/netdyn/netdyn/random"
//	    "github.com/netdyn/netdyn/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    layer := nn.NewLinear(nn.LinearConfig{InFeatures: 3, OutFeatures: 4}, random.NewKey(0), backend)
//	    y := layer.Forward(x)  // (2, 4)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu

// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for netdyn.
//
// # Overview
//
// Tensors are the fundamental data structure in netdyn. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting
//   - The Backend interface implemented by backend/cpu and autodiff
//
// # Basic Usage
//
//	import (
//	    "github.com/netdyn/netdyn/tensor"
//	    "github.com/netdyn/netdyn/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    w := tensor.Full[float32](tensor.Shape{4, 3}, 0.5, backend)
//	    y := x.MatMul(w.T()) // (2, 4)
//	}
//
// # Supported Data Types
//
// Models are float32. float64 is available for numerical reference checks
// and optimizer counters.
//
// # Broadcasting
//
// Element-wise operations follow NumPy broadcasting rules:
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)     // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)      // (3, 4)
//	c := a.Add(b)                                                // (3, 4)
//
// # Available Operations
//
// Arithmetic:
//
//	z := x.Add(y)            // also Sub, Mul, Div
//	z := x.MatMul(y)         // (M, K) @ (K, N)
//
// Scalar operations:
//
//	y := x.MulScalar(2.0)    // Multiply by scalar
//	y := x.AddScalar(1.0)    // Add scalar
//	y := x.DivScalar(2.0)    // Divide by scalar
//
// Shape operations:
//
//	y := x.Reshape(6)        // Reshape
//	y := x.T()               // Reverse dimensions
//	y := x.Expand(shape)     // Broadcast to shape
//
// Reductions:
//
//	s := x.Sum()             // 0-D total
//	m := x.MeanDim(-1, false)
//
// Activations (ReLU, Sigmoid, Tanh, Erf) are provided by nn and require a
// backend implementing ActivationBackend.
package tensor

// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape. It wraps any backend to add autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/netdyn/netdyn/autodiff"
//	    "github.com/netdyn/netdyn/backend/cpu"
//	    "github.com/netdyn/netdyn/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    x := tensor.Full[float32](tensor.Shape{3}, 2, backend)
//	    y := x.Mul(x).Sum()  // Operations recorded on tape
//
//	    grads := autodiff.Backward(y, backend)
//	    dx := grads[x.Raw()]  // [4, 4, 4]
//	}
//
// Tensors passed through StopGradient, and tensors that do not influence
// the output, are absent from the gradient map: their gradient is zero.
package autodiff

import (
	"github.com/netdyn/netdyn/internal/autodiff"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of t with respect to every recorded input.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}

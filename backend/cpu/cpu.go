// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/netdyn/netdyn/internal/backend/cpu"
	"github.com/netdyn/netdyn/tensor"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go implementations of all tensor operations,
// with matrix multiplication delegated to gonum BLAS.
type Backend = internalcpu.CPUBackend

// Compile-time checks that Backend implements the backend interfaces.
var (
	_ tensor.Backend           = (*Backend)(nil)
	_ tensor.ActivationBackend = (*Backend)(nil)
)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/netdyn/netdyn/backend/cpu"
//	    "github.com/netdyn/netdyn/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

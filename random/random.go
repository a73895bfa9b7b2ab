// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package random provides splittable random keys for deterministic model
// construction.
//
// A Key is an immutable seed. Splitting a key yields independent child
// keys, and the same key always yields the same children and the same
// random stream.
//
// Example:
//
//	key := random.NewKey(42)
//	teacherKey, studentKey := key.Split2()
//	batchKey := key.FoldIn(uint64(step))
package random

import (
	"github.com/netdyn/netdyn/internal/random"
)

// Key is a splittable random seed.
type Key = random.Key

// NewKey creates a key from a seed.
func NewKey(seed uint64) Key {
	return random.NewKey(seed)
}

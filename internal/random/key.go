// Package random provides a splittable, deterministic randomness source.
//
// A Key is an immutable seed. Consumers never advance a shared generator:
// they split a key into independent children, or open a fresh stream
// from a key with Source. The same key always yields the same children
// and the same stream.
//
// Example:
//
//	key := random.NewKey(0)
//	wKey, bKey := key.Split2()
//	rng := rand.New(wKey.Source())
package random

import (
	"fmt"
	"math/rand/v2"
)

// Stream-selection constants for the two kinds of derivation.
const (
	splitStream  = 0x9e3779b97f4a7c15
	foldInStream = 0xbf58476d1ce4e5b9
)

// Key is an opaque splittable seed made of two 64-bit words.
type Key struct {
	hi, lo uint64
}

// NewKey creates a key from an integer seed.
func NewKey(seed uint64) Key {
	s := seed
	return Key{hi: splitmix64(&s), lo: splitmix64(&s)}
}

// Split derives n child keys.
// Panics if n is negative.
func (k Key) Split(n int) []Key {
	if n < 0 {
		panic(fmt.Sprintf("random: split count must be non-negative, got %d", n))
	}

	pcg := rand.NewPCG(k.hi, k.lo^splitStream)
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = Key{hi: pcg.Uint64(), lo: pcg.Uint64()}
	}
	return keys
}

// Split2 derives two child keys.
func (k Key) Split2() (Key, Key) {
	keys := k.Split(2)
	return keys[0], keys[1]
}

// FoldIn derives a key bound to data, e.g. a step number.
func (k Key) FoldIn(data uint64) Key {
	s := k.hi ^ data
	hi := splitmix64(&s)
	s = k.lo ^ foldInStream ^ hi
	return Key{hi: hi, lo: splitmix64(&s)}
}

// Source returns a fresh PCG stream seeded by k.
func (k Key) Source() rand.Source {
	return rand.NewPCG(k.hi, k.lo)
}

// Rand returns a fresh generator over Source.
func (k Key) Rand() *rand.Rand {
	return rand.New(k.Source())
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("Key[%016x%016x]", k.hi, k.lo)
}

func splitmix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

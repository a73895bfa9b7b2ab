// Copyright 2025 The netdyn Authors. All rights reserved.
// Derived from the Born ML Framework, Copyright 2025 Born ML Framework.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialization saves and loads model state dicts as SafeTensors files.
//
// Example:
//
//	err := serialization.WriteFile("student.safetensors", model.StateDict(), map[string]string{
//	    "model": "scm",
//	})
//
//	ckpt, err := serialization.ReadFile("student.safetensors")
//	err = model.LoadStateDict(ckpt.Tensors)
package serialization

import (
	"io"

	"github.com/netdyn/netdyn/internal/serialization"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Checkpoint is the decoded content of a SafeTensors file.
type Checkpoint = serialization.Checkpoint

// ValidationError describes a malformed file.
type ValidationError = serialization.ValidationError

// Errors returned when reading malformed or corrupted files.
var (
	ErrChecksumMismatch  = serialization.ErrChecksumMismatch
	ErrOffsetOverlap     = serialization.ErrOffsetOverlap
	ErrOutOfBounds       = serialization.ErrOutOfBounds
	ErrInvalidTensorName = serialization.ErrInvalidTensorName
	ErrHeaderTooLarge    = serialization.ErrHeaderTooLarge
	ErrUnsupportedDType  = serialization.ErrUnsupportedDType
)

// Write encodes a state dict in SafeTensors format.
func Write(w io.Writer, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	return serialization.Write(w, stateDict, metadata)
}

// WriteFile writes a state dict to path.
func WriteFile(path string, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	return serialization.WriteFile(path, stateDict, metadata)
}

// Read decodes a SafeTensors stream.
func Read(r io.Reader) (*Checkpoint, error) {
	return serialization.Read(r)
}

// ReadFile reads a SafeTensors file.
func ReadFile(path string) (*Checkpoint, error) {
	return serialization.ReadFile(path)
}

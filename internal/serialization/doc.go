// Package serialization saves and loads model state dicts as SafeTensors files.
//
// SafeTensors is the HuggingFace tensor container:
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON object, tensor name -> {dtype, shape, data_offsets}]
//	  [Tensor data: raw little-endian bytes]
//
// The optional "__metadata__" header entry holds string metadata. Writers
// in this package add a "sha256" entry with the checksum of the data
// section; readers verify it when present. F32 and F64 tensors are supported.
//
// Example usage:
//
//	// Save a model
//	err := serialization.WriteFile("scm.safetensors", model.StateDict(), map[string]string{
//	    "model": "scm",
//	})
//
//	// Load it back
//	ckpt, err := serialization.ReadFile("scm.safetensors")
//	if err != nil {
//	    return err
//	}
//	err = model.LoadStateDict(ckpt.Tensors)
package serialization

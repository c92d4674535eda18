// Package serialization stores trained networks in a compact binary file.
//
//	Format Structure:
//	  [4 bytes: Magic "DNET"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [4 bytes: Reserved]
//	  [8 bytes: Header size (uint64 LE)]
//	  [8 bytes: Data size (uint64 LE)]
//	  [32 bytes: SHA-256 of the data section]
//	  [Header: JSON metadata]
//	  [Padding to a 64-byte boundary]
//	  [Tensor data: float64 LE, row-major]
//
// The JSON header carries the structure, learning rate and normalization
// rule together with a tensor table naming each layer's weights and bias
// ("layers.<i>.weights", "layers.<i>.bias").
//
// Example usage:
//
//	id, err := serialization.SaveFile("model.dnet", net, map[string]string{"dataset": "mnist"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	restored, header, err := serialization.LoadFile("model.dnet")
package serialization

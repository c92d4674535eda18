// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialization saves and loads networks in the .dnet format.
//
// A .dnet file holds a 64-byte fixed header with a SHA-256 checksum, a JSON
// header describing the network and its tensors, and little-endian float64
// tensor data aligned to 64 bytes.
//
//	id, err := serialization.Save("model.dnet", net, map[string]string{"dataset": "mnist"})
//	net, header, err := serialization.Load("model.dnet")
package serialization

import (
	"io"

	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serialization"
)

// Header is the decoded JSON header of a .dnet file.
type Header = serialization.Header

// TensorMeta describes one tensor in the data section.
type TensorMeta = serialization.TensorMeta

// ReaderOptions configures Read.
type ReaderOptions = serialization.ReaderOptions

// ValidationError describes a structural problem in a file.
type ValidationError = serialization.ValidationError

// Errors
var (
	ErrChecksumMismatch   = serialization.ErrChecksumMismatch
	ErrInvalidMagic       = serialization.ErrInvalidMagic
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion
	ErrMissingTensor      = serialization.ErrMissingTensor
	ErrHeaderTooLarge     = serialization.ErrHeaderTooLarge
	ErrDataTooLarge       = serialization.ErrDataTooLarge
	ErrInvalidShape       = serialization.ErrInvalidShape
)

// Save writes net to path and returns the generated model id.
func Save(path string, net *nn.Network, metadata map[string]string) (string, error) {
	return serialization.SaveFile(path, net, metadata)
}

// Load reads a network from path.
func Load(path string) (*nn.Network, *Header, error) {
	return serialization.LoadFile(path)
}

// Write encodes a snapshot to w and returns the generated model id.
func Write(w io.Writer, snap nn.Snapshot, metadata map[string]string) (string, error) {
	return serialization.WriteSnapshot(w, snap, metadata)
}

// Read decodes a snapshot from r.
func Read(r io.Reader, opts ReaderOptions) (nn.Snapshot, *Header, error) {
	return serialization.ReadSnapshotWithOptions(r, opts)
}

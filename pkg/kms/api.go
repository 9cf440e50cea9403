/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package kms provides the key abstraction used by the credential engine.
//
// A Key comes in one of three variants forming a progressive trust model:
// a direct key holds private material and signs locally, a signer-backed key
// delegates signing to an external Signer (e.g. a vault or a remote KMS), and
// a public-only key can merely verify. The credential engine never branches
// on the variant; it only checks CanSign().
package kms

import "errors"

// ErrNoSigningMaterial is returned by Key.Sign when the key holds neither
// private material nor a signing delegate.
var ErrNoSigningMaterial = errors.New("key has no signing material")

// KeyType represents a key algorithm family.
type KeyType string

// ED25519Type is the key type of Ed25519 keys.
const ED25519Type KeyType = "Ed25519"

// Signer is a signing delegate for signer-backed keys.
type Signer interface {
	// Sign signs the message and returns the signature.
	Sign(msg []byte) ([]byte, error)
}

// PublicKeyExporter is implemented by signers able to export their raw public key bytes.
type PublicKeyExporter interface {
	// PublicKeyBytes returns the raw public key bytes.
	PublicKeyBytes() ([]byte, error)
}

/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

type keyKind int

const (
	kindDirect keyKind = iota
	kindSignerBacked
	kindPublicOnly
)

// Key is a cryptographic identity with one of three capability levels:
// direct (holds private material), signer-backed (delegates signing) and
// public-only (verification only). A key is created once and can only be
// downgraded via ToPublicKey, never upgraded.
type Key struct {
	ID        string
	Type      KeyType
	PublicKey []byte
	Metadata  map[string]interface{}

	kind       keyKind
	privateKey ed25519.PrivateKey
	signer     Signer
}

// Create generates a new direct Ed25519 key.
func Create() (*Key, error) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}

	return &Key{
		ID:         uuid.New().String(),
		Type:       ED25519Type,
		PublicKey:  pubKey,
		kind:       kindDirect,
		privateKey: privKey,
	}, nil
}

// NewDirectKey creates a direct key from existing Ed25519 private key material.
func NewDirectKey(keyID string, privateKey ed25519.PrivateKey) (*Key, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("bad ed25519 private key length %d", len(privateKey))
	}

	if keyID == "" {
		keyID = uuid.New().String()
	}

	return &Key{
		ID:         keyID,
		Type:       ED25519Type,
		PublicKey:  privateKey.Public().(ed25519.PublicKey),
		kind:       kindDirect,
		privateKey: privateKey,
	}, nil
}

// NewSignerBackedKey creates a key that delegates signing to the given signer.
// The key holds no private material; publicKey is the raw public key matching
// the delegate's signatures. If the signer can export its public key and
// publicKey is nil, the exported bytes are used.
func NewSignerBackedKey(keyID string, publicKey []byte, signer Signer) (*Key, error) {
	if signer == nil {
		return nil, fmt.Errorf("signer is not defined")
	}

	if publicKey == nil {
		exporter, ok := signer.(PublicKeyExporter)
		if !ok {
			return nil, fmt.Errorf("public key is not defined and signer cannot export one")
		}

		exported, err := exporter.PublicKeyBytes()
		if err != nil {
			return nil, fmt.Errorf("export public key from signer: %w", err)
		}

		publicKey = exported
	}

	if keyID == "" {
		keyID = uuid.New().String()
	}

	return &Key{
		ID:        keyID,
		Type:      ED25519Type,
		PublicKey: publicKey,
		kind:      kindSignerBacked,
		signer:    signer,
	}, nil
}

// NewPublicKey creates a public-only key from raw public key material.
func NewPublicKey(keyID string, publicKey []byte) (*Key, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("bad ed25519 public key length %d", len(publicKey))
	}

	if keyID == "" {
		keyID = uuid.New().String()
	}

	return &Key{
		ID:        keyID,
		Type:      ED25519Type,
		PublicKey: publicKey,
		kind:      kindPublicOnly,
	}, nil
}

// CanSign reports whether the key is able to produce signatures.
func (k *Key) CanSign() bool {
	return k.kind == kindDirect || k.kind == kindSignerBacked
}

// Sign signs data. A direct key signs with its private material, a
// signer-backed key forwards to the delegate, and a public-only key
// returns ErrNoSigningMaterial.
func (k *Key) Sign(data []byte) ([]byte, error) {
	switch k.kind {
	case kindDirect:
		return ed25519.Sign(k.privateKey, data), nil
	case kindSignerBacked:
		signature, err := k.signer.Sign(data)
		if err != nil {
			return nil, fmt.Errorf("delegate signing failed: %w", err)
		}

		return signature, nil
	default:
		return nil, ErrNoSigningMaterial
	}
}

// Verify checks the signature over data against the key's public material.
// It is available on all variants and returns false on malformed input
// rather than erroring.
func (k *Key) Verify(data, signature []byte) bool {
	if len(k.PublicKey) != ed25519.PublicKeySize {
		return false
	}

	return ed25519.Verify(k.PublicKey, data, signature)
}

// ToPublicKey returns a public-only copy of the key. The transform is one-way:
// identity and public fields are copied, private material and the signing
// delegate are dropped.
func (k *Key) ToPublicKey() *Key {
	pubCopy := make([]byte, len(k.PublicKey))
	copy(pubCopy, k.PublicKey)

	var metaCopy map[string]interface{}

	if k.Metadata != nil {
		metaCopy = make(map[string]interface{}, len(k.Metadata))
		for name, value := range k.Metadata {
			metaCopy[name] = value
		}
	}

	return &Key{
		ID:        k.ID,
		Type:      k.Type,
		PublicKey: pubCopy,
		Metadata:  metaCopy,
		kind:      kindPublicOnly,
	}
}

/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package localkms provides a Tink-backed local key management service.
// It implements the kms.Signer contract, so a signer-backed kms.Key can
// delegate its signing here, and it is a capability provider exposing
// sign/verify/getPublicKey for consumers acquiring operations at runtime.
package localkms

import (
	"bytes"
	"fmt"

	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/signature"
	"github.com/google/uuid"

	"github.com/attestify/vc-framework-go/pkg/capability"
	"github.com/attestify/vc-framework-go/pkg/crypto/tinkcrypto"
)

// LocalKMS is a local Ed25519 key management service based on a Tink keyset.
// Signatures are produced without the Tink output prefix, so they are plain
// Ed25519 signatures verifiable against the exported raw public key.
type LocalKMS struct {
	keyID     string
	handle    *keyset.Handle
	pubHandle *keyset.Handle
	crypto    *tinkcrypto.Crypto
}

// New creates a LocalKMS with a freshly generated Ed25519 keyset.
func New() (*LocalKMS, error) {
	handle, err := keyset.NewHandle(signature.ED25519KeyWithoutPrefixTemplate())
	if err != nil {
		return nil, fmt.Errorf("create ed25519 keyset handle: %w", err)
	}

	return newLocalKMS(handle)
}

func newLocalKMS(handle *keyset.Handle) (*LocalKMS, error) {
	pubHandle, err := handle.Public()
	if err != nil {
		return nil, fmt.Errorf("get public keyset handle: %w", err)
	}

	crypto, err := tinkcrypto.New()
	if err != nil {
		return nil, fmt.Errorf("create tink crypto: %w", err)
	}

	return &LocalKMS{
		keyID:     uuid.New().String(),
		handle:    handle,
		pubHandle: pubHandle,
		crypto:    crypto,
	}, nil
}

// KeyID returns the service key identifier.
func (l *LocalKMS) KeyID() string {
	return l.keyID
}

// Sign signs msg with the private keyset.
func (l *LocalKMS) Sign(msg []byte) ([]byte, error) {
	return l.crypto.Sign(msg, l.handle)
}

// Verify verifies sig over msg with the public keyset.
func (l *LocalKMS) Verify(msg, sig []byte) error {
	return l.crypto.Verify(sig, msg, l.pubHandle)
}

// PublicKeyBytes exports the raw public key bytes of the keyset's primary key.
func (l *LocalKMS) PublicKeyBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	err := l.pubHandle.WriteWithNoSecrets(NewWriter(buf))
	if err != nil {
		return nil, fmt.Errorf("export public key bytes: %w", err)
	}

	return buf.Bytes(), nil
}

// Capabilities returns the sign/verify/getPublicKey contract backed by this service.
func (l *LocalKMS) Capabilities() capability.Contract {
	return capability.Contract{
		ProviderID: "localkms:" + l.keyID,
		Operations: map[string]interface{}{
			capability.OpSign:   capability.SignFunc(l.Sign),
			capability.OpVerify: capability.VerifyFunc(l.Verify),
			capability.OpGetPublicKey: capability.GetPublicKeyFunc(func() ([]byte, error) {
				return l.PublicKeyBytes()
			}),
		},
	}
}

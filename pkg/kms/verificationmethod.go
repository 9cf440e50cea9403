/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"crypto/ed25519"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	jose "github.com/go-jose/go-jose/v3"
	"github.com/multiformats/go-multibase"
)

// VerificationMethod is the DID document representation of a public key.
type VerificationMethod struct {
	ID                 string           `json:"id,omitempty"`
	Type               string           `json:"type,omitempty"`
	Controller         string           `json:"controller,omitempty"`
	PublicKeyBase58    string           `json:"publicKeyBase58,omitempty"`
	PublicKeyMultibase string           `json:"publicKeyMultibase,omitempty"`
	PublicKeyJwk       *jose.JSONWebKey `json:"publicKeyJwk,omitempty"`
}

// VerificationMethod produces the DID document verification method for the key,
// controlled by the given controller DID. The transform is pure: it reads only
// identity and public fields.
func (k *Key) VerificationMethod(controller string) (*VerificationMethod, error) {
	multibaseKey, err := multibase.Encode(multibase.Base58BTC, k.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("multibase encode public key: %w", err)
	}

	return &VerificationMethod{
		ID:                 controller + "#" + k.ID,
		Type:               fmt.Sprintf("%sVerificationKey2020", k.Type),
		Controller:         controller,
		PublicKeyBase58:    base58.Encode(k.PublicKey),
		PublicKeyMultibase: multibaseKey,
		PublicKeyJwk: &jose.JSONWebKey{
			KeyID:     k.ID,
			Key:       ed25519.PublicKey(k.PublicKey),
			Algorithm: "EdDSA",
		},
	}, nil
}

/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"errors"
	"fmt"
	"strings"
)

// Expected failure modes of credential issuance and verification. Callers
// branch on these with errors.Is/errors.As; they are never raised as panics.
var (
	// ErrMissingCapability is returned by Issue when neither a signing key
	// nor learned sign/getPublicKey capabilities are available.
	ErrMissingCapability = errors.New("no signing capability available")

	// ErrUnsupportedProofFormat is returned by Verify when the credential
	// proof is not of the JwtProof2020 type.
	ErrUnsupportedProofFormat = errors.New("unsupported proof format")

	// ErrMalformedProof is returned by Verify when the proof JWT cannot be parsed.
	ErrMalformedProof = errors.New("malformed proof")

	// ErrInvalidSignature is returned by Verify when the proof signature does
	// not match the verification key.
	ErrInvalidSignature = errors.New("invalid proof signature")

	// ErrCredentialExpired is returned by Verify when the proof's exp claim is
	// in the past.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrUnexpectedIssuer is returned by Verify when the credential issuer does
	// not match the expected one supplied by the caller.
	ErrUnexpectedIssuer = errors.New("unexpected credential issuer")
)

// FieldMismatchError is returned by Verify when an outer credential field does
// not match the signed copy embedded in the proof. It indicates tampering with
// the credential envelope after issuance.
type FieldMismatchError struct {
	Field string
}

// Error returns the error message.
func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("credential field %q does not match the signed value", e.Field)
}

// StructuralValidationError is returned by Validate when a candidate credential
// document does not conform to the base JSON schema.
type StructuralValidationError struct {
	Descriptions []string
}

// Error returns the error message.
func (e *StructuralValidationError) Error() string {
	return "verifiable credential is not valid:\n- " + strings.Join(e.Descriptions, "\n- ")
}

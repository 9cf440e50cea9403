/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-jose/go-jose/v3/json"

	"github.com/attestify/vc-framework-go/pkg/capability"
	"github.com/attestify/vc-framework-go/pkg/doc/jwt"
)

// VerificationResult describes the outcome of a successful credential
// verification.
type VerificationResult struct {
	Verified       bool
	Issuer         string
	Subject        string
	IssuanceDate   time.Time
	ExpirationDate *time.Time
}

// verifyOpts holds options for credential verification.
type verifyOpts struct {
	expectedIssuer   string
	disabledExpCheck bool
}

// VerifyOpt is a credential verification option.
type VerifyOpt func(*verifyOpts)

// WithExpectedIssuer requires the credential's signed issuer claim to match
// the given issuer ID.
func WithExpectedIssuer(issuerID string) VerifyOpt {
	return func(o *verifyOpts) {
		o.expectedIssuer = issuerID
	}
}

// WithoutExpirationCheck disables the expiration date check.
func WithoutExpirationCheck() VerifyOpt {
	return func(o *verifyOpts) {
		o.disabledExpCheck = true
	}
}

// Verify checks the credential's proof. The checks run in a fixed order and
// the first failure wins: proof format, proof parsing, signature, binding of
// credential fields to the signed claims, expiration and, if requested, the
// expected issuer.
func (e *Engine) Verify(vc *Credential, opts ...VerifyOpt) (*VerificationResult, error) {
	vOpts := &verifyOpts{}

	for _, opt := range opts {
		opt(vOpts)
	}

	if vc.Proof == nil || vc.Proof.Type != JwtProof2020 {
		return nil, ErrUnsupportedProofFormat
	}

	token, err := jwt.Parse(vc.Proof.JWT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
	}

	if err := e.verifySignature(token); err != nil {
		return nil, err
	}

	if err := checkFieldBinding(vc, token); err != nil {
		return nil, err
	}

	if !vOpts.disabledExpCheck {
		if err := e.checkExpiration(token); err != nil {
			return nil, err
		}
	}

	issuer, _ := token.Payload["iss"].(string)

	if vOpts.expectedIssuer != "" && issuer != vOpts.expectedIssuer {
		return nil, fmt.Errorf("%w: credential issued by %q", ErrUnexpectedIssuer, issuer)
	}

	logger.Debugf("verified credential %s", vc.ID)

	// a credential subject is not required to carry an ID
	subject, _ := subjectID(vc.Subject)

	result := &VerificationResult{
		Verified:       true,
		Issuer:         issuer,
		Subject:        subject,
		ExpirationDate: vc.Expired,
	}

	if vc.Issued != nil {
		result.IssuanceDate = *vc.Issued
	}

	return result, nil
}

// verifySignature checks the token signature using the first available
// verification means: the engine's key, a learned verify capability, or the
// key resolver.
func (e *Engine) verifySignature(token *jwt.JSONWebToken) error {
	signingInput := token.SigningInput()
	signature := token.Signature()

	switch {
	case e.key != nil:
		if !e.key.Verify(signingInput, signature) {
			return ErrInvalidSignature
		}
	case e.broker != nil && e.broker.Can(capability.OpVerify):
		if err := e.broker.Verify(signingInput, signature); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	case e.resolver != nil:
		if err := e.resolveAndVerify(token, signingInput, signature); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	default:
		return ErrMissingCapability
	}

	return nil
}

func (e *Engine) resolveAndVerify(token *jwt.JSONWebToken, signingInput, signature []byte) error {
	issuer, _ := token.Payload["iss"].(string)
	kid, _ := token.Headers.KeyID()

	pubKey, err := e.resolver.Resolve(issuer, kid)
	if err != nil {
		return fmt.Errorf("resolve verification key: %w", err)
	}

	return jwt.VerifyEdDSA(pubKey, signingInput, signature)
}

// checkFieldBinding ensures the credential fields match the signed vc claim.
// The comparison uses the decoded claim maps so that it is independent of
// field ordering in the serialized forms.
func checkFieldBinding(vc *Credential, token *jwt.JSONWebToken) error {
	vcClaim, ok := token.Payload["vc"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: vc claim is missing", ErrMalformedProof)
	}

	unsigned := *vc
	unsigned.Proof = nil

	vcBytes, err := json.Marshal(&unsigned)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	vcMap, err := jwt.PayloadToMap(vcBytes)
	if err != nil {
		return fmt.Errorf("read credential fields: %w", err)
	}

	for field, signedValue := range vcClaim {
		if !reflect.DeepEqual(vcMap[field], signedValue) {
			return &FieldMismatchError{Field: field}
		}
	}

	for field := range vcMap {
		if _, ok := vcClaim[field]; !ok {
			return &FieldMismatchError{Field: field}
		}
	}

	return nil
}

// checkExpiration fails if the credential expired strictly before the current
// time. A credential checked exactly at its expiration instant is still valid.
func (e *Engine) checkExpiration(token *jwt.JSONWebToken) error {
	expRaw, ok := token.Payload["exp"]
	if !ok {
		return nil
	}

	expNum, ok := expRaw.(json.Number)
	if !ok {
		return fmt.Errorf("%w: exp claim is not a number", ErrMalformedProof)
	}

	exp, err := expNum.Int64()
	if err != nil {
		return fmt.Errorf("%w: exp claim is not a number", ErrMalformedProof)
	}

	if e.now().After(time.Unix(exp, 0)) {
		return ErrCredentialExpired
	}

	return nil
}

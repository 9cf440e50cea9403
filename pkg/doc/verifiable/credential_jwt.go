/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"fmt"

	josejwt "github.com/go-jose/go-jose/v3/jwt"
)

// JWTCredClaims is JWT Claims extension by Verifiable Credential (with custom "vc" claim).
type JWTCredClaims struct {
	*josejwt.Claims

	Credential *rawCredential `json:"vc,omitempty"`
}

// newJWTCredClaims creates JWT claims of the given credential: the
// credential-without-proof is embedded under the "vc" claim, supplemented by
// the standard temporal claims jti/nbf/iss and, when the credential expires, exp.
func newJWTCredClaims(vc *Credential, issuerID string) (*JWTCredClaims, error) {
	raw, err := vc.raw()
	if err != nil {
		return nil, fmt.Errorf("build raw credential: %w", err)
	}

	// the vc claim holds a verbatim copy of the credential without its proof
	raw.Proof = nil

	if issuerID == "" {
		issuerID = vc.Issuer
	}

	jwtClaims := &josejwt.Claims{
		Issuer: issuerID,
		ID:     vc.ID,
	}

	if vc.Issued != nil {
		jwtClaims.NotBefore = josejwt.NewNumericDate(*vc.Issued)
	}

	if vc.Expired != nil {
		jwtClaims.Expiry = josejwt.NewNumericDate(*vc.Expired)
	}

	return &JWTCredClaims{
		Claims:     jwtClaims,
		Credential: raw,
	}, nil
}

// MarshalJWS serializes the JWT credential claims into signed form (JWS).
func (jcc *JWTCredClaims) MarshalJWS(signer Signer) (string, error) {
	return marshalJWS(jcc, signer)
}

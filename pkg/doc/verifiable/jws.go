/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"github.com/attestify/vc-framework-go/pkg/doc/jose"
	"github.com/attestify/vc-framework-go/pkg/doc/jwt"
)

// JWSAlgorithm is the signature algorithm name put into the JOSE alg header.
// The algorithm tag of the proof header is fixed to EdDSA and is not derived
// from the key type; deriving it would change the wire format.
const JWSAlgorithm = "EdDSA"

// Signer defines signer interface which is used to sign VC JWT.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// jwtSigner implements the jose.Signer interface.
type jwtSigner struct {
	signer  Signer
	headers jose.Headers
}

func getJWTSigner(signer Signer, algorithm string) *jwtSigner {
	headers := map[string]interface{}{
		jose.HeaderAlgorithm: algorithm,
		jose.HeaderType:      jwt.TypeJWT,
	}

	return &jwtSigner{signer: signer, headers: headers}
}

func (s jwtSigner) Sign(data []byte) ([]byte, error) {
	return s.signer.Sign(data)
}

func (s jwtSigner) Headers() jose.Headers {
	return s.headers
}

// marshalJWS serializes JWT credential claims into signed form (JWS).
func marshalJWS(jwtClaims interface{}, signer Signer) (string, error) {
	token, err := jwt.NewSigned(jwtClaims, nil, getJWTSigner(signer, JWSAlgorithm))
	if err != nil {
		return "", err
	}

	return token.Serialize(false)
}

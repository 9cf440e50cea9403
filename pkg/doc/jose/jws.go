/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v3/json"
)

const jwsPartsCount = 3

var errWrongNumberOfCompactJWSParts = errors.New("invalid JWS compact format: it must contain three parts")

// Signer defines JWS Signer interface. It signs the signing input and provides
// the protected headers to be included into the resulting JWS.
type Signer interface {
	// Sign signs.
	Sign(data []byte) ([]byte, error)

	// Headers provides JWS headers.
	Headers() Headers
}

// SignatureVerifier makes verification of JSON Web Signature.
type SignatureVerifier interface {
	// Verify verifies JWS based on the signing input.
	Verify(joseHeaders Headers, payload, signingInput, signature []byte) error
}

// SignatureVerifierFunc is a function wrapper for SignatureVerifier.
type SignatureVerifierFunc func(joseHeaders Headers, payload, signingInput, signature []byte) error

// Verify verifies JWS.
func (s SignatureVerifierFunc) Verify(joseHeaders Headers, payload, signingInput, signature []byte) error {
	return s(joseHeaders, payload, signingInput, signature)
}

// AlgSignatureVerifier defines verifier for particular signature algorithm.
type AlgSignatureVerifier struct {
	Alg      string
	Verifier SignatureVerifier
}

// CompositeAlgSigVerifier defines composite verifier based on the algorithm
// taken from JOSE header alg.
type CompositeAlgSigVerifier struct {
	verifierByAlg map[string]SignatureVerifier
}

// NewCompositeAlgSigVerifier creates a new CompositeAlgSigVerifier.
func NewCompositeAlgSigVerifier(v AlgSignatureVerifier, vOther ...AlgSignatureVerifier) *CompositeAlgSigVerifier {
	verifierByAlg := make(map[string]SignatureVerifier, 1+len(vOther))
	verifierByAlg[v.Alg] = v.Verifier

	for _, v := range vOther {
		verifierByAlg[v.Alg] = v.Verifier
	}

	return &CompositeAlgSigVerifier{verifierByAlg: verifierByAlg}
}

// Verify verifies JWS.
func (v *CompositeAlgSigVerifier) Verify(joseHeaders Headers, payload, signingInput, signature []byte) error {
	alg, ok := joseHeaders.Algorithm()
	if !ok {
		return errors.New("'alg' JOSE header is not present")
	}

	verifier, ok := v.verifierByAlg[alg]
	if !ok {
		return fmt.Errorf("no verifier found for %s algorithm", alg)
	}

	return verifier.Verify(joseHeaders, payload, signingInput, signature)
}

// JSONWebSignature defines JSON Web Signature (https://tools.ietf.org/html/rfc7515)
type JSONWebSignature struct {
	ProtectedHeaders Headers
	Payload          []byte

	signature []byte

	// original encoded segments, kept so that the signing input of a parsed JWS
	// is byte-identical to the one produced at signing time
	rawProtected string
	rawPayload   string
}

// NewJWS creates JSON Web Signature. The payload is serialized and signed once;
// the produced encoded segments are reused verbatim by SerializeCompact.
func NewJWS(protectedHeaders Headers, payload []byte, signer Signer) (*JSONWebSignature, error) {
	headers := mergeHeaders(protectedHeaders, signer.Headers())

	headersBytes, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("marshal JWS protected headers: %w", err)
	}

	rawProtected := base64.RawURLEncoding.EncodeToString(headersBytes)
	rawPayload := base64.RawURLEncoding.EncodeToString(payload)

	signingInput := rawProtected + "." + rawPayload

	signature, err := signer.Sign([]byte(signingInput))
	if err != nil {
		return nil, fmt.Errorf("sign JWS: %w", err)
	}

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		signature:        signature,
		rawProtected:     rawProtected,
		rawPayload:       rawPayload,
	}, nil
}

// Signature returns a copy of JWS signature.
func (s *JSONWebSignature) Signature() []byte {
	if s.signature == nil {
		return nil
	}

	sCopy := make([]byte, len(s.signature))
	copy(sCopy, s.signature)

	return sCopy
}

// SigningInput returns the exact byte string that was (or is to be) signed.
func (s *JSONWebSignature) SigningInput() []byte {
	return []byte(s.rawProtected + "." + s.rawPayload)
}

// SerializeCompact makes JWS compact serialization (https://tools.ietf.org/html/rfc7515#section-7.1).
func (s *JSONWebSignature) SerializeCompact(detached bool) (string, error) {
	if s.rawProtected == "" {
		return "", errors.New("JWS: encoded protected headers are not defined")
	}

	payload := s.rawPayload
	if detached {
		payload = ""
	}

	signature := base64.RawURLEncoding.EncodeToString(s.signature)

	return fmt.Sprintf("%s.%s.%s", s.rawProtected, payload, signature), nil
}

// IsCompactJWS checks that the given serialization is a compact JWS of valid structure.
func IsCompactJWS(s string) bool {
	parts := strings.Split(s, ".")

	return len(parts) == jwsPartsCount && isValidJSON(parts[0])
}

// ParseJWS parses serialized compact JWS. The signature is checked with the given
// signature verifier against the signing input re-derived from the original encoded
// segments of the serialization, never from a re-serialized payload.
func ParseJWS(serialized string, verifier SignatureVerifier) (*JSONWebSignature, error) {
	parts := strings.Split(serialized, ".")
	if len(parts) != jwsPartsCount {
		return nil, errWrongNumberOfCompactJWSParts
	}

	rawProtected, rawPayload, rawSignature := parts[0], parts[1], parts[2]

	headersBytes, err := base64.RawURLEncoding.DecodeString(rawProtected)
	if err != nil {
		return nil, fmt.Errorf("decode base64 header: %w", err)
	}

	var headers Headers

	err = json.Unmarshal(headersBytes, &headers)
	if err != nil {
		return nil, fmt.Errorf("unmarshal JSON headers: %w", err)
	}

	payload, err := base64.RawURLEncoding.DecodeString(rawPayload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}

	signature, err := base64.RawURLEncoding.DecodeString(rawSignature)
	if err != nil {
		return nil, fmt.Errorf("decode base64 signature: %w", err)
	}

	jws := &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		signature:        signature,
		rawProtected:     rawProtected,
		rawPayload:       rawPayload,
	}

	if verifier != nil {
		err = verifier.Verify(headers, payload, jws.SigningInput(), signature)
		if err != nil {
			return nil, err
		}
	}

	return jws, nil
}

func mergeHeaders(h1, h2 Headers) Headers {
	headers := make(Headers, len(h1)+len(h2))

	for k, v := range h2 {
		headers[k] = v
	}

	for k, v := range h1 {
		headers[k] = v
	}

	return headers
}

func isValidJSON(s string) bool {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return false
	}

	var j map[string]interface{}
	err = json.Unmarshal(b, &j)

	return err == nil
}

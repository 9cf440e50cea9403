/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/attestify/vc-framework-go/pkg/capability"
	"github.com/attestify/vc-framework-go/pkg/doc/jwt"
	"github.com/attestify/vc-framework-go/pkg/kms"
)

const (
	testIssuer = "did:example:76e12ec712ebc6f1c221ebfeb1f"
	testHolder = "did:example:ebfeb1f712ebc6f1c276e12ec21"
)

func TestEngine_Issue(t *testing.T) {
	key, err := kms.Create()
	require.NoError(t, err)

	engine := New(WithKey(key))

	t.Run("success", func(t *testing.T) {
		vc, err := engine.Issue(testSubject(), "UniversityDegreeCredential", testIssuer)
		require.NoError(t, err)

		require.Equal(t, []string{"https://www.w3.org/2018/credentials/v1"}, vc.Context)
		require.Equal(t, []string{"VerifiableCredential", "UniversityDegreeCredential"}, vc.Types)
		require.Equal(t, testIssuer, vc.Issuer)
		require.True(t, strings.HasPrefix(vc.ID, "urn:uuid:"))
		require.NotNil(t, vc.Issued)
		require.Nil(t, vc.Expired)

		require.NotNil(t, vc.Proof)
		require.Equal(t, JwtProof2020, vc.Proof.Type)
		require.Equal(t, testIssuer+"#"+key.ID, vc.Proof.VerificationMethod)
		require.True(t, jwt.IsJWS(vc.Proof.JWT))
	})

	t.Run("base type is not repeated", func(t *testing.T) {
		vc, err := engine.Issue(testSubject(), "VerifiableCredential", testIssuer)
		require.NoError(t, err)
		require.Equal(t, []string{"VerifiableCredential"}, vc.Types)
	})

	t.Run("with options", func(t *testing.T) {
		expiration := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

		vc, err := engine.Issue(testSubject(), "UniversityDegreeCredential", testIssuer,
			WithCredentialID("http://example.edu/credentials/1872"),
			WithContexts("https://www.w3.org/2018/credentials/examples/v1"),
			WithAdditionalTypes("AlumniCredential"),
			WithExpirationDate(expiration),
			WithCustomFields(CustomFields{"referenceNumber": "83294847"}),
		)
		require.NoError(t, err)

		require.Equal(t, "http://example.edu/credentials/1872", vc.ID)
		require.Equal(t, []string{
			"https://www.w3.org/2018/credentials/v1",
			"https://www.w3.org/2018/credentials/examples/v1",
		}, vc.Context)
		require.Equal(t, []string{"VerifiableCredential", "UniversityDegreeCredential", "AlumniCredential"}, vc.Types)
		require.Equal(t, &expiration, vc.Expired)
		require.Equal(t, "83294847", vc.CustomFields["referenceNumber"])
	})

	t.Run("public-only key cannot issue", func(t *testing.T) {
		pubOnly := New(WithKey(key.ToPublicKey()))

		_, err := pubOnly.Issue(testSubject(), "UniversityDegreeCredential", testIssuer)
		require.ErrorIs(t, err, ErrMissingCapability)
	})

	t.Run("no key and no broker", func(t *testing.T) {
		_, err := New().Issue(testSubject(), "UniversityDegreeCredential", testIssuer)
		require.ErrorIs(t, err, ErrMissingCapability)
	})

	t.Run("issue with learned capabilities", func(t *testing.T) {
		broker := capability.NewBroker()
		broker.Learn(newSigningContract(t, "external-kms"))

		brokerEngine := New(WithBroker(broker))

		vc, err := brokerEngine.Issue(testSubject(), "UniversityDegreeCredential", testIssuer)
		require.NoError(t, err)

		require.NotNil(t, vc.Proof)
		require.Equal(t, testIssuer, vc.Proof.VerificationMethod)

		result, err := brokerEngine.Verify(vc)
		require.NoError(t, err)
		require.True(t, result.Verified)
	})

	t.Run("broker without getPublicKey cannot issue", func(t *testing.T) {
		broker := capability.NewBroker()
		broker.Learn(capability.Contract{
			ProviderID: "sign-only",
			Operations: map[string]interface{}{
				capability.OpSign: capability.SignFunc(func(data []byte) ([]byte, error) {
					return nil, nil
				}),
			},
		})

		_, err := New(WithBroker(broker)).Issue(testSubject(), "UniversityDegreeCredential", testIssuer)
		require.ErrorIs(t, err, ErrMissingCapability)
	})

	t.Run("issued credential is structurally valid", func(t *testing.T) {
		vc, err := engine.Issue(testSubject(), "UniversityDegreeCredential", testIssuer)
		require.NoError(t, err)

		vcBytes, err := json.Marshal(vc)
		require.NoError(t, err)

		require.NoError(t, Validate(vcBytes))
	})
}

func TestEngine_Verify(t *testing.T) {
	key, err := kms.Create()
	require.NoError(t, err)

	engine := New(WithKey(key))

	vc, err := engine.Issue(testSubject(), "UniversityDegreeCredential", testIssuer)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		result, err := engine.Verify(vc)
		require.NoError(t, err)

		require.True(t, result.Verified)
		require.Equal(t, testIssuer, result.Issuer)
		require.Equal(t, testHolder, result.Subject)
		require.Equal(t, *vc.Issued, result.IssuanceDate)
		require.Nil(t, result.ExpirationDate)
	})

	t.Run("survives a serialization round trip", func(t *testing.T) {
		vcBytes, err := json.Marshal(vc)
		require.NoError(t, err)

		reparsed, err := ParseCredential(vcBytes)
		require.NoError(t, err)

		result, err := engine.Verify(reparsed)
		require.NoError(t, err)
		require.True(t, result.Verified)
	})

	t.Run("missing proof", func(t *testing.T) {
		unproven := *vc
		unproven.Proof = nil

		_, err := engine.Verify(&unproven)
		require.ErrorIs(t, err, ErrUnsupportedProofFormat)
	})

	t.Run("unsupported proof type", func(t *testing.T) {
		tampered := *vc
		tampered.Proof = &Proof{Type: "Ed25519Signature2018", JWT: vc.Proof.JWT}

		_, err := engine.Verify(&tampered)
		require.ErrorIs(t, err, ErrUnsupportedProofFormat)
	})

	t.Run("malformed proof JWT", func(t *testing.T) {
		for _, jwtValue := range []string{
			"",
			"onlyonepart",
			"two.parts",
			"!!!.!!!.!!!",
			"e30.e30", // two segments only
		} {
			tampered := *vc
			tampered.Proof = &Proof{Type: JwtProof2020, JWT: jwtValue}

			_, err := engine.Verify(&tampered)
			require.ErrorIs(t, err, ErrMalformedProof)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		otherKey, err := kms.Create()
		require.NoError(t, err)

		_, err = New(WithKey(otherKey)).Verify(vc)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("tampered credential field", func(t *testing.T) {
		tampered := *vc
		tampered.ID = "urn:uuid:forged"

		_, err := engine.Verify(&tampered)

		var fme *FieldMismatchError

		require.ErrorAs(t, err, &fme)
		require.Equal(t, "id", fme.Field)
	})

	t.Run("tampered credential subject", func(t *testing.T) {
		tampered := *vc
		tampered.Subject = map[string]interface{}{
			"holder": map[string]interface{}{"id": testHolder},
			"degree": map[string]interface{}{"type": "PhD"},
		}

		_, err := engine.Verify(&tampered)

		var fme *FieldMismatchError

		require.ErrorAs(t, err, &fme)
		require.Equal(t, "credentialSubject", fme.Field)
	})

	t.Run("field added after issuance", func(t *testing.T) {
		tampered := *vc
		tampered.CustomFields = CustomFields{"referenceNumber": "83294847"}

		_, err := engine.Verify(&tampered)

		var fme *FieldMismatchError

		require.ErrorAs(t, err, &fme)
		require.Equal(t, "referenceNumber", fme.Field)
	})

	t.Run("expected issuer matches", func(t *testing.T) {
		result, err := engine.Verify(vc, WithExpectedIssuer(testIssuer))
		require.NoError(t, err)
		require.True(t, result.Verified)
	})

	t.Run("unexpected issuer", func(t *testing.T) {
		_, err := engine.Verify(vc, WithExpectedIssuer("did:example:other"))
		require.ErrorIs(t, err, ErrUnexpectedIssuer)
	})

	t.Run("no verification means", func(t *testing.T) {
		_, err := New().Verify(vc)
		require.ErrorIs(t, err, ErrMissingCapability)
	})
}

func TestEngine_Verify_Expiration(t *testing.T) {
	key, err := kms.Create()
	require.NoError(t, err)

	expiration := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	issuerEngine := New(WithKey(key), WithClock(func() time.Time {
		return expiration.Add(-24 * time.Hour)
	}))

	vc, err := issuerEngine.Issue(testSubject(), "UniversityDegreeCredential", testIssuer,
		WithExpirationDate(expiration))
	require.NoError(t, err)

	verifyAt := func(now time.Time) (*VerificationResult, error) {
		verifier := New(WithKey(key), WithClock(func() time.Time {
			return now
		}))

		return verifier.Verify(vc)
	}

	t.Run("before expiration", func(t *testing.T) {
		result, err := verifyAt(expiration.Add(-time.Hour))
		require.NoError(t, err)
		require.True(t, result.Verified)
		require.Equal(t, &expiration, result.ExpirationDate)
	})

	t.Run("exactly at expiration", func(t *testing.T) {
		result, err := verifyAt(expiration)
		require.NoError(t, err)
		require.True(t, result.Verified)
	})

	t.Run("after expiration", func(t *testing.T) {
		_, err := verifyAt(expiration.Add(time.Second))
		require.ErrorIs(t, err, ErrCredentialExpired)
	})

	t.Run("expiration check disabled", func(t *testing.T) {
		verifier := New(WithKey(key), WithClock(func() time.Time {
			return expiration.Add(24 * time.Hour)
		}))

		result, err := verifier.Verify(vc, WithoutExpirationCheck())
		require.NoError(t, err)
		require.True(t, result.Verified)
	})
}

func TestEngine_Verify_WithKeyResolver(t *testing.T) {
	key, err := kms.Create()
	require.NoError(t, err)

	vc, err := New(WithKey(key)).Issue(testSubject(), "UniversityDegreeCredential", testIssuer)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		verifier := New(WithKeyResolver(jwt.KeyResolverFunc(func(what, kid string) (interface{}, error) {
			require.Equal(t, testIssuer, what)

			return key.PublicKey, nil
		})))

		result, err := verifier.Verify(vc)
		require.NoError(t, err)
		require.True(t, result.Verified)
	})

	t.Run("resolution failure", func(t *testing.T) {
		verifier := New(WithKeyResolver(jwt.KeyResolverFunc(func(what, kid string) (interface{}, error) {
			return nil, errors.New("issuer is not known")
		})))

		_, err := verifier.Verify(vc)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong resolved key", func(t *testing.T) {
		otherKey, err := kms.Create()
		require.NoError(t, err)

		verifier := New(WithKeyResolver(jwt.KeyResolverFunc(func(what, kid string) (interface{}, error) {
			return otherKey.PublicKey, nil
		})))

		_, err = verifier.Verify(vc)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestEngine_Teach(t *testing.T) {
	key, err := kms.Create()
	require.NoError(t, err)

	contract := New(WithKey(key)).Teach()

	require.Equal(t, "credential-engine", contract.ProviderID)

	issueFn, ok := contract.Operations["issue"].(func(subject Subject, credType, issuerID string) (*Credential, error))
	require.True(t, ok)

	vc, err := issueFn(testSubject(), "UniversityDegreeCredential", testIssuer)
	require.NoError(t, err)

	verifyFn, ok := contract.Operations["verify"].(func(vc *Credential) (*VerificationResult, error))
	require.True(t, ok)

	result, err := verifyFn(vc)
	require.NoError(t, err)
	require.True(t, result.Verified)

	validateFn, ok := contract.Operations["validate"].(func(vcBytes []byte) error)
	require.True(t, ok)

	vcBytes, err := json.Marshal(vc)
	require.NoError(t, err)
	require.NoError(t, validateFn(vcBytes))
}

func testSubject() Subject {
	return map[string]interface{}{
		"holder": map[string]interface{}{
			"id": testHolder,
		},
		"degree": map[string]interface{}{
			"type":       "BachelorDegree",
			"university": "MIT",
		},
	}
}

func newSigningContract(t *testing.T, providerID string) capability.Contract {
	t.Helper()

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	return capability.Contract{
		ProviderID: providerID,
		Operations: map[string]interface{}{
			capability.OpSign: capability.SignFunc(func(data []byte) ([]byte, error) {
				return ed25519.Sign(privKey, data), nil
			}),
			capability.OpVerify: capability.VerifyFunc(func(data, signature []byte) error {
				if !ed25519.Verify(pubKey, data, signature) {
					return errors.New("signature doesn't match")
				}

				return nil
			}),
			capability.OpGetPublicKey: capability.GetPublicKeyFunc(func() ([]byte, error) {
				return pubKey, nil
			}),
		},
	}
}

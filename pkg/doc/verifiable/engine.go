/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/attestify/vc-framework-go/pkg/capability"
	"github.com/attestify/vc-framework-go/pkg/doc/jwt"
	"github.com/attestify/vc-framework-go/pkg/kms"
)

// Engine issues and verifies Verifiable Credentials. Signing and verification
// are delegated to the currently held key or to capabilities learned from an
// external provider; the engine never couples to a concrete crypto
// implementation.
//
// Engine holds no mutable state across Issue/Verify calls. Learning
// capabilities into the attached broker is a setup-time step and must not
// run concurrently with in-flight operations.
type Engine struct {
	key      *kms.Key
	broker   *capability.Broker
	resolver jwt.KeyResolver
	now      func() time.Time
}

// Option configures the credential engine.
type Option func(*Engine)

// WithKey sets the engine's key.
func WithKey(key *kms.Key) Option {
	return func(e *Engine) {
		e.key = key
	}
}

// WithBroker attaches a capability broker the engine acquires
// sign/verify/getPublicKey operations from.
func WithBroker(broker *capability.Broker) Option {
	return func(e *Engine) {
		e.broker = broker
	}
}

// WithKeyResolver sets the resolver used to fetch verification keys of
// credentials issued by other parties.
func WithKeyResolver(resolver jwt.KeyResolver) Option {
	return func(e *Engine) {
		e.resolver = resolver
	}
}

// WithClock sets the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a credential engine.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// issueOpts holds options for credential issuance.
type issueOpts struct {
	id              string
	extraContexts   []string
	additionalTypes []string
	expirationDate  *time.Time
	customFields    CustomFields
}

// IssueOpt is a credential issuance option.
type IssueOpt func(*issueOpts)

// WithCredentialID overrides the generated credential ID.
func WithCredentialID(id string) IssueOpt {
	return func(o *issueOpts) {
		o.id = id
	}
}

// WithContexts appends extra JSON-LD contexts after the base W3C context.
func WithContexts(contexts ...string) IssueOpt {
	return func(o *issueOpts) {
		o.extraContexts = contexts
	}
}

// WithAdditionalTypes appends specific claim types after the given credential type.
func WithAdditionalTypes(types ...string) IssueOpt {
	return func(o *issueOpts) {
		o.additionalTypes = types
	}
}

// WithExpirationDate sets the credential expiration date.
func WithExpirationDate(expiration time.Time) IssueOpt {
	return func(o *issueOpts) {
		o.expirationDate = &expiration
	}
}

// WithCustomFields sets free-form top-level fields of the credential.
func WithCustomFields(fields CustomFields) IssueOpt {
	return func(o *issueOpts) {
		o.customFields = fields
	}
}

// Issue creates a credential binding issuerID to the subject's claims and
// secures it with an external JWT proof. The credential type array is always
// prefixed with the base VerifiableCredential discriminator.
func (e *Engine) Issue(subject Subject, credType, issuerID string, opts ...IssueOpt) (*Credential, error) {
	iOpts := &issueOpts{}

	for _, opt := range opts {
		opt(iOpts)
	}

	signer, keyID, err := e.signingCapability()
	if err != nil {
		return nil, err
	}

	vc := e.buildCredential(subject, credType, issuerID, iOpts)

	claims, err := newJWTCredClaims(vc, issuerID)
	if err != nil {
		return nil, fmt.Errorf("create JWT claims of credential: %w", err)
	}

	token, err := claims.MarshalJWS(signer)
	if err != nil {
		return nil, fmt.Errorf("sign credential claims: %w", err)
	}

	verificationMethod := issuerID
	if keyID != "" {
		verificationMethod = issuerID + "#" + keyID
	}

	vc.Proof = &Proof{
		Type:               JwtProof2020,
		JWT:                token,
		VerificationMethod: verificationMethod,
	}

	logger.Debugf("issued credential %s for issuer %s", vc.ID, issuerID)

	return vc, nil
}

// Teach exposes the engine's own operations as a capability contract, allowing
// a further consumer to learn them.
func (e *Engine) Teach() capability.Contract {
	return capability.Contract{
		ProviderID: "credential-engine",
		Operations: map[string]interface{}{
			"issue": func(subject Subject, credType, issuerID string) (*Credential, error) {
				return e.Issue(subject, credType, issuerID)
			},
			"verify": func(vc *Credential) (*VerificationResult, error) {
				return e.Verify(vc)
			},
			"validate": func(vcBytes []byte) error {
				return Validate(vcBytes)
			},
		},
	}
}

// signingCapability returns the signer to be used for issuance: the engine's
// own key if it can sign, otherwise the sign operation learned by the broker.
func (e *Engine) signingCapability() (Signer, string, error) {
	if e.key != nil && e.key.CanSign() {
		return e.key, e.key.ID, nil
	}

	if e.broker != nil && e.broker.Can(capability.OpSign) && e.broker.Can(capability.OpGetPublicKey) {
		return signerFunc(e.broker.Sign), "", nil
	}

	return nil, "", ErrMissingCapability
}

type signerFunc func(data []byte) ([]byte, error)

func (s signerFunc) Sign(data []byte) ([]byte, error) {
	return s(data)
}

func (e *Engine) buildCredential(subject Subject, credType, issuerID string, iOpts *issueOpts) *Credential {
	context := []string{baseContext}
	context = append(context, iOpts.extraContexts...)

	types := []string{vcType}
	if credType != "" && credType != vcType {
		types = append(types, credType)
	}

	types = append(types, iOpts.additionalTypes...)

	id := iOpts.id
	if id == "" {
		id = "urn:uuid:" + uuid.New().String()
	}

	issued := e.now().UTC()

	return &Credential{
		Context:      context,
		ID:           id,
		Types:        types,
		Subject:      subject,
		Issuer:       issuerID,
		Issued:       &issued,
		Expired:      iOpts.expirationDate,
		CustomFields: iOpts.customFields,
	}
}

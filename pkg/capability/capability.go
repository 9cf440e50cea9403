/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package capability implements runtime acquisition of named operations from
// external providers. A consumer learns sign/verify/getPublicKey contracts
// without compile-time coupling to the provider's concrete type, and can in
// turn teach its own operations to a further consumer, forming a chain.
package capability

import (
	"fmt"
)

// Recognized operation names.
const (
	OpSign         = "sign"
	OpVerify       = "verify"
	OpGetPublicKey = "getPublicKey"
)

// SignFunc signs data.
type SignFunc func(data []byte) ([]byte, error)

// VerifyFunc verifies a signature over data.
type VerifyFunc func(data, signature []byte) error

// GetPublicKeyFunc returns raw public key material.
type GetPublicKeyFunc func() ([]byte, error)

// Contract maps operation names to implementations. It is produced by a
// provider and consumed by a learner; the learner copies the implementations
// into its own capability table, so provider and consumer share no mutable state.
type Contract struct {
	ProviderID string
	Operations map[string]interface{}
}

// Provider produces a capability contract.
type Provider interface {
	// Capabilities returns the operations this provider offers.
	Capabilities() Contract
}

// Broker is a runtime registry of learned operations.
//
// Learn is an initialization-time step: it is not safe to call concurrently
// with itself or with in-flight use of the learned operations. Callers must
// serialize learning externally or confine it to setup.
type Broker struct {
	recognized map[string]struct{}
	ops        map[string]interface{}
	sources    map[string]string
}

// NewBroker creates a broker recognizing the given operation names.
// With no arguments it recognizes sign, verify and getPublicKey.
func NewBroker(recognized ...string) *Broker {
	if len(recognized) == 0 {
		recognized = []string{OpSign, OpVerify, OpGetPublicKey}
	}

	recognizedSet := make(map[string]struct{}, len(recognized))
	for _, name := range recognized {
		recognizedSet[name] = struct{}{}
	}

	return &Broker{
		recognized: recognizedSet,
		ops:        make(map[string]interface{}),
		sources:    make(map[string]string),
	}
}

// Learn copies every recognized operation of each contract into the broker's
// capability table. The last writer wins: learning from a second provider
// silently replaces an operation learned from the first. Unrecognized
// operation names are ignored.
func (b *Broker) Learn(contracts ...Contract) {
	for _, contract := range contracts {
		for name, impl := range contract.Operations {
			if _, ok := b.recognized[name]; !ok {
				continue
			}

			if impl == nil {
				continue
			}

			b.ops[name] = impl
			b.sources[name] = contract.ProviderID
		}
	}
}

// Can reports whether the named operation has been learned.
func (b *Broker) Can(name string) bool {
	_, ok := b.ops[name]

	return ok
}

// Source returns the provider ID the named operation was learned from.
func (b *Broker) Source(name string) string {
	return b.sources[name]
}

// Sign invokes the learned sign operation.
func (b *Broker) Sign(data []byte) ([]byte, error) {
	impl, err := b.acquire(OpSign)
	if err != nil {
		return nil, err
	}

	signFn, ok := impl.(SignFunc)
	if !ok {
		return nil, fmt.Errorf("learned %q operation has unexpected type %T", OpSign, impl)
	}

	return signFn(data)
}

// Verify invokes the learned verify operation.
func (b *Broker) Verify(data, signature []byte) error {
	impl, err := b.acquire(OpVerify)
	if err != nil {
		return err
	}

	verifyFn, ok := impl.(VerifyFunc)
	if !ok {
		return fmt.Errorf("learned %q operation has unexpected type %T", OpVerify, impl)
	}

	return verifyFn(data, signature)
}

// GetPublicKey invokes the learned getPublicKey operation.
func (b *Broker) GetPublicKey() ([]byte, error) {
	impl, err := b.acquire(OpGetPublicKey)
	if err != nil {
		return nil, err
	}

	getFn, ok := impl.(GetPublicKeyFunc)
	if !ok {
		return nil, fmt.Errorf("learned %q operation has unexpected type %T", OpGetPublicKey, impl)
	}

	return getFn()
}

func (b *Broker) acquire(name string) (interface{}, error) {
	impl, ok := b.ops[name]
	if !ok {
		return nil, fmt.Errorf("operation %q has not been learned", name)
	}

	return impl, nil
}

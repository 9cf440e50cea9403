/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vcframework enables Go developers to issue, verify and store W3C
// Verifiable Credentials (https://www.w3.org/TR/vc-data-model/).
//
// Packages for end developer usage
//
// pkg/doc/verifiable: The credential engine. Issues credentials secured with an
// external JWT proof and verifies them: proof format, signature, binding of the
// credential fields to the signed claims, expiration and issuer checks.
// Reference: https://pkg.go.dev/github.com/attestify/vc-framework-go/pkg/doc/verifiable
//
// pkg/kms: The key abstraction. A key is direct (holds private material),
// signer-backed (delegates signing to a local or remote KMS) or public-only.
// Reference: https://pkg.go.dev/github.com/attestify/vc-framework-go/pkg/kms
//
// pkg/capability: Runtime acquisition of sign/verify/getPublicKey operations
// from external providers, without compile-time coupling to their types.
// Reference: https://pkg.go.dev/github.com/attestify/vc-framework-go/pkg/capability
//
// pkg/store/credential: Storage of issued and received credentials with
// tag queries and content search.
// Reference: https://pkg.go.dev/github.com/attestify/vc-framework-go/pkg/store/credential
//
// Basic workflow
//
//      1) Create or load a kms.Key (or learn signing capabilities into a capability.Broker).
//      2) Create a verifiable.Engine with the key or broker.
//      3) Issue credentials with Engine.Issue and hand them to holders.
//      4) Verify received credentials with Engine.Verify.
//      5) Persist credentials with a store built on a spi/storage provider.
package vcframework

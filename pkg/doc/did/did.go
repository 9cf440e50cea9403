/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package did provides a minimal decentralized identifier parsing utility.
// The credential engine treats issuer identifiers as opaque strings; this
// package is for callers that need the method:identifier split.
package did

import (
	"fmt"
	"strings"
)

const didParts = 3

// DID is parsed according to the generic syntax: https://w3c.github.io/did-core/#generic-did-syntax
type DID struct {
	Scheme           string // Scheme is always "did"
	Method           string // Method is the specific DID methods
	MethodSpecificID string // MethodSpecificID is the unique ID computed or assigned by the DID method
}

// String returns a string representation of this DID.
func (d *DID) String() string {
	return fmt.Sprintf("%s:%s:%s", d.Scheme, d.Method, d.MethodSpecificID)
}

// Parse parses the string according to the generic DID syntax.
func Parse(did string) (*DID, error) {
	split := strings.SplitN(did, ":", didParts)
	if len(split) != didParts || split[0] != "did" {
		return nil, fmt.Errorf("invalid did: %s. Make sure it conforms to the DID syntax: "+
			"https://w3c.github.io/did-core/#did-syntax", did)
	}

	if split[1] == "" || split[2] == "" {
		return nil, fmt.Errorf("invalid did: %s. Method and method-specific ID must not be empty", did)
	}

	for _, c := range split[1] {
		if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyz0123456789", c) {
			return nil, fmt.Errorf("invalid did: %s. Method must be lower-case alphanumeric", did)
		}
	}

	return &DID{
		Scheme:           "did",
		Method:           split[1],
		MethodSpecificID: split[2],
	}, nil
}

// DIDURL holds a DID URL: a DID plus an optional fragment, as used in
// verification method references (did:method:id#key-1).
type DIDURL struct {
	DID
	Fragment string
}

// ParseDIDURL parses a DID URL of the form did:method:id[#fragment].
func ParseDIDURL(didURL string) (*DIDURL, error) {
	split := strings.SplitN(didURL, "#", 2)

	parsed, err := Parse(split[0])
	if err != nil {
		return nil, err
	}

	result := &DIDURL{DID: *parsed}

	if len(split) == 2 {
		result.Fragment = split[1]
	}

	return result, nil
}

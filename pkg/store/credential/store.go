/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credential implements a storage layer for issued and received
// Verifiable Credentials.
package credential

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"

	"github.com/attestify/vc-framework-go/pkg/common/log"
	"github.com/attestify/vc-framework-go/pkg/doc/verifiable"
	"github.com/attestify/vc-framework-go/spi/storage"
)

const (
	// NameSpace is the namespace of the credential store.
	NameSpace = "credential"

	// tagCredentialType is the name of the tag holding the specific credential type.
	tagCredentialType = "credentialType"
	// tagIssuer is the name of the tag holding the credential issuer ID.
	tagIssuer = "issuer"
)

var logger = log.New("vc-framework/store/credential")

// ErrCredentialNotFound is returned when a credential is not found in the store.
var ErrCredentialNotFound = errors.New("credential not found")

// Store stores Verifiable Credentials keyed by their ID and makes them
// queryable by type and issuer tags as well as by content predicates.
type Store struct {
	store storage.Store
}

// New returns a new credential store built on the given storage provider.
func New(provider storage.Provider) (*Store, error) {
	store, err := provider.OpenStore(NameSpace)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	err = provider.SetStoreConfig(NameSpace, storage.StoreConfiguration{
		TagNames: []string{tagCredentialType, tagIssuer},
	})
	if err != nil {
		return nil, fmt.Errorf("set credential store configuration: %w", err)
	}

	return &Store{store: store}, nil
}

// Save stores the credential under its ID. A credential with the same ID is
// overwritten.
func (s *Store) Save(vc *verifiable.Credential) error {
	if vc.ID == "" {
		return errors.New("credential ID is mandatory")
	}

	vcBytes, err := json.Marshal(vc)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	tags := []storage.Tag{
		{Name: tagCredentialType, Value: credentialType(vc)},
		{Name: tagIssuer, Value: encodeTagValue(vc.Issuer)},
	}

	return s.store.Put(vc.ID, vcBytes, tags...)
}

// Load fetches the credential with the given ID.
func (s *Store) Load(id string) (*verifiable.Credential, error) {
	vcBytes, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, ErrCredentialNotFound
		}

		return nil, fmt.Errorf("get credential: %w", err)
	}

	return verifiable.ParseCredential(vcBytes)
}

// Delete removes the credential with the given ID.
func (s *Store) Delete(id string) error {
	return s.store.Delete(id)
}

// QueryByType returns all stored credentials of the given specific type.
func (s *Store) QueryByType(credType string) ([]*verifiable.Credential, error) {
	return s.query(tagCredentialType + ":" + credType)
}

// QueryByIssuer returns all stored credentials issued by the given issuer.
func (s *Store) QueryByIssuer(issuerID string) ([]*verifiable.Credential, error) {
	return s.query(tagIssuer + ":" + encodeTagValue(issuerID))
}

// encodeTagValue makes a value safe for use in a tag query expression.
// Issuer IDs are DIDs, whose ':' characters would break the expression format.
func encodeTagValue(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// Search returns all stored credentials whose content matches every
// predicate. Predicate keys are JSONPath expressions evaluated against the
// serialized credential, values are the expected results.
func (s *Store) Search(predicates map[string]interface{}) ([]*verifiable.Credential, error) {
	return s.filter(func(doc interface{}) (bool, error) {
		for path, expected := range predicates {
			actual, err := jsonpath.Get(path, doc)
			if err != nil {
				// a path absent from this credential is a non-match, not a failure
				return false, nil
			}

			if !reflect.DeepEqual(actual, expected) {
				return false, nil
			}
		}

		return true, nil
	})
}

// SearchExpr returns all stored credentials for which the given boolean
// expression evaluates to true. The expression language is gval extended with
// JSONPath selectors, e.g. `$.credentialSubject.degree == "BSc" && $.issuer == "did:example:76e12ec7"`.
func (s *Store) SearchExpr(expression string) ([]*verifiable.Credential, error) {
	eval, err := gval.Full(jsonpath.Language()).NewEvaluable(expression)
	if err != nil {
		return nil, fmt.Errorf("parse search expression: %w", err)
	}

	return s.filter(func(doc interface{}) (bool, error) {
		matches, err := eval.EvalBool(context.Background(), doc)
		if err != nil {
			// the expression references paths this credential does not have
			return false, nil
		}

		return matches, nil
	})
}

func (s *Store) query(expression string) ([]*verifiable.Credential, error) {
	iterator, err := s.store.Query(expression)
	if err != nil {
		return nil, fmt.Errorf("query credential store: %w", err)
	}

	defer storage.Close(iterator, logger)

	var credentials []*verifiable.Credential

	for {
		more, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("iterate query results: %w", err)
		}

		if !more {
			break
		}

		vcBytes, err := iterator.Value()
		if err != nil {
			return nil, fmt.Errorf("read query result: %w", err)
		}

		vc, err := verifiable.ParseCredential(vcBytes)
		if err != nil {
			return nil, fmt.Errorf("parse stored credential: %w", err)
		}

		credentials = append(credentials, vc)
	}

	return credentials, nil
}

// filter runs the given match function over every stored credential.
func (s *Store) filter(matches func(doc interface{}) (bool, error)) ([]*verifiable.Credential, error) {
	all, err := s.query(tagCredentialType)
	if err != nil {
		return nil, err
	}

	var credentials []*verifiable.Credential

	for _, vc := range all {
		vcBytes, err := json.Marshal(vc)
		if err != nil {
			return nil, fmt.Errorf("marshal credential: %w", err)
		}

		var doc interface{}
		if err := json.Unmarshal(vcBytes, &doc); err != nil {
			return nil, fmt.Errorf("decode credential document: %w", err)
		}

		ok, err := matches(doc)
		if err != nil {
			return nil, err
		}

		if ok {
			credentials = append(credentials, vc)
		}
	}

	return credentials, nil
}

// credentialType picks the most specific type of the credential for tagging.
func credentialType(vc *verifiable.Credential) string {
	for _, t := range vc.Types {
		if t != "VerifiableCredential" {
			return t
		}
	}

	return "VerifiableCredential"
}

/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/attestify/vc-framework-go/pkg/common/log"
)

var logger = log.New("vc-framework/doc/verifiable")

const (
	// https://www.w3.org/TR/vc-data-model/#base-context
	baseContext = "https://www.w3.org/2018/credentials/v1"

	// https://www.w3.org/TR/vc-data-model/#types
	vcType = "VerifiableCredential"
)

// JwtProof2020 is the proof type of credentials secured with an external JWT proof.
const JwtProof2020 = "JwtProof2020"

const defaultSchema = `{
  "required": [
    "@context",
    "type",
    "credentialSubject",
    "issuer",
    "issuanceDate"
  ],
  "properties": {
    "@context": {
      "oneOf": [
        {
          "type": "string",
          "const": "https://www.w3.org/2018/credentials/v1"
        },
        {
          "type": "array",
          "items": [
            {
              "type": "string",
              "const": "https://www.w3.org/2018/credentials/v1"
            }
          ],
          "uniqueItems": true,
          "additionalItems": {
            "oneOf": [
              {
                "type": "object"
              },
              {
                "type": "string"
              }
            ]
          }
        }
      ]
    },
    "id": {
      "type": "string"
    },
    "type": {
      "oneOf": [
        {
          "type": "array",
          "items": [
            {
              "type": "string",
              "pattern": "^VerifiableCredential$"
            }
          ]
        },
        {
          "type": "string",
          "pattern": "^VerifiableCredential$"
        }
      ],
      "additionalItems": {
        "type": "string"
      }
    },
    "credentialSubject": {
      "anyOf": [
        {
          "type": "array"
        },
        {
          "type": "object"
        },
        {
          "type": "string"
        }
      ]
    },
    "issuer": {
      "anyOf": [
        {
          "type": "string",
          "format": "uri"
        },
        {
          "type": "object",
          "required": [
            "id"
          ],
          "properties": {
            "id": {
              "type": "string",
              "format": "uri"
            }
          }
        }
      ]
    },
    "issuanceDate": {
      "type": "string",
      "format": "date-time"
    },
    "expirationDate": {
      "type": [
        "string",
        "null"
      ],
      "format": "date-time"
    },
    "proof": {
      "anyOf": [
        {
          "type": "object",
          "required": [
            "type"
          ],
          "properties": {
            "type": {
              "type": "string"
            }
          }
        },
        {
          "type": "null"
        }
      ]
    }
  }
}
`

// Proof is the external proof attached to exactly one Credential.
type Proof struct {
	Type               string `json:"type,omitempty"`
	JWT                string `json:"jwt,omitempty"`
	VerificationMethod string `json:"verificationMethod,omitempty"`
}

// Credential is a Verifiable Credential. It is immutable once issued:
// verification and storage operate on copies of its JSON form.
type Credential struct {
	Context       []string
	CustomContext []interface{}
	ID            string
	Types         []string
	Subject       Subject
	Issuer        string
	Issued        *time.Time
	Expired       *time.Time
	Proof         *Proof

	CustomFields CustomFields
}

// rawCredential is the JSON mapping of a Verifiable Credential.
type rawCredential struct {
	Context interface{}     `json:"@context,omitempty"`
	ID      string          `json:"id,omitempty"`
	Type    interface{}     `json:"type,omitempty"`
	Subject Subject         `json:"credentialSubject,omitempty"`
	Issuer  json.RawMessage `json:"issuer,omitempty"`
	Issued  string          `json:"issuanceDate,omitempty"`
	Expired string          `json:"expirationDate,omitempty"`
	Proof   *Proof          `json:"proof,omitempty"`

	// All unmapped fields are put here.
	CustomFields `json:"-"`
}

// MarshalJSON defines custom marshalling of rawCredential to JSON.
func (rc *rawCredential) MarshalJSON() ([]byte, error) {
	type Alias rawCredential

	alias := (*Alias)(rc)

	return marshalWithCustomFields(alias, rc.CustomFields)
}

// UnmarshalJSON defines custom unmarshalling of rawCredential from JSON.
func (rc *rawCredential) UnmarshalJSON(data []byte) error {
	type Alias rawCredential

	alias := (*Alias)(rc)
	rc.CustomFields = make(CustomFields)

	return unmarshalWithCustomFields(data, alias, rc.CustomFields)
}

// ParseCredential decodes a Verifiable Credential from its marshalled JSON.
// It does not check the proof; use Engine.Verify for that.
func ParseCredential(vcData []byte) (*Credential, error) {
	var raw rawCredential

	err := json.Unmarshal(vcData, &raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	vc, err := newCredential(&raw)
	if err != nil {
		return nil, fmt.Errorf("build credential: %w", err)
	}

	return vc, nil
}

func newCredential(raw *rawCredential) (*Credential, error) {
	types, err := decodeType(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("fill credential types from raw: %w", err)
	}

	context, customContext, err := decodeContext(raw.Context)
	if err != nil {
		return nil, fmt.Errorf("fill credential context from raw: %w", err)
	}

	issuer, err := decodeIssuer(raw.Issuer)
	if err != nil {
		return nil, fmt.Errorf("fill credential issuer from raw: %w", err)
	}

	issuedDate, err := decodeDate(raw.Issued)
	if err != nil {
		return nil, fmt.Errorf("parse issuance date from raw: %w", err)
	}

	expiredDate, err := decodeDate(raw.Expired)
	if err != nil {
		return nil, fmt.Errorf("parse expiration date from raw: %w", err)
	}

	return &Credential{
		Context:       context,
		CustomContext: customContext,
		ID:            raw.ID,
		Types:         types,
		Subject:       raw.Subject,
		Issuer:        issuer,
		Issued:        issuedDate,
		Expired:       expiredDate,
		Proof:         raw.Proof,
		CustomFields:  raw.CustomFields,
	}, nil
}

// decodeIssuer decodes raw issuer defined by either a string which is the ID
// of the issuer, or an object with a mandatory "id" field.
func decodeIssuer(issuerBytes json.RawMessage) (string, error) {
	if len(issuerBytes) == 0 {
		return "", nil
	}

	var issuerID string

	if err := json.Unmarshal(issuerBytes, &issuerID); err == nil {
		return issuerID, nil
	}

	var issuerObj struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(issuerBytes, &issuerObj); err != nil {
		return "", fmt.Errorf("issuer of unknown structure: %w", err)
	}

	if issuerObj.ID == "" {
		return "", errors.New("issuer ID is not defined")
	}

	return issuerObj.ID, nil
}

// decodeDate decodes given date to '*time.Time'.
// It returns nil with no error if an empty string is passed.
func decodeDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	d, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (vc *Credential) raw() (*rawCredential, error) {
	issuer, err := json.Marshal(vc.Issuer)
	if err != nil {
		return nil, err
	}

	r := &rawCredential{
		Context:      contextToRaw(vc.Context, vc.CustomContext),
		ID:           vc.ID,
		Type:         typesToRaw(vc.Types),
		Subject:      vc.Subject,
		Issuer:       issuer,
		Proof:        vc.Proof,
		CustomFields: vc.CustomFields,
	}

	// dates are always formatted with RFC 3339 at second precision so that the
	// serialization is stable between issuance and verification
	if vc.Issued != nil {
		r.Issued = vc.Issued.UTC().Format(time.RFC3339)
	}

	if vc.Expired != nil {
		r.Expired = vc.Expired.UTC().Format(time.RFC3339)
	}

	return r, nil
}

// MarshalJSON converts Verifiable Credential to JSON bytes.
func (vc *Credential) MarshalJSON() ([]byte, error) {
	raw, err := vc.raw()
	if err != nil {
		return nil, fmt.Errorf("JSON marshalling of verifiable credential: %w", err)
	}

	byteCred, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("JSON marshalling of verifiable credential: %w", err)
	}

	return byteCred, nil
}

// SubjectAs decodes the credential subject claim map into the given struct.
func (vc *Credential) SubjectAs(out interface{}) error {
	return DecodeSubject(vc.Subject, out)
}

// Validate checks that the marshalled credential conforms to the base
// W3C credential JSON schema. Non-conformance is reported as a
// *StructuralValidationError.
func Validate(vcBytes []byte) error {
	loader := gojsonschema.NewStringLoader(string(vcBytes))

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(defaultSchema), loader)
	if err != nil {
		return fmt.Errorf("validation of verifiable credential: %w", err)
	}

	if !result.Valid() {
		return &StructuralValidationError{Descriptions: describeSchemaValidationError(result)}
	}

	return nil
}

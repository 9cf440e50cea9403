/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

// CustomFields is a map of extra fields of struct build when unmarshalling JSON which are not
// mapped to the struct fields.
type CustomFields map[string]interface{}

// TypedID defines a flexible structure with id and type fields and arbitrary extra fields.
type TypedID struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
}

// Subject of the Verifiable Credential. It is an opaque claim map; the only
// mandatory entry is holder.id.
type Subject interface{}

// decodeType decodes "type" field: it can be a single string or an array of strings.
func decodeType(t interface{}) ([]string, error) {
	switch rType := t.(type) {
	case string:
		return []string{rType}, nil
	case []interface{}:
		types, err := stringSlice(rType)
		if err != nil {
			return nil, fmt.Errorf("vc types: %w", err)
		}

		return types, nil
	default:
		return nil, errors.New("credential type of unknown structure")
	}
}

// decodeContext decodes "@context" field: it can be a single string, or an array of strings
// possibly mixed with objects (custom contexts).
func decodeContext(c interface{}) ([]string, []interface{}, error) {
	switch rContext := c.(type) {
	case string:
		return []string{rContext}, nil, nil
	case []interface{}:
		strings := make([]string, 0)

		for i := range rContext {
			c, valid := rContext[i].(string)
			if !valid {
				// the remaining non-string elements are custom contexts
				return strings, rContext[i:], nil
			}

			strings = append(strings, c)
		}

		return strings, nil, nil
	default:
		return nil, nil, errors.New("credential @context of unknown structure")
	}
}

func stringSlice(values []interface{}) ([]string, error) {
	s := make([]string, len(values))

	for i := range values {
		t, valid := values[i].(string)
		if !valid {
			return nil, errors.New("array element is not a string")
		}

		s[i] = t
	}

	return s, nil
}

func typesToRaw(types []string) interface{} {
	if len(types) == 1 {
		// as string
		return types[0]
	}
	// as string array
	return types
}

func contextToRaw(context []string, cContext []interface{}) interface{} {
	if len(cContext) > 0 {
		// return as mixed array
		sContext := make([]interface{}, len(context), len(context)+len(cContext))
		for i := range context {
			sContext[i] = context[i]
		}

		sContext = append(sContext, cContext...)

		return sContext
	}

	return context
}

// subjectID gets the holder ID of the subject claim map.
func subjectID(subject interface{}) (string, error) {
	subjectMap, ok := subject.(map[string]interface{})
	if !ok {
		sMap, err := toMap(subject)
		if err != nil {
			return "", errors.New("subject of unknown structure")
		}

		subjectMap = sMap
	}

	holder, ok := subjectMap["holder"].(map[string]interface{})
	if !ok {
		return "", errors.New("subject holder is not defined")
	}

	id, ok := holder["id"].(string)
	if !ok {
		return "", errors.New("subject holder id is not a string")
	}

	return id, nil
}

// DecodeSubject decodes the subject claim map into the given struct, matching
// JSON field names case-insensitively.
func DecodeSubject(subject interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "json",
	})
	if err != nil {
		return fmt.Errorf("create subject decoder: %w", err)
	}

	return decoder.Decode(subject)
}

func describeSchemaValidationError(result *gojsonschema.Result) []string {
	descriptions := make([]string, len(result.Errors()))

	for i, desc := range result.Errors() {
		descriptions[i] = desc.String()
	}

	return descriptions
}

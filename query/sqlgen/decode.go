package sqlgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeFields decodes a flat JSON object into Fields, preserving the order in
// which keys appear in the document. Numbers are kept as json.Number; nested
// objects and arrays are rejected.
func DecodeFields(r io.Reader) (Fields, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidInput)
	}

	var fields Fields
	seen := make(map[string]struct{})

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		key, _ := tok.(string)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidInput, key)
		}
		seen[key] = struct{}{}

		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, ok := tok.(json.Delim); ok {
			return nil, fmt.Errorf("%w: field %q must be a scalar value", ErrInvalidInput, key)
		}
		fields = append(fields, Field{Name: key, Value: tok})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidInput)
	}

	return fields, nil
}

// DecodeFieldsBytes is DecodeFields over a byte slice.
func DecodeFieldsBytes(data []byte) (Fields, error) {
	return DecodeFields(bytes.NewReader(data))
}

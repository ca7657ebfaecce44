package sqlgen

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFieldsPreservesOrder(t *testing.T) {
	fields, err := DecodeFields(strings.NewReader(`{"salary": 10, "title": "New", "equity": null, "remote": true}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"salary", "title", "equity", "remote"}, fields.Names())
	assert.Equal(t, json.Number("10"), fields[0].Value)
	assert.Equal(t, "New", fields[1].Value)
	assert.Nil(t, fields[2].Value)
	assert.Equal(t, true, fields[3].Value)

	frag, err := CompileSet(fields, nil)
	require.NoError(t, err)
	assert.Equal(t, `"salary"=$1, "title"=$2, "equity"=$3, "remote"=$4`, frag.Text)
}

func TestDecodeFieldsEmptyObject(t *testing.T) {
	fields, err := DecodeFieldsBytes([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, fields)

	_, err = CompileSet(fields, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecodeFieldsErrors(t *testing.T) {
	inputs := map[string]string{
		"not an object":  `[1, 2]`,
		"nested object":  `{"a": {"b": 1}}`,
		"nested array":   `{"a": [1]}`,
		"duplicate key":  `{"a": 1, "a": 2}`,
		"trailing data":  `{"a": 1} {"b": 2}`,
		"malformed":      `{"a": }`,
		"empty document": ``,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFieldsBytes([]byte(input))
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

// Package sqlgen provides partial-update SET clause compilation.
package sqlgen

import (
	"fmt"
	"strings"
)

// Field is a single caller-supplied field and its new value.
type Field struct {
	Name  string
	Value interface{}
}

// Fields is an ordered list of fields. Order determines placeholder numbering.
type Fields []Field

// Names returns the field names in order
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the value of the named field
func (fs Fields) Lookup(name string) (interface{}, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Has returns true if the named field is present
func (fs Fields) Has(name string) bool {
	_, ok := fs.Lookup(name)
	return ok
}

// Replace returns a copy of fs with the named field's value replaced.
func (fs Fields) Replace(name string, value interface{}) Fields {
	out := make(Fields, len(fs))
	copy(out, fs)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
		}
	}
	return out
}

// CompileSet compiles fields into a SET fragment of the form
// "col1"=$1, "col2"=$2. Column names are resolved through aliases.
//
// Callers that append parameters after the fragment must number them from
// Fragment.Next().
func CompileSet(fields Fields, aliases Aliases) (Fragment, error) {
	if len(fields) == 0 {
		return Fragment{}, fmt.Errorf("%w: no data provided", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(fields))
	setParts := make([]string, 0, len(fields))
	values := make([]interface{}, 0, len(fields))
	argIndex := 1

	for _, f := range fields {
		if f.Name == "" {
			return Fragment{}, fmt.Errorf("%w: empty field name", ErrInvalidInput)
		}
		if _, dup := seen[f.Name]; dup {
			return Fragment{}, fmt.Errorf("%w: duplicate field %q", ErrInvalidInput, f.Name)
		}
		seen[f.Name] = struct{}{}

		col := ResolveColumn(f.Name, aliases)
		setParts = append(setParts, QuoteIdentifier(col)+"="+Placeholder(argIndex))
		values = append(values, f.Value)
		argIndex++
	}

	return Fragment{
		Text:   strings.Join(setParts, ", "),
		Values: values,
	}, nil
}

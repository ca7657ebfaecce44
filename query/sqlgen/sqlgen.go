// Package sqlgen compiles caller-supplied fields and filter criteria into
// parameterized PostgreSQL fragments.
package sqlgen

import (
	"strconv"
	"strings"
)

// Fragment is a piece of parameterized query text plus the values bound to its
// placeholders. Values[i] binds placeholder $i+1.
type Fragment struct {
	Text   string
	Values []interface{}
}

// IsEmpty returns true if the fragment has no text
func (f Fragment) IsEmpty() bool {
	return f.Text == ""
}

// Next returns the number of the first placeholder free after the fragment.
func (f Fragment) Next() int {
	return len(f.Values) + 1
}

// Args returns the fragment values followed by trailing, caller-supplied
// arguments. The fragment's own slice is never modified.
func (f Fragment) Args(trailing ...interface{}) []interface{} {
	args := make([]interface{}, 0, len(f.Values)+len(trailing))
	args = append(args, f.Values...)
	return append(args, trailing...)
}

// Where renders the fragment as a WHERE clause, or the empty string when there
// are no predicates so that the statement selects every row.
func (f Fragment) Where() string {
	if f.IsEmpty() {
		return ""
	}
	return " WHERE " + f.Text
}

// Placeholder renders the n-th positional parameter marker.
func Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// Aliases maps a caller-facing field name to its storage column.
type Aliases map[string]string

// ResolveColumn returns the column a field is stored in. Fields without an
// alias are stored under their own name.
func ResolveColumn(field string, aliases Aliases) string {
	if col, ok := aliases[field]; ok && col != "" {
		return col
	}
	return field
}

// QuoteIdentifier quotes an identifier for PostgreSQL
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// bareIdentifier leaves fixed, known column names unquoted.
func bareIdentifier(name string) string {
	return name
}

// Package sqlgen provides WHERE clause structures.
package sqlgen

// WhereClause represents an AND- or OR-joined list of conditions
type WhereClause struct {
	Conditions []Condition
	Operator   string // "AND" or "OR"
}

// Condition represents a single filter condition
type Condition struct {
	Field    string
	Operator string // "=", "!=", ">", "<", ">=", "<=", "ILIKE", "IS NULL", "IS NOT NULL"
	Value    interface{}
}

// Literal is a constant operand embedded directly in the query text. A
// condition whose value is a Literal consumes no placeholder.
//
// Literals are never built from caller input.
type Literal string

// NewWhereClause creates a new WHERE clause
func NewWhereClause() *WhereClause {
	return &WhereClause{
		Conditions: []Condition{},
		Operator:   "AND",
	}
}

// AddCondition adds a condition to the WHERE clause
func (w *WhereClause) AddCondition(condition Condition) {
	w.Conditions = append(w.Conditions, condition)
}

// IsEmpty returns true if the WHERE clause is empty
func (w *WhereClause) IsEmpty() bool {
	return w == nil || len(w.Conditions) == 0
}

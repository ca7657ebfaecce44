// Package sqlgen provides WHERE clause building logic.
package sqlgen

import (
	"fmt"
	"strings"
)

// buildWhere renders a WHERE clause. argIndex is the next free placeholder and
// is advanced once per bound value.
func buildWhere(where *WhereClause, argIndex *int, quoter func(string) string) (string, []interface{}, error) {
	if where.IsEmpty() {
		return "", nil, nil
	}

	var parts []string
	var args []interface{}

	for _, cond := range where.Conditions {
		condSQL, condArgs, err := buildCondition(cond, argIndex, quoter)
		if err != nil {
			return "", nil, err
		}
		if condSQL != "" {
			parts = append(parts, condSQL)
			args = append(args, condArgs...)
		}
	}

	if len(parts) == 0 {
		return "", nil, nil
	}

	op := "AND"
	if where.Operator == "OR" || where.Operator == "or" {
		op = "OR"
	}

	return strings.Join(parts, " "+op+" "), args, nil
}

// buildCondition builds a single condition
func buildCondition(cond Condition, argIndex *int, quoter func(string) string) (string, []interface{}, error) {
	switch cond.Operator {
	case "=", "!=", ">", "<", ">=", "<=", "ILIKE":
		if lit, ok := cond.Value.(Literal); ok {
			return fmt.Sprintf("%s %s %s", quoter(cond.Field), cond.Operator, lit), nil, nil
		}
		sql := fmt.Sprintf("%s %s %s", quoter(cond.Field), cond.Operator, Placeholder(*argIndex))
		(*argIndex)++
		return sql, []interface{}{cond.Value}, nil

	case "IS NULL":
		return fmt.Sprintf("%s IS NULL", quoter(cond.Field)), nil, nil

	case "IS NOT NULL":
		return fmt.Sprintf("%s IS NOT NULL", quoter(cond.Field)), nil, nil
	}

	return "", nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidInput, cond.Operator)
}

package sqlgen

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// JobFilter holds the optional job search criteria. Nil members are ignored.
type JobFilter struct {
	Title     *string
	MinSalary *float64
	HasEquity *bool
}

// IsEmpty returns true if no criterion is set
func (f JobFilter) IsEmpty() bool {
	return f.Title == nil && f.MinSalary == nil && f.HasEquity == nil
}

// CompileFilter compiles job search criteria into an AND-joined WHERE
// fragment. Criteria are examined in declaration order (title, minimum salary,
// equity), which fixes placeholder numbering. The equity criterion is a literal
// predicate and binds no value.
//
// A filter with no effective criteria compiles to an empty fragment; callers
// must then omit the WHERE keyword (see Fragment.Where).
func CompileFilter(f JobFilter) (Fragment, error) {
	where := NewWhereClause()

	if f.Title != nil && *f.Title != "" {
		where.AddCondition(Condition{Field: "title", Operator: "ILIKE", Value: "%" + *f.Title + "%"})
	}

	if f.MinSalary != nil {
		if math.IsNaN(*f.MinSalary) || math.IsInf(*f.MinSalary, 0) {
			return Fragment{}, fmt.Errorf("%w: minSalary must be a finite number", ErrInvalidInput)
		}
		where.AddCondition(Condition{Field: "salary", Operator: ">=", Value: *f.MinSalary})
	}

	if f.HasEquity != nil && *f.HasEquity {
		where.AddCondition(Condition{Field: "equity", Operator: ">", Value: Literal("0")})
	}

	argIndex := 1
	text, args, err := buildWhere(where, &argIndex, bareIdentifier)
	if err != nil {
		return Fragment{}, err
	}
	if args == nil {
		args = []interface{}{}
	}

	return Fragment{Text: text, Values: args}, nil
}

// ParseJobFilter reads job search criteria from a query string. minSalary
// must parse as a number; hasEquity is set only by the literal "true".
func ParseJobFilter(q url.Values) (JobFilter, error) {
	var f JobFilter
	var unknown []string

	for key, vals := range q {
		if len(vals) == 0 {
			continue
		}
		v := vals[len(vals)-1]

		switch key {
		case "title":
			title := v
			f.Title = &title
		case "minSalary":
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return JobFilter{}, fmt.Errorf("%w: minSalary must be a number, got %q", ErrInvalidInput, v)
			}
			f.MinSalary = &n
		case "hasEquity":
			b := v == "true"
			f.HasEquity = &b
		default:
			unknown = append(unknown, key)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return JobFilter{}, fmt.Errorf("%w: unknown filter %s", ErrInvalidInput, strings.Join(unknown, ", "))
	}

	return f, nil
}

package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
)

// problems collects validation messages in the order they were found.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return NewBadRequestError(p...)
}

// asString accepts a JSON string of bounded length.
func asString(field string, v any, minLen, maxLen int) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", field)
	}
	if n := len([]rune(s)); n < minLen || (maxLen > 0 && n > maxLen) {
		if maxLen > 0 {
			return "", fmt.Errorf("%s must be between %d and %d characters", field, minLen, maxLen)
		}
		return "", fmt.Errorf("%s must be at least %d characters", field, minLen)
	}
	return s, nil
}

// asEmail accepts a JSON string holding a single address.
func asEmail(field string, v any) (string, error) {
	s, err := asString(field, v, 6, 60)
	if err != nil {
		return "", err
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", fmt.Errorf("%s must be an email address", field)
	}
	return s, nil
}

// asSalary accepts a non-negative integer or null.
func asSalary(field string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := toFloat(v)
	if !ok || n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%s must be a non-negative integer", field)
	}
	return int64(n), nil
}

// asEquity accepts a number in [0, 1] or null. The value is kept in its
// decimal text form so NUMERIC precision is preserved.
func asEquity(field string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := toFloat(v)
	if !ok || n < 0 || n > 1 {
		return nil, fmt.Errorf("%s must be a number between 0 and 1", field)
	}
	switch x := v.(type) {
	case json.Number:
		return x.String(), nil
	case string:
		return strings.TrimSpace(x), nil
	}
	return strconv.FormatFloat(n, 'f', -1, 64), nil
}

func toFloat(v any) (float64, bool) {
	var n float64
	var err error
	switch x := v.(type) {
	case json.Number:
		n, err = x.Float64()
	case string:
		n, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

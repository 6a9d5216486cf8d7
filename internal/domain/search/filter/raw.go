package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Raw holds caller-supplied filter expressions, normalized to a flat list of
// clauses that are ANDed together.
type Raw struct {
	clauses []string
}

// RawString wraps an already combined expression.
func RawString(expr string) Raw {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Raw{}
	}
	return Raw{clauses: []string{expr}}
}

// RawGroups normalizes the array form: outer elements are ANDed,
// values inside one group are ORed.
func RawGroups(groups [][]string) Raw {
	var r Raw
	for _, g := range groups {
		parts := make([]string, 0, len(g))
		for _, p := range g {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, guardOr(p))
			}
		}
		switch len(parts) {
		case 0:
		case 1:
			r.clauses = append(r.clauses, parts[0])
		default:
			r.clauses = append(r.clauses, "("+strings.Join(parts, Or)+")")
		}
	}
	return r
}

// ParseRaw decodes either a JSON string or a JSON array whose elements are
// strings or arrays of strings. null and empty input yield an empty Raw.
func ParseRaw(data []byte) (Raw, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Raw{}, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return RawString(s), nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Raw{}, fmt.Errorf("filter must be a string or an array: %w", err)
	}
	groups := make([][]string, 0, len(items))
	for i, item := range items {
		var one string
		if err := json.Unmarshal(item, &one); err == nil {
			groups = append(groups, []string{one})
			continue
		}
		var many []string
		if err := json.Unmarshal(item, &many); err != nil {
			return Raw{}, fmt.Errorf("filter[%d] must be a string or an array of strings", i)
		}
		groups = append(groups, many)
	}
	return RawGroups(groups), nil
}

// Clauses returns a copy of the normalized clauses.
func (r Raw) Clauses() []string {
	return append([]string(nil), r.clauses...)
}

// IsEmpty reports whether no clause is present.
func (r Raw) IsEmpty() bool { return len(r.clauses) == 0 }

// guardOr parenthesizes an expression with a top-level OR so that ANDing it
// with other clauses keeps its meaning.
func guardOr(expr string) string {
	if !strings.Contains(expr, Or) || isWrapped(expr) {
		return expr
	}
	return "(" + expr + ")"
}

// isWrapped reports whether expr is enclosed by one matching pair of parentheses.
// Quoted sections are skipped.
func isWrapped(expr string) bool {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return false
	}
	depth := 0
	inQuote := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && inQuote:
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(expr)-1 {
				return false
			}
		}
	}
	return depth == 0
}

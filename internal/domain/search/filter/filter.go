package filter

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/findex/internal/domain/geo"
)

// Filter grammar keywords and functions of the engine.
const (
	And       = " AND "
	Or        = " OR "
	GeoRadius = "_geoRadius"
)

// MaxValuesPerFacet is the maximum number of selected values per facet.
const MaxValuesPerFacet = 64

// Input holds every independently optional source of filter clauses.
type Input struct {
	Facets map[string][]string // facet name -> selected values (OR within a facet)
	Flags  map[string]bool     // boolean attributes, e.g. in_stock
	Ranges map[string]Range    // numeric attribute -> bounds
	Geo    *geo.Radius
	Raw    Raw // caller-supplied expressions
}

// Compile builds one engine filter expression out of in.
// Clauses are ANDed in the order: facet groups, boolean flags, numeric ranges,
// geo radius, raw expressions. Reports false when no clause was produced.
func Compile(in Input) (string, bool) {
	var clauses []string

	for _, name := range sortedKeys(in.Facets) {
		clauses = append(clauses, FacetGroup(name, in.Facets[name]))
	}
	for _, name := range sortedKeys(in.Flags) {
		clauses = append(clauses, name+" = "+strconv.FormatBool(in.Flags[name]))
	}
	for _, name := range sortedKeys(in.Ranges) {
		clauses = append(clauses, RangeClause(name, in.Ranges[name]))
	}
	if in.Geo != nil {
		clauses = append(clauses, GeoClause(*in.Geo))
	}

	raw := in.Raw.Clauses()
	if nonEmpty(clauses)+len(raw) > 1 {
		for i := range raw {
			raw[i] = guardOr(raw[i])
		}
	}
	clauses = append(clauses, raw...)

	return Combine(clauses...)
}

// Combine ANDs the non-empty clauses. A single clause is returned as is.
// Reports false when nothing remains.
func Combine(clauses ...string) (string, bool) {
	valid := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return "", false
	}
	return strings.Join(valid, And), true
}

// Equals renders `field = "value"`.
func Equals(field, value string) string {
	return field + ` = "` + escape(value) + `"`
}

// FacetGroup renders the OR of equality clauses for one facet.
// Multiple values are parenthesized; empty and duplicate values are skipped.
// Returns "" when no value is left.
func FacetGroup(field string, values []string) string {
	seen := make(map[string]struct{}, len(values))
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		parts = append(parts, Equals(field, v))
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, Or) + ")"
}

// RangeClause renders a numeric bound clause:
// `field min TO max`, `field >= min`, `field <= max`, or "" for an open range.
func RangeClause(field string, r Range) string {
	switch {
	case r.min != nil && r.max != nil:
		return field + " " + FormatNumber(*r.min) + " TO " + FormatNumber(*r.max)
	case r.min != nil:
		return field + " >= " + FormatNumber(*r.min)
	case r.max != nil:
		return field + " <= " + FormatNumber(*r.max)
	}
	return ""
}

// GeoClause renders `_geoRadius(lat, lng, radiusMeters)`.
func GeoClause(r geo.Radius) string {
	return fmt.Sprintf("%s(%s, %s, %s)", GeoRadius,
		FormatNumber(r.Lat), FormatNumber(r.Lng), FormatNumber(r.RadiusMeters))
}

// FormatNumber renders v with the shortest decimal representation that round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Range is a numeric interval with optional inclusive bounds.
type Range struct {
	min *float64
	max *float64
}

// NewRange validates and creates a Range. Bounds must be finite and min <= max.
// Both bounds may be nil, which yields no clause.
func NewRange(minVal, maxVal *float64) (Range, error) {
	for _, v := range []*float64{minVal, maxVal} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return Range{}, fmt.Errorf("range bound must be finite, got %v", *v)
		}
	}
	if minVal != nil && maxVal != nil && *minVal > *maxVal {
		return Range{}, fmt.Errorf("range min %v is greater than max %v", *minVal, *maxVal)
	}
	return Range{min: minVal, max: maxVal}, nil
}

// Min returns the lower inclusive bound.
func (r Range) Min() *float64 { return r.min }

// Max returns the upper inclusive bound.
func (r Range) Max() *float64 { return r.max }

// IsEmpty reports whether neither bound is set.
func (r Range) IsEmpty() bool { return r.min == nil && r.max == nil }

func escape(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func nonEmpty(clauses []string) int {
	n := 0
	for _, c := range clauses {
		if c != "" {
			n++
		}
	}
	return n
}

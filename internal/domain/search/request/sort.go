package request

import (
	"errors"
	"strconv"
	"strings"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/geo"
	"github.com/kailas-cloud/findex/internal/domain/search/filter"
)

// Direction is a sort order.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const geoPointPrefix = "_geoPoint("

// Sort is one validated sort clause: either an attribute or the distance
// to a point.
type Sort struct {
	Field     string
	Direction Direction
	Point     *geo.Radius // only Lat/Lng are used
}

// String renders the engine form: `field:dir` or `_geoPoint(lat,lng):dir`.
func (s Sort) String() string {
	if s.Point != nil {
		return geoPointPrefix + filter.FormatNumber(s.Point.Lat) + "," +
			filter.FormatNumber(s.Point.Lng) + "):" + string(s.Direction)
	}
	return s.Field + ":" + string(s.Direction)
}

// ParseSorts validates every clause against the collection's sortable attributes.
// Blank clauses are skipped.
func ParseSorts(c collection.Name, clauses []string) ([]Sort, error) {
	if len(clauses) > MaxSort {
		return nil, domain.Validationf("too many sort clauses (max %d)", MaxSort)
	}
	out := make([]Sort, 0, len(clauses))
	for _, raw := range clauses {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		s, err := ParseSort(c, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseSort validates one clause.
func ParseSort(c collection.Name, clause string) (Sort, error) {
	clause = strings.TrimSpace(clause)
	idx := strings.LastIndexByte(clause, ':')
	if idx <= 0 {
		return Sort{}, domain.Validationf("sort clause %q must look like field:asc or field:desc", clause)
	}
	target, dir := strings.TrimSpace(clause[:idx]), Direction(strings.TrimSpace(clause[idx+1:]))
	if dir != Asc && dir != Desc {
		return Sort{}, domain.Validationf("sort clause %q: direction must be asc or desc", clause)
	}

	if strings.HasPrefix(target, geoPointPrefix) {
		if !c.IsSortable(collection.GeoAttribute) {
			return Sort{}, domain.Validationf("collection %s cannot be sorted by distance", c)
		}
		p, err := parseGeoPoint(target)
		if err != nil {
			return Sort{}, domain.Validationf("sort clause %q: %v", clause, err)
		}
		return Sort{Field: collection.GeoAttribute, Direction: dir, Point: &p}, nil
	}

	if !c.IsSortable(target) || target == collection.GeoAttribute {
		return Sort{}, domain.Validationf("attribute %q is not sortable in %s", target, c)
	}
	return Sort{Field: target, Direction: dir}, nil
}

func parseGeoPoint(target string) (geo.Radius, error) {
	if !strings.HasSuffix(target, ")") {
		return geo.Radius{}, errMalformedPoint
	}
	args := strings.Split(target[len(geoPointPrefix):len(target)-1], ",")
	if len(args) != 2 {
		return geo.Radius{}, errMalformedPoint
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return geo.Radius{}, errMalformedPoint
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return geo.Radius{}, errMalformedPoint
	}
	if !geo.ValidateCoordinates(lat, lng) {
		return geo.Radius{}, errInvalidPoint
	}
	return geo.Radius{Lat: lat, Lng: lng}, nil
}

var (
	errMalformedPoint = errors.New("expected _geoPoint(lat,lng)")
	errInvalidPoint   = errors.New("coordinates out of range")
)

package collection

import (
	"fmt"
	"slices"
)

// Name identifies one of the searchable collections.
type Name string

const (
	// Products is the catalog items collection.
	Products Name = "products"
	// Articles is the knowledge articles collection.
	Articles Name = "articles"
)

// PrimaryKey is the document identifier attribute shared by all collections.
const PrimaryKey = "id"

// All lists every known collection in a stable order.
func All() []Name { return []Name{Products, Articles} }

// IsValid checks if the collection is one of the supported values.
func (n Name) IsValid() bool {
	return n == Products || n == Articles
}

// Parse validates a collection name.
func Parse(s string) (Name, error) {
	n := Name(s)
	if !n.IsValid() {
		return "", fmt.Errorf("unknown collection %q", s)
	}
	return n, nil
}

// FacetKind is how the UI presents a facet.
type FacetKind string

// Facet kinds.
const (
	KindMulti   FacetKind = "multi"
	KindSingle  FacetKind = "single"
	KindRange   FacetKind = "range"
	KindBoolean FacetKind = "boolean"
)

// FacetMeta describes one facet for presentation.
type FacetMeta struct {
	Name   string    `json:"name"`
	Label  string    `json:"label"`
	Kind   FacetKind `json:"kind"`
	SortBy string    `json:"sortBy,omitempty"` // count, alpha
}

var facetMeta = map[string]FacetMeta{
	"categories": {Name: "categories", Label: "Categories", Kind: KindMulti, SortBy: "count"},
	"brand":      {Name: "brand", Label: "Brand", Kind: KindMulti, SortBy: "count"},
	"tags":       {Name: "tags", Label: "Tags", Kind: KindMulti, SortBy: "count"},
	"color":      {Name: "color", Label: "Color", Kind: KindMulti, SortBy: "alpha"},
	"topics":     {Name: "topics", Label: "Topics", Kind: KindMulti, SortBy: "count"},
	"author":     {Name: "author", Label: "Author", Kind: KindMulti, SortBy: "alpha"},
	"in_stock":   {Name: "in_stock", Label: "In Stock", Kind: KindBoolean},
	"price":      {Name: "price", Label: "Price", Kind: KindRange},
	"rating":     {Name: "rating", Label: "Rating", Kind: KindRange},
}

// Facets returns the facets computed by default for a collection.
func (n Name) Facets() []string {
	switch n {
	case Products:
		return []string{"categories", "brand", "tags", "color"}
	case Articles:
		return []string{"topics", "author"}
	}
	return nil
}

// FacetMeta returns presentation metadata for every facet of the collection,
// including range and boolean filters.
func (n Name) FacetMeta() []FacetMeta {
	names := n.Facets()
	if n == Products {
		names = append(names, "price", "rating", "in_stock")
	}
	out := make([]FacetMeta, 0, len(names))
	for _, name := range names {
		out = append(out, facetMeta[name])
	}
	return out
}

// IsFilterable reports whether attr can be used in a filter expression.
func (n Name) IsFilterable(attr string) bool {
	return slices.Contains(n.Settings().FilterableAttributes, attr)
}

// IsSortable reports whether attr can be used in a sort clause.
func (n Name) IsSortable(attr string) bool {
	return slices.Contains(n.Settings().SortableAttributes, attr)
}

// GeoAttribute is the reserved attribute holding document coordinates.
const GeoAttribute = "_geo"

// SupportsGeo reports whether documents carry coordinates.
func (n Name) SupportsGeo() bool {
	return n.IsFilterable(GeoAttribute)
}

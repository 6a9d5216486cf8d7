package collection

// Settings is the index configuration applied at bootstrap.
type Settings struct {
	SearchableAttributes []string       `json:"searchableAttributes,omitempty"`
	FilterableAttributes []string       `json:"filterableAttributes,omitempty"`
	SortableAttributes   []string       `json:"sortableAttributes,omitempty"`
	RankingRules         []string       `json:"rankingRules,omitempty"`
	TypoTolerance        *TypoTolerance `json:"typoTolerance,omitempty"`
	Faceting             *Faceting      `json:"faceting,omitempty"`
	Pagination           *Pagination    `json:"pagination,omitempty"`
}

// TypoTolerance configures typo handling.
type TypoTolerance struct {
	Enabled             bool         `json:"enabled"`
	MinWordSizeForTypos MinWordSizes `json:"minWordSizeForTypos"`
	DisableOnAttributes []string     `json:"disableOnAttributes,omitempty"`
}

// MinWordSizes sets the word lengths at which one and two typos are accepted.
type MinWordSizes struct {
	OneTypo  int `json:"oneTypo"`
	TwoTypos int `json:"twoTypos"`
}

// Faceting configures facet value retrieval.
type Faceting struct {
	MaxValuesPerFacet int               `json:"maxValuesPerFacet"`
	SortFacetValuesBy map[string]string `json:"sortFacetValuesBy,omitempty"`
}

// Pagination caps the number of reachable hits.
type Pagination struct {
	MaxTotalHits int `json:"maxTotalHits"`
}

// Embedder configures a vector embedder on the engine side.
type Embedder struct {
	Source           string `json:"source"`
	APIKey           string `json:"apiKey,omitempty"`
	Model            string `json:"model,omitempty"`
	Dimensions       int    `json:"dimensions,omitempty"`
	DocumentTemplate string `json:"documentTemplate,omitempty"`
}

// Embedder sources understood by the engine.
const (
	EmbedderSourceOpenAI       = "openAi"
	EmbedderSourceUserProvided = "userProvided"
)

var defaultTypos = MinWordSizes{OneTypo: 5, TwoTypos: 9}

// Settings returns the index settings of the collection.
func (n Name) Settings() Settings {
	switch n {
	case Products:
		return Settings{
			SearchableAttributes: []string{"title", "description", "brand", "categories", "tags"},
			FilterableAttributes: []string{
				"categories", "brand", "tags", "price", "rating", "in_stock",
				GeoAttribute, "color", "created_at", "product_id",
			},
			SortableAttributes: []string{"price", "rating", "popularity", "created_at", GeoAttribute},
			RankingRules: []string{
				"words", "typo", "proximity", "attribute", "sort", "exactness",
				"popularity:desc", "rating:desc",
			},
			TypoTolerance: &TypoTolerance{
				Enabled:             true,
				MinWordSizeForTypos: defaultTypos,
				DisableOnAttributes: []string{"product_id"},
			},
			Faceting: &Faceting{
				MaxValuesPerFacet: 100,
				SortFacetValuesBy: map[string]string{"*": "count", "color": "alpha"},
			},
			Pagination: &Pagination{MaxTotalHits: 10000},
		}
	case Articles:
		return Settings{
			SearchableAttributes: []string{"title", "body", "topics"},
			FilterableAttributes: []string{"topics", "author", "published_at", "product_refs"},
			SortableAttributes:   []string{"published_at"},
			RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
			TypoTolerance: &TypoTolerance{
				Enabled:             true,
				MinWordSizeForTypos: defaultTypos,
			},
			Faceting: &Faceting{
				MaxValuesPerFacet: 100,
				SortFacetValuesBy: map[string]string{"*": "count", "author": "alpha"},
			},
			Pagination: &Pagination{MaxTotalHits: 1000},
		}
	}
	return Settings{}
}

// Synonyms returns the synonym table of the collection.
func (n Name) Synonyms() map[string][]string {
	switch n {
	case Products:
		return map[string][]string{
			"cellphone":  {"smartphone", "mobile phone"},
			"smartphone": {"cellphone", "mobile phone"},
			"sneakers":   {"trainers", "running shoes"},
			"trainers":   {"sneakers", "running shoes"},
			"hoodie":     {"hooded sweatshirt", "hoody"},
			"laptop":     {"notebook", "portable computer"},
			"notebook":   {"laptop"},
			"earbuds":    {"in-ear headphones", "earphones"},
			"headphones": {"earbuds", "headset"},
			"tv":         {"television"},
			"fridge":     {"refrigerator"},
			"couch":      {"sofa"},
		}
	case Articles:
		return map[string][]string{
			"return":   {"refund", "send back"},
			"refund":   {"return", "money back"},
			"warranty": {"guarantee"},
			"shipping": {"delivery"},
			"delivery": {"shipping"},
		}
	}
	return nil
}

// DocumentTemplate is the text rendered per document for engine-side embedding.
func (n Name) DocumentTemplate() string {
	switch n {
	case Products:
		return "title: {{doc.title}}\n{{doc.description}}\nbrand: {{doc.brand}}\n" +
			"categories: {{doc.categories}}\ntags: {{doc.tags}}"
	case Articles:
		return "{{doc.title}}\n\n{{doc.body}}\n\nTopics: {{doc.topics}}"
	}
	return ""
}

package domain

// GeoPoint is a document location in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Product is a catalog item document.
type Product struct {
	ID          string   `json:"id"`
	ProductID   string   `json:"product_id"` // groups variants
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"` // 0-5
	InStock     bool     `json:"in_stock"`
	Popularity  int      `json:"popularity"`
	CreatedAt   string   `json:"created_at"` // RFC 3339
	Color       string   `json:"color"`
	Geo         GeoPoint `json:"_geo"`
}

// Article is a knowledge article document.
type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Topics      []string `json:"topics"`
	Author      string   `json:"author"`
	PublishedAt string   `json:"published_at"`
	ProductRefs []string `json:"product_refs"`
}

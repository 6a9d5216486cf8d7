package collection

// Stats is the engine-side state of one index.
type Stats struct {
	NumberOfDocuments int64          `json:"numberOfDocuments"`
	IsIndexing        bool           `json:"isIndexing"`
	FieldDistribution map[string]int `json:"fieldDistribution,omitempty"`
}

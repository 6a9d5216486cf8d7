package mode

import (
	"fmt"
	"math"
	"strings"
)

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid combines semantic and keyword search with a tunable ratio.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Keyword  Mode = "keyword"
)

// DefaultSemanticRatio is the hybrid weighting used when the caller sets none.
const DefaultSemanticRatio = 0.5

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}

// Parse validates a mode string. Empty input yields Hybrid.
func Parse(s string) (Mode, error) {
	m := Mode(strings.TrimSpace(s))
	if m == "" {
		return Hybrid, nil
	}
	if !m.IsValid() {
		return "", fmt.Errorf("invalid search mode: %q", s)
	}
	return m, nil
}

// HybridDirective is the hybrid-search weighting sent with every query.
type HybridDirective struct {
	SemanticRatio float64
	Embedder      string
}

// Resolve maps a mode onto a weighting: keyword is 0, semantic is 1,
// hybrid uses ratio clamped to [0,1]. The embedder name is passed through.
func Resolve(m Mode, ratio float64, embedder string) HybridDirective {
	d := HybridDirective{Embedder: embedder}
	switch m {
	case Keyword:
		d.SemanticRatio = 0
	case Semantic:
		d.SemanticRatio = 1
	default:
		d.SemanticRatio = Clamp(ratio)
	}
	return d
}

// Clamp bounds a ratio to [0,1]. NaN becomes 0.
func Clamp(ratio float64) float64 {
	if math.IsNaN(ratio) {
		return 0
	}
	return math.Min(1, math.Max(0, ratio))
}

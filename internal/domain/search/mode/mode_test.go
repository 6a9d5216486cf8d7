package mode

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	valid := []Mode{Hybrid, Semantic, Keyword}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "full-text", "vector", "HYBRID", "geo"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Hybrid, false},
		{"keyword", Keyword, false},
		{" semantic ", Semantic, false},
		{"hybrid", Hybrid, false},
		{"vector", "", true},
		{"Keyword", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		ratio float64
		want  float64
	}{
		{"keyword ignores ratio", Keyword, 0.9, 0},
		{"semantic ignores ratio", Semantic, 0.1, 1},
		{"hybrid explicit", Hybrid, 0.7, 0.7},
		{"hybrid clamps high", Hybrid, 1.5, 1},
		{"hybrid clamps low", Hybrid, -0.2, 0},
		{"hybrid nan", Hybrid, math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.mode, tt.ratio, "openai")
			if d.SemanticRatio != tt.want {
				t.Errorf("SemanticRatio = %v, want %v", d.SemanticRatio, tt.want)
			}
			if d.Embedder != "openai" {
				t.Errorf("Embedder = %q, want openai", d.Embedder)
			}
		})
	}
}

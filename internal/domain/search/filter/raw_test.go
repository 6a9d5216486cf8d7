package filter

import (
	"slices"
	"testing"
)

func TestParseRaw(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"null", `null`, nil},
		{"empty input", ``, nil},
		{"string", `"price >= 10 AND rating >= 4"`, []string{"price >= 10 AND rating >= 4"}},
		{"flat array", `["price >= 10", "in_stock = true"]`, []string{"price >= 10", "in_stock = true"}},
		{"or groups", `[["color = Red", "color = Blue"], "in_stock = true"]`,
			[]string{"(color = Red OR color = Blue)", "in_stock = true"}},
		{"single-element group", `[["color = Red"]]`, []string{"color = Red"}},
		{"blank entries dropped", `["", [""], "  "]`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRaw([]byte(tt.in))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := r.Clauses(); !slices.Equal(got, tt.want) {
				t.Errorf("Clauses() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRaw_Invalid(t *testing.T) {
	for _, in := range []string{`42`, `{"a":1}`, `[1, 2]`, `[[1]]`} {
		if _, err := ParseRaw([]byte(in)); err == nil {
			t.Errorf("ParseRaw(%s): expected error", in)
		}
	}
}

func TestIsWrapped(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"(a OR b)", true},
		{"(a) OR (b)", false},
		{`(a = "x)" OR b)`, true},
		{"a OR b", false},
		{"()", true},
	}
	for _, tt := range tests {
		if got := isWrapped(tt.in); got != tt.want {
			t.Errorf("isWrapped(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package sanitize

import (
	"math"
	"testing"
)

func TestFloat(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"nan", math.NaN(), 0},
		{"pos_inf", math.Inf(1), 0},
		{"neg_inf", math.Inf(-1), 0},
		{"finite", 12.5, 12.5},
		{"zero", 0, 0},
		{"negative", -3.7, -3.7},
	}
	for _, c := range cases {
		if got := Float(c.in); got != c.want {
			t.Errorf("%s: Float(%v) = %v, want %v", c.name, c.in, got, c.want)
		}
	}
}

func TestValue(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"numeric_string", "12.5", 12.5},
		{"string_with_commas", "1,234,567", 1234567},
		{"garbage_string", "abc", 0},
		{"dash", "-", 0},
		{"int", 42, 42},
		{"float", 3.14, 3.14},
		{"bool", true, 0},
	}
	for _, c := range cases {
		if got := Value(c.in); got != c.want {
			t.Errorf("%s: Value(%v) = %v, want %v", c.name, c.in, got, c.want)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.4249, 2); got != 1.42 {
		t.Errorf("Round(1.4249, 2) = %v, want 1.42", got)
	}
	if got := Round(math.NaN(), 2); got != 0 {
		t.Errorf("Round(NaN, 2) = %v, want 0", got)
	}
}

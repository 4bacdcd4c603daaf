package utils

import "testing"

func TestLookupIngredientPrice(t *testing.T) {
	tests := []struct {
		name  string
		want  float64
		found bool
	}{
		{"rice", 0.20, true},
		{"Basmati Rice", 0.20, true}, // table key inside the name
		{"chicken breast fillet", 1.20, true}, // longest key wins over "chicken"
		{"dragonfruit", 0, false},
		{"", 0, false},
		{"  salmon  ", 2.50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := lookupIngredientPrice(tt.name)
			if found != tt.found || got != tt.want {
				t.Errorf("lookupIngredientPrice(%q) = %v,%v want %v,%v",
					tt.name, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestEstimateIngredientCost(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		quantity float64
		want     float64
	}{
		{"rice", "g", 500, 1.0},             // 0.20 x 0.01 x 500
		{"rice", "kg", 1, 2.0},              // 0.20 x 10
		{"olive oil", "tbsp", 2, 0.3},       // 1.00 x 0.15 x 2
		{"egg", "piece", 4, 1.0},            // 0.50 x 0.5 x 4
		{"rice", "handful", 2, 0.2},         // unknown unit behaves like piece
		{"dragonfruit", "g", 3, 7.5},        // unknown ingredient: flat 2.50 per quantity
		{"rice", "g", 0, 0},                 // nothing costs nothing
		{"rice", "g", -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.unit, func(t *testing.T) {
			got := EstimateIngredientCost(tt.name, tt.unit, tt.quantity)
			if RoundCents(got) != tt.want {
				t.Errorf("EstimateIngredientCost(%q,%q,%v) = %v, want %v",
					tt.name, tt.unit, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.004, 1.00},
		{1.006, 1.01},
		{-1.006, -1.01},
		{0, 0},
		{2.999, 3.00},
	}
	for _, tt := range tests {
		if got := RoundCents(tt.in); got != tt.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

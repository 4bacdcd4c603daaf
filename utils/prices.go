package utils

import (
	"math"
	"strings"
)

// Static per-100g reference prices (rough supermarket averages, USD).
// Pricing here is an estimate for shopping-list display, not a guarantee.
var ingredientPrices = map[string]float64{
	"chicken breast": 1.20,
	"chicken":        1.00,
	"beef":           1.80,
	"salmon":         2.50,
	"tuna":           1.60,
	"egg":            0.50,
	"milk":           0.12,
	"yogurt":         0.40,
	"cheese":         1.10,
	"butter":         0.90,
	"olive oil":      1.00,
	"rice":           0.20,
	"pasta":          0.25,
	"bread":          0.35,
	"oats":           0.30,
	"quinoa":         0.70,
	"flour":          0.15,
	"potato":         0.20,
	"sweet potato":   0.30,
	"tomato":         0.40,
	"onion":          0.25,
	"garlic":         0.80,
	"carrot":         0.25,
	"broccoli":       0.45,
	"spinach":        0.60,
	"lettuce":        0.35,
	"cucumber":       0.30,
	"pepper":         0.55,
	"avocado":        0.90,
	"banana":         0.25,
	"apple":          0.40,
	"berries":        1.20,
	"lemon":          0.50,
	"beans":          0.30,
	"lentils":        0.35,
	"chickpeas":      0.30,
	"tofu":           0.60,
	"almonds":        1.50,
	"walnuts":        1.60,
	"peanut butter":  0.80,
	"honey":          1.00,
	"sugar":          0.10,
	"salt":           0.05,
}

// defaultUnitPrice covers ingredients the table doesn't know.
const defaultUnitPrice = 2.50

// Multipliers converting a unit quantity into "100g equivalents" for the
// table above. Volume units are rough kitchen approximations.
var unitFactors = map[string]float64{
	"kg":    10,
	"g":     0.01,
	"gram":  0.01,
	"grams": 0.01,
	"lb":    4.54,
	"lbs":   4.54,
	"oz":    0.28,
	"l":     10,
	"liter": 10,
	"ml":    0.01,
	"cup":   2.4,
	"cups":  2.4,
	"tbsp":  0.15,
	"tsp":   0.05,
	"piece": 0.5,
	"pcs":   0.5,
	"unit":  0.5,
	"slice": 0.3,
	"clove": 0.05,
}

// lookupIngredientPrice finds a per-100g price via substring matching in
// both directions, longest table key first so "chicken breast" beats
// "chicken". Returns false when nothing matches.
func lookupIngredientPrice(name string) (float64, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return 0, false
	}
	if p, ok := ingredientPrices[n]; ok {
		return p, true
	}

	best := ""
	for key := range ingredientPrices {
		if strings.Contains(n, key) || strings.Contains(key, n) {
			if len(key) > len(best) {
				best = key
			}
		}
	}
	if best == "" {
		return 0, false
	}
	return ingredientPrices[best], true
}

// EstimateIngredientCost prices quantity×unit of an ingredient. The result
// is unrounded; callers round per line item before summing.
func EstimateIngredientCost(name, unit string, quantity float64) float64 {
	if quantity <= 0 {
		return 0
	}

	price, ok := lookupIngredientPrice(name)
	if !ok {
		return defaultUnitPrice * quantity
	}

	factor, ok := unitFactors[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		factor = 0.5 // treat unknown units like "piece"
	}
	return price * factor * quantity
}

// RoundCents rounds to 2 decimals, half away from zero.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

package utils

import "strings"

// Common aliases so "peanuts" in a user's allergy list flags a meal whose
// allergens say "peanut" or whose ingredients mention "peanut butter".
var allergenAliases = map[string][]string{
	"peanuts":   {"peanut"},
	"tree nuts": {"almond", "walnut", "cashew", "pecan", "hazelnut"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster"},
	"dairy":     {"milk", "cheese", "yogurt", "butter", "cream"},
	"gluten":    {"wheat", "flour", "bread", "pasta"},
	"eggs":      {"egg"},
	"soy":       {"tofu", "soybean", "edamame"},
	"fish":      {"salmon", "tuna", "cod"},
}

func allergenTerms(allergy string) []string {
	a := strings.ToLower(strings.TrimSpace(allergy))
	terms := []string{a, strings.TrimSuffix(a, "s")}
	if extra, ok := allergenAliases[a]; ok {
		terms = append(terms, extra...)
	}
	return terms
}

// FindAllergenConflicts returns the user allergies that a meal's declared
// allergens or ingredient names match. Matching is substring based, same
// policy as shopping-list price lookup.
func FindAllergenConflicts(allergies, mealAllergens, ingredientNames []string) []string {
	if len(allergies) == 0 {
		return nil
	}

	haystack := make([]string, 0, len(mealAllergens)+len(ingredientNames))
	for _, s := range mealAllergens {
		haystack = append(haystack, strings.ToLower(s))
	}
	for _, s := range ingredientNames {
		haystack = append(haystack, strings.ToLower(s))
	}

	var conflicts []string
	for _, allergy := range allergies {
		terms := allergenTerms(allergy)
	scan:
		for _, h := range haystack {
			for _, t := range terms {
				if t != "" && strings.Contains(h, t) {
					conflicts = append(conflicts, allergy)
					break scan
				}
			}
		}
	}
	return conflicts
}

package ingredient

import (
	"regexp"

	"recipebox/internal/quantity"
)

var (
	measurementRe = regexp.MustCompile(`(?i)(?:\d|[` + quantity.GlyphClass + `])\s*(?:cups?|tbsps?|tbs|tablespoons?|tsps?|teaspoons?|oz|ounces?|lbs?|pounds?|g|grams?|kg|kilograms?|ml|milliliters?|l|liters?|litres?|pints?|quarts?|gallons?|cloves?|pieces?|slices?|strips?|cans?|jars?|bottles?|packages?|sticks?|bunch(?:es)?|sprigs?|heads?|tbl|c|t)\b|\ban?\s+(?:pinch|dash|handful|sprinkle|splash)\b`)
	stapleRe      = regexp.MustCompile(`(?i)\b(?:salt|peppers?|sugar|flour|butter|oil|eggs?|milk|water|garlic|onions?|shallots?|cream|cheese|vanilla|baking (?:soda|powder)|yeast|honey|lemons?|limes?|tomato(?:es)?|potato(?:es)?|carrots?|celery|chicken|beef|pork|bacon|rice|pasta|noodles|vinegar|stock|broth|parsley|cilantro|basil|thyme|oregano|cinnamon|nutmeg|paprika|cumin|chocolate|cocoa|nuts?|almonds?|walnuts?|pecans?|cornstarch|ginger|soy sauce|mustard|mayonnaise|yogurt|buttermilk)\b`)
)

// HasMeasurement reports whether line mentions an amount with a unit.
func HasMeasurement(line string) bool {
	return measurementRe.MatchString(line)
}

// HasStaple reports whether line names a common pantry staple.
func HasStaple(line string) bool {
	return stapleRe.MatchString(line)
}

// LooksLikeIngredient reports whether line has the shape of an ingredient
// line: a measurement or a pantry staple.
func LooksLikeIngredient(line string) bool {
	return HasMeasurement(line) || HasStaple(line)
}

package ingredient

import "strings"

// canonicalUnits maps lower-cased spelling variants to the canonical short form.
var canonicalUnits = map[string]string{
	"c":           "Cup",
	"cup":         "Cup",
	"cups":        "Cup",
	"tbsp":        "Tbsp",
	"tbsps":       "Tbsp",
	"tbs":         "Tbsp",
	"tbl":         "Tbsp",
	"tablespoon":  "Tbsp",
	"tablespoons": "Tbsp",
	"tsp":         "tsp",
	"tsps":        "tsp",
	"teaspoon":    "tsp",
	"teaspoons":   "tsp",
	"oz":          "oz",
	"ounce":       "oz",
	"ounces":      "oz",
	"lb":          "lb",
	"lbs":         "lb",
	"pound":       "lb",
	"pounds":      "lb",
	"g":           "g",
	"gram":        "g",
	"grams":       "g",
	"kg":          "kg",
	"kilogram":    "kg",
	"kilograms":   "kg",
	"ml":          "ml",
	"milliliter":  "ml",
	"milliliters": "ml",
	"millilitre":  "ml",
	"millilitres": "ml",
	"l":           "L",
	"liter":       "L",
	"liters":      "L",
	"litre":       "L",
	"litres":      "L",
	"pt":          "pint",
	"pint":        "pint",
	"pints":       "pint",
	"qt":          "quart",
	"quart":       "quart",
	"quarts":      "quart",
	"gal":         "gallon",
	"gallon":      "gallon",
	"gallons":     "gallon",
	"clove":       "clove",
	"cloves":      "clove",
	"piece":       "piece",
	"pieces":      "piece",
	"slice":       "slice",
	"slices":      "slice",
	"strip":       "strip",
	"strips":      "strip",
	"bottle":      "bottle",
	"bottles":     "bottle",
	"can":         "can",
	"cans":        "can",
	"jar":         "jar",
	"jars":        "jar",
	"package":     "package",
	"packages":    "package",
	"pkg":         "package",
	"pkgs":        "package",
}

// StandardizeUnit collapses spelling variants of a unit to its canonical short
// form ("cups" → "Cup", "tablespoons" → "Tbsp"). A lone capital "T" means
// tablespoon and a lone lower-case "t" teaspoon. Unknown units are returned
// unchanged.
func StandardizeUnit(raw string) string {
	u := strings.TrimSpace(raw)
	switch u {
	case "":
		return raw
	case "T", "T.":
		return "Tbsp"
	case "t", "t.":
		return "tsp"
	}
	if canonical, ok := canonicalUnits[strings.ToLower(strings.TrimSuffix(u, "."))]; ok {
		return canonical
	}
	return raw
}

// Package portion renders a recipe's ingredients at a chosen serving multiplier.
package portion

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"recipebox/internal/quantity"
	"recipebox/internal/recipe"
)

// ErrInvalidMultiplier is returned for multipliers that are not positive numbers.
var ErrInvalidMultiplier = errors.New("invalid multiplier")

// Presets are the multipliers offered by default.
var Presets = []float64{0.25, 0.5, 1, 2}

// Section is one ingredient section rendered as display lines.
type Section struct {
	SectionName string   `json:"sectionName,omitempty"`
	Lines       []string `json:"lines"`
}

// Scaler renders scaled ingredient lines.
type Scaler struct {
	formatter quantity.Formatter
}

// NewScaler returns a Scaler that formats amounts with f.
func NewScaler(f quantity.Formatter) *Scaler {
	return &Scaler{formatter: f}
}

// Scale renders every item of every section at multiplier.
func (s *Scaler) Scale(ingredients recipe.Ingredients, multiplier float64) []Section {
	out := make([]Section, 0, len(ingredients))
	for _, sec := range ingredients {
		lines := make([]string, 0, len(sec.Items))
		for _, item := range sec.Items {
			lines = append(lines, s.Render(item, multiplier))
		}
		out = append(out, Section{SectionName: sec.SectionName, Lines: lines})
	}
	return out
}

// ScaleLines scales legacy flat ingredient strings. Each line is parsed the
// same way ingestion parses it, so both shapes render identically.
func (s *Scaler) ScaleLines(lines []string, multiplier float64) []Section {
	return s.Scale(recipe.IngredientsFromLines(lines), multiplier)
}

// Render formats a single item as "{quantity}{ unit} {name}". Items without a
// quantity render as their name. Quantities that cannot be parsed are kept as
// written.
func (s *Scaler) Render(item recipe.IngredientItem, multiplier float64) string {
	if strings.TrimSpace(item.Quantity) == "" {
		return item.Name
	}
	v, _ := quantity.Parse(item.Quantity)
	parts := []string{s.formatter.Format(quantity.Scale(v, multiplier))}
	if item.Unit != "" {
		parts = append(parts, item.Unit)
	}
	if item.Name != "" {
		parts = append(parts, lowerFirst(item.Name))
	}
	return strings.Join(parts, " ")
}

// Lines flattens rendered sections.
func Lines(sections []Section) []string {
	var out []string
	for _, sec := range sections {
		out = append(out, sec.Lines...)
	}
	return out
}

// lowerFirst undoes the capitalization applied at parse time so that the name
// reads naturally after a quantity. Acronyms such as "BBQ sauce" are left alone.
func lowerFirst(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	second, _ := utf8.DecodeRuneInString(name[size:])
	if !unicode.IsUpper(first) || (second != utf8.RuneError && unicode.IsUpper(second)) {
		return name
	}
	return string(unicode.ToLower(first)) + name[size:]
}

// ParseMultiplier reads a multiplier such as "0.5", "1/2", "½" or "2x".
func ParseMultiplier(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimRight(s, "xX×"))
	v, err := quantity.Parse(s)
	if err != nil || v.Kind != quantity.KindNumber {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMultiplier, raw)
	}
	if v.Low <= 0 || math.IsInf(v.Low, 0) || math.IsNaN(v.Low) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMultiplier, raw)
	}
	return v.Low, nil
}

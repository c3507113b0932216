// Package ingredient splits raw ingredient lines into name, quantity and unit.
package ingredient

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"recipebox/internal/quantity"
)

// Item is one ingredient of a recipe.
type Item struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// UnmarshalJSON accepts an item object or a bare ingredient line. Lines are
// split with ParseLine, as at ingestion time.
func (it *Item) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var line string
		if err := json.Unmarshal(data, &line); err != nil {
			return err
		}
		*it = ParseLine(line)
		return nil
	}
	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*it = Item(p)
	return nil
}

const (
	singleQty = `\d+\s*[` + quantity.GlyphClass + `]` +
		`|\d+\s+\d+\s*/\s*\d+` +
		`|\d+\s*/\s*\d+` +
		`|[` + quantity.GlyphClass + `]` +
		`|\d+(?:\.\d+)?|\.\d+`
	rangeQty = `(?:` + singleQty + `)(?:\s*[-–—]\s*|\s+(?i:to|or)\s+)(?:` + singleQty + `)`
)

// linePattern captures quantity, optional unit and name from one line.
type linePattern struct {
	name string
	re   *regexp.Regexp
	unit bool
}

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	bulletRe = regexp.MustCompile(`^(?:[•·▪▢□*]\s*|[-–]\s+)`)

	linePatterns = []linePattern{
		{"range-unit", regexp.MustCompile(`^(` + rangeQty + `)\s*(` + unitAlternation() + `)\.?\s+(\S.*)$`), true},
		{"quantity-unit", regexp.MustCompile(`^(` + singleQty + `)\s*(` + unitAlternation() + `)\.?\s+(\S.*)$`), true},
		{"quantity", regexp.MustCompile(`^(` + rangeQty + `|` + singleQty + `)\s+(\S.*)$`), false},
		{"descriptive", regexp.MustCompile(`(?i)^(an?\s+(?:pinch|dash|handful|sprinkle|splash|drizzle|knob|squeeze|touch|smidgen|bit)(?:\s+of)?)\s+(\S.*)$`), false},
	}
)

// unitAlternation builds the unit part of the line patterns. Longer spellings
// come first so "cups" wins over "c". The lone "T" and "t" are matched case
// sensitively.
func unitAlternation() string {
	units := make([]string, 0, len(canonicalUnits))
	for u := range canonicalUnits {
		units = append(units, regexp.QuoteMeta(u))
	}
	sort.Slice(units, func(i, j int) bool {
		if len(units[i]) != len(units[j]) {
			return len(units[i]) > len(units[j])
		}
		return units[i] < units[j]
	})
	return `(?i:` + strings.Join(units, "|") + `)\b|T\b|t\b`
}

// ParseLine splits a raw ingredient line. Patterns are tried in order: range
// quantity with unit, quantity with unit, bare quantity, descriptive amount.
// When nothing matches the whole trimmed line becomes the name, so text is
// never discarded. The name has its first letter capitalized and the unit is
// standardized.
func ParseLine(raw string) Item {
	line := Clean(raw)
	if line == "" {
		return Item{}
	}

	for _, p := range linePatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty := strings.TrimSpace(m[1])
		if _, err := quantity.Parse(qty); err != nil {
			continue
		}
		if p.unit {
			return Item{
				Name:     Capitalize(strings.TrimSpace(m[3])),
				Quantity: qty,
				Unit:     StandardizeUnit(m[2]),
			}
		}
		return Item{
			Name:     Capitalize(strings.TrimSpace(m[2])),
			Quantity: qty,
		}
	}

	return Item{Name: Capitalize(line)}
}

// Clean collapses whitespace and strips a leading list bullet.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, " ", " ")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	return strings.TrimSpace(bulletRe.ReplaceAllString(s, ""))
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Package quantity parses free-form ingredient quantities into numeric values,
// scales them by a portion multiplier and renders them back into the closest
// human-friendly fraction.
package quantity

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparseable is returned by Parse when a token matches no numeric form.
// Callers keep the original text as a non-scalable quantity.
var ErrUnparseable = errors.New("unparseable quantity")

// Kind tells how a Value should be scaled and rendered.
type Kind int

const (
	// KindText is quantity text that carries no number ("as needed").
	KindText Kind = iota
	// KindDescriptive is a recognized non-numeric amount ("a pinch of").
	KindDescriptive
	// KindNumber is a single amount held in Low.
	KindNumber
	// KindRange is an amount between Low and High.
	KindRange
)

// Value is a parsed quantity.
type Value struct {
	Kind Kind
	Low  float64
	High float64
	// Text is the original token for KindText and KindDescriptive.
	Text string
}

// Numeric reports whether the value scales with a multiplier.
func (v Value) Numeric() bool {
	return v.Kind == KindNumber || v.Kind == KindRange
}

// Number returns a single numeric value.
func Number(x float64) Value {
	return Value{Kind: KindNumber, Low: x, High: x}
}

// Range returns a numeric range.
func Range(low, high float64) Value {
	return Value{Kind: KindRange, Low: low, High: high}
}

// GlyphClass lists every vulgar fraction glyph Parse understands.
const GlyphClass = "¼½¾⅓⅔⅛⅜⅝⅞⅙⅚"

var vulgarFractions = []struct {
	glyph string
	value float64
}{
	{"¼", 1.0 / 4},
	{"½", 1.0 / 2},
	{"¾", 3.0 / 4},
	{"⅓", 1.0 / 3},
	{"⅔", 2.0 / 3},
	{"⅛", 1.0 / 8},
	{"⅜", 3.0 / 8},
	{"⅝", 5.0 / 8},
	{"⅞", 7.0 / 8},
	{"⅙", 1.0 / 6},
	{"⅚", 5.0 / 6},
}

var (
	spaceRe         = regexp.MustCompile(`\s+`)
	rangeWordRe     = regexp.MustCompile(`(?i)^(.+?)\s+(?:to|or)\s+(.+)$`)
	rangeDashRe     = regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`)
	mixedGlyphRe    = regexp.MustCompile(`^(\d+)\s*([` + GlyphClass + `])$`)
	mixedFractionRe = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)$`)
	fractionRe      = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
	glyphRe         = regexp.MustCompile(`^([` + GlyphClass + `])$`)
	decimalRe       = regexp.MustCompile(`^(?:\d+(?:\.\d+)?|\.\d+)$`)
	descriptiveRe   = regexp.MustCompile(`(?i)^an?\s+(?:pinch|dash|handful|sprinkle|splash|drizzle|knob|squeeze|touch|smidgen|bit)(?:\s+of)?$`)
)

func normalize(token string) string {
	s := strings.ReplaceAll(token, "⁄", "/")
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// IsDescriptive reports whether s is a descriptive amount such as "a pinch of".
func IsDescriptive(s string) bool {
	return descriptiveRe.MatchString(normalize(s))
}

// Parse reads a quantity token. Recognized forms, in priority order: ranges
// ("X to Y", "X-Y", "X or Y"), whole number plus glyph ("1½"), mixed ASCII
// fractions ("1 1/2"), simple fractions, bare glyphs and decimals. Descriptive
// amounts parse as KindDescriptive. Anything else yields a KindText value
// holding the original text together with ErrUnparseable.
func Parse(token string) (Value, error) {
	s := normalize(token)
	if s == "" {
		return Value{Kind: KindText}, ErrUnparseable
	}
	if descriptiveRe.MatchString(s) {
		return Value{Kind: KindDescriptive, Text: s}, nil
	}
	if v, ok := parseRange(s); ok {
		return v, nil
	}
	if x, ok := parseSingle(s); ok {
		return Number(x), nil
	}
	return Value{Kind: KindText, Text: strings.TrimSpace(token)}, ErrUnparseable
}

func parseRange(s string) (Value, bool) {
	if m := rangeWordRe.FindStringSubmatch(s); m != nil {
		lo, okLo := parseSingle(m[1])
		hi, okHi := parseSingle(m[2])
		if okLo && okHi {
			return Range(lo, hi), true
		}
	}
	m := rangeDashRe.FindStringSubmatch(s)
	if m == nil {
		return Value{}, false
	}
	lo, okLo := parseSingle(m[1])
	hi, okHi := parseSingle(m[2])
	if !okLo || !okHi {
		return Value{}, false
	}
	// "1-1/2" is a mixed number written with a hyphen, not a range.
	if hi < lo && hi < 1 && lo == math.Trunc(lo) && !decimalRe.MatchString(m[2]) {
		return Number(lo + hi), true
	}
	return Range(lo, hi), true
}

func parseSingle(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if m := mixedGlyphRe.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.Atoi(m[1])
		return float64(whole) + glyphValue(m[2]), true
	}
	if m := mixedFractionRe.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.Atoi(m[1])
		frac, ok := fraction(m[2], m[3])
		if !ok {
			return 0, false
		}
		return float64(whole) + frac, true
	}
	if m := fractionRe.FindStringSubmatch(s); m != nil {
		return fraction(m[1], m[2])
	}
	if m := glyphRe.FindStringSubmatch(s); m != nil {
		return glyphValue(m[1]), true
	}
	if decimalRe.MatchString(s) {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return x, true
	}
	return 0, false
}

func fraction(num, den string) (float64, bool) {
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, false
	}
	d, err := strconv.Atoi(den)
	if err != nil || d == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

func glyphValue(glyph string) float64 {
	for _, vf := range vulgarFractions {
		if vf.glyph == glyph {
			return vf.value
		}
	}
	return 0
}

// Scale multiplies every bound of a numeric value by multiplier. Text and
// descriptive values, and any non-positive or non-finite multiplier, leave
// the value unchanged.
func Scale(v Value, multiplier float64) Value {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return v
	}
	switch v.Kind {
	case KindNumber:
		v.Low *= multiplier
		v.High = v.Low
	case KindRange:
		v.Low *= multiplier
		v.High *= multiplier
	}
	return v
}

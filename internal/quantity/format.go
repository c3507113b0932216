package quantity

import (
	"math"
	"strconv"
	"strings"
)

// Defaults for Formatter. The tolerance decides how close a remainder must be
// to a "nice" fraction before it is rendered as one.
const (
	DefaultTolerance      = 0.001
	DefaultZeroThreshold  = 0.01
	DefaultMaxDenominator = 16
)

// Formatter renders numeric values as whole numbers, vulgar fraction glyphs,
// simple fractions or truncated decimals.
type Formatter struct {
	Tolerance      float64
	ZeroThreshold  float64
	MaxDenominator int
}

// DefaultFormatter uses the default tolerances.
var DefaultFormatter = Formatter{
	Tolerance:      DefaultTolerance,
	ZeroThreshold:  DefaultZeroThreshold,
	MaxDenominator: DefaultMaxDenominator,
}

func (f Formatter) withDefaults() Formatter {
	if f.Tolerance <= 0 {
		f.Tolerance = DefaultTolerance
	}
	if f.ZeroThreshold <= 0 {
		f.ZeroThreshold = DefaultZeroThreshold
	}
	if f.MaxDenominator < 2 {
		f.MaxDenominator = DefaultMaxDenominator
	}
	return f
}

// Format renders v. Ranges render each bound and join them with " to ";
// text and descriptive values render their original text.
func (f Formatter) Format(v Value) string {
	switch v.Kind {
	case KindNumber:
		return f.FormatAmount(v.Low)
	case KindRange:
		return f.FormatAmount(v.Low) + " to " + f.FormatAmount(v.High)
	default:
		return v.Text
	}
}

// FormatAmount renders a single non-negative amount.
func (f Formatter) FormatAmount(x float64) string {
	f = f.withDefaults()
	if math.IsNaN(x) || x < f.ZeroThreshold {
		return "0"
	}

	whole := math.Floor(x)
	frac := x - whole
	if frac < f.Tolerance {
		return formatWhole(whole)
	}
	if 1-frac < f.Tolerance {
		return formatWhole(whole + 1)
	}

	for _, vf := range vulgarFractions {
		if math.Abs(frac-vf.value) < f.Tolerance {
			return withWhole(whole, vf.glyph)
		}
	}

	for d := 2; d <= f.MaxDenominator; d++ {
		n := math.Round(frac * float64(d))
		if n <= 0 || n >= float64(d) {
			continue
		}
		if math.Abs(n/float64(d)-frac) < f.Tolerance {
			num, den := int(n), d
			g := gcd(num, den)
			return withWhole(whole, strconv.Itoa(num/g)+"/"+strconv.Itoa(den/g))
		}
	}

	truncated := math.Trunc(x*100+1e-9) / 100
	s := strconv.FormatFloat(truncated, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Format renders v with DefaultFormatter.
func Format(v Value) string {
	return DefaultFormatter.Format(v)
}

// FormatAmount renders x with DefaultFormatter.
func FormatAmount(x float64) string {
	return DefaultFormatter.FormatAmount(x)
}

func formatWhole(x float64) string {
	return strconv.FormatFloat(x, 'f', 0, 64)
}

func withWhole(whole float64, frac string) string {
	if whole == 0 {
		return frac
	}
	return formatWhole(whole) + " " + frac
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

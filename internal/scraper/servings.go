package scraper

import (
	"regexp"
	"strconv"
)

const (
	defaultServings = 1
	minServings     = 1
	maxServings     = 100
)

var (
	firstIntRe = regexp.MustCompile(`\d+`)

	servingsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bserves\s*:?\s*(?:about\s+|up to\s+)?(\d+)`),
		regexp.MustCompile(`(?i)\bmakes\s+(?:about\s+)?(\d+)\s+(?:servings?|portions?)`),
		regexp.MustCompile(`(?i)\byields?\s*:?\s*(?:about\s+)?(\d+)`),
		regexp.MustCompile(`(?i)\b(\d+)\s+(?:servings?|portions?)\b`),
		regexp.MustCompile(`(?i)\bservings?\s*:\s*(\d+)`),
		regexp.MustCompile(`(?i)\bfeeds\s+(?:about\s+)?(\d+)`),
	}
)

// firstInt returns the first integer in s, or 0.
func firstInt(s string) int {
	m := firstIntRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func saneServings(n int) bool {
	return n >= minServings && n <= maxServings
}

// servingsFromText looks for phrases such as "serves 4" or "makes 6 servings"
// in each text in turn. It returns 0 when nothing within range is found.
func servingsFromText(texts ...string) int {
	for _, text := range texts {
		if text == "" {
			continue
		}
		for _, re := range servingsPatterns {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				if n, err := strconv.Atoi(m[1]); err == nil && saneServings(n) {
					return n
				}
			}
		}
	}
	return 0
}

package scraper

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"recipebox/internal/recipe"
)

const maxNodeDepth = 8

var (
	// Delimiters used when a site collapses all ingredients into one string.
	// Plain hyphens are never split on, so "half-and-half" survives.
	collapsedSplitRe = regexp.MustCompile(`\s*[•·]\s*|\s+[–—]\s+`)
	cdataRe          = regexp.MustCompile(`^\s*(?://\s*)?<!\[CDATA\[|(?://\s*)?\]\]>\s*$`)
)

// extractStructured finds the first JSON-LD object typed Recipe and maps it to
// a partial recipe. It returns nil when no such object exists, or when the
// object carries neither ingredients nor instructions.
func (s *Scraper) extractStructured(p *page) *recipe.Partial {
	var node map[string]any
	p.doc.Find(`script[type*="ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := cdataRe.ReplaceAllString(strings.TrimSpace(sel.Text()), "")
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			s.logger.Debug("skipping malformed json-ld block", zap.Int("index", i), zap.Error(err))
			return true
		}
		node = findRecipeNode(data, 0)
		return node == nil
	})
	if node == nil {
		return nil
	}

	ingredientLines := ldIngredientLines(node["recipeIngredient"])
	if len(ingredientLines) == 0 {
		ingredientLines = ldIngredientLines(node["ingredients"])
	}
	steps := dedupe(ldInstructionTexts(node["recipeInstructions"], 0))
	if len(ingredientLines) == 0 && len(steps) == 0 {
		s.logger.Debug("json-ld recipe has no ingredients or instructions")
		return nil
	}

	out := &recipe.Partial{
		Title:        stripMarkup(ldString(node["name"])),
		Description:  stripMarkup(ldString(node["description"])),
		Ingredients:  recipe.IngredientsFromLines(ingredientLines),
		Instructions: instructionsOrPlaceholder(steps),
		Servings:     ldServings(node["recipeYield"]),
		CookTime:     formatDuration(ldString(node["cookTime"])),
		ImageURL:     ldImage(node["image"]),
		Category:     stripMarkup(ldString(node["recipeCategory"])),
		VideoURL:     ldVideo(node["video"]),
	}
	if out.CookTime == "" {
		out.CookTime = formatDuration(ldString(node["totalTime"]))
	}
	if out.Servings == defaultServings {
		if n := servingsFromText(out.Description, strings.Join(steps, " "), out.Title); n > 0 {
			out.Servings = n
		}
	}

	s.logger.Debug("json-ld recipe found",
		zap.Int("ingredients", len(ingredientLines)),
		zap.Int("steps", len(steps)),
	)
	return out
}

// findRecipeNode searches arrays, @graph and mainEntity for an object whose
// @type is or includes Recipe.
func findRecipeNode(v any, depth int) map[string]any {
	if depth > maxNodeDepth {
		return nil
	}
	switch t := v.(type) {
	case []any:
		for _, el := range t {
			if n := findRecipeNode(el, depth+1); n != nil {
				return n
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		for _, key := range []string{"@graph", "mainEntity", "mainEntityOfPage"} {
			if n := findRecipeNode(t[key], depth+1); n != nil {
				return n
			}
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		name := t
		if i := strings.LastIndexAny(name, "/:"); i >= 0 {
			name = name[i+1:]
		}
		return strings.EqualFold(name, "recipe")
	case []any:
		for _, el := range t {
			if isRecipeType(el) {
				return true
			}
		}
	}
	return false
}

// ldString returns v as a string. Numbers are formatted, arrays yield their
// first string and objects their text, name or @value.
func ldString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		for _, el := range t {
			if s := ldString(el); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, key := range []string{"text", "name", "@value"} {
			if s := ldString(t[key]); s != "" {
				return s
			}
		}
	}
	return ""
}

func ldIngredientLines(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = splitCollapsed(t)
	case []any:
		for _, el := range t {
			raw = append(raw, ldString(el))
		}
		if len(raw) == 1 {
			raw = splitCollapsed(raw[0])
		}
	}

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = stripMarkup(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitCollapsed splits a single string holding many ingredient lines.
func splitCollapsed(s string) []string {
	if strings.Contains(s, "\n") {
		return strings.Split(s, "\n")
	}
	return collapsedSplitRe.Split(s, -1)
}

// ldInstructionTexts flattens strings, HowToStep objects and HowToSection
// item lists into step texts.
func ldInstructionTexts(v any, depth int) []string {
	if depth > maxNodeDepth {
		return nil
	}
	var out []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(t, "\n") {
			if line = stripMarkup(line); line != "" {
				out = append(out, line)
			}
		}
	case []any:
		for _, el := range t {
			out = append(out, ldInstructionTexts(el, depth+1)...)
		}
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			return ldInstructionTexts(items, depth+1)
		}
		text := ldString(t["text"])
		if text == "" {
			text = ldString(t["name"])
		}
		if text = stripMarkup(text); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// ldServings reads the first integer of recipeYield, defaulting to 1.
func ldServings(v any) int {
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case string:
		n = firstInt(t)
	case []any:
		for _, el := range t {
			if n = ldServings(el); n != defaultServings {
				break
			}
		}
	}
	if n < minServings {
		return defaultServings
	}
	return n
}

func ldImage(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, el := range t {
			if s := ldImage(el); s != "" {
				return s
			}
		}
	case map[string]any:
		if s := ldString(t["url"]); s != "" {
			return s
		}
		return ldString(t["contentUrl"])
	}
	return ""
}

func ldVideo(v any) string {
	switch t := v.(type) {
	case []any:
		for _, el := range t {
			if s := ldVideo(el); s != "" {
				return s
			}
		}
	case map[string]any:
		if s := ldString(t["contentUrl"]); s != "" {
			return s
		}
		return ldString(t["embedUrl"])
	}
	return ""
}

// dedupe drops exact duplicate strings, keeping first occurrences.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func instructionsOrPlaceholder(steps []string) recipe.Instructions {
	if len(steps) == 0 {
		return recipe.InstructionsFromLines([]string{recipe.PlaceholderStep})
	}
	return recipe.InstructionsFromLines(steps)
}

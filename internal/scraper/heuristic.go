package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"recipebox/internal/ingredient"
	"recipebox/internal/recipe"
)

const (
	// FallbackTitle is used when no title can be found on the page.
	FallbackTitle = "Imported Recipe"

	minViableSteps  = 3
	maxSectionHops  = 5
	maxHeadingLen   = 60
	maxIngredientLn = 200
	minStepLen      = 10
	maxStepLen      = 1500
)

const (
	chromeSel  = "nav, footer, body > header, header[role=banner], .site-header, .site-footer, .comments, #comments, .comment-list, .sidebar, .widget, .related-posts, .share-buttons, .search-form"
	headingSel = "h2, h3, h4, h5, h6, strong, b, .wprm-recipe-group-name, .ingredient-group-name, .ingredients-group-title"
)

var (
	ingredientHeadingRe  = regexp.MustCompile(`(?i)\b(?:ingredients?|dough|filling|icing|frosting|toppings?|sauce|glaze|crust|batter|dressing|marinade|garnish|syrup|streusel|crumble|for the)\b`)
	instructionHeadingRe = regexp.MustCompile(`(?i)\b(?:instructions?|directions?|method|preparation|steps?|how to make|to make|make the|assemble|assembly|to serve)\b`)
	bareIngredientsRe    = regexp.MustCompile(`(?i)^(?:recipe\s+)?ingredients?$`)

	ingredientsMarkerRe  = regexp.MustCompile(`(?i)^(?:recipe\s+)?ingredients?:?$`)
	instructionsMarkerRe = regexp.MustCompile(`(?i)^(?:instructions|directions|method|preparation|steps|how to make(?: it)?):?$`)
	endMarkerRe          = regexp.MustCompile(`(?i)^(?:notes?|recipe notes|nutrition(?: facts| information)?|comments?|reviews?|tips|related|you may also like|more recipes):?$`)

	stepPrefixRe  = regexp.MustCompile(`(?i)^(?:step\s*\d+\s*[:.)-]?|\d+\s*[.)])\s*`)
	actionRe      = regexp.MustCompile(`(?i)\b(?:heat|preheat|cook|bake|roast|grill|fry|saut[eé]|simmer|boil|stir|whisk|mix|combine|add|pour|season|serve|chop|slice|dice|mince|knead|fold|beat|blend|drain|melt|spread|sprinkle|transfer|cover|reduce|remove|place|cool|chill|marinate|toss|brown|warm)\b`)
	boilerplateRe = regexp.MustCompile(`(?i)subscribe|newsletter|cookie (?:policy|settings|consent|preferences)|(?:accept|allow|uses) (?:all )?cookies|privacy policy|advertis|sign up|log in|leave a comment|\d+ comments|rights reserved|affiliate|copyright|click here|follow us|share this|rate this|pin it|jump to recipe|print recipe`)

	cookTimeLabelRe = regexp.MustCompile(`(?i)^(?:total|cook(?:ing)?)\s+time\s*:?\s*`)
	cookTimeTextRe  = regexp.MustCompile(`(?i)\b(?:total|cook(?:ing)?)\s+time\s*:?\s*(\d+\s*(?:hours?|hrs?|h)\b(?:\s*(?:and\s+)?\d+\s*(?:minutes?|mins?|m)\b)?|\d+\s*(?:minutes?|mins?)\b)`)
	titleSuffixRe   = regexp.MustCompile(`\s+[|–—-]\s+[^|–—-]+$`)
)

// extractHeuristic builds a partial recipe from DOM selector cascades and
// page-text mining. It never fails: fields that cannot be found degrade to
// empty values or placeholders.
func (s *Scraper) extractHeuristic(p *page) *recipe.Partial {
	title, name := firstString(p, titleStrategies)
	s.record("title", name, 1)
	if title == "" {
		title = FallbackTitle
	}

	description, name := firstString(p, descriptionStrategies)
	s.record("description", name, 1)

	sections, name := cascade(p, 1, ingredientStrategies)
	s.record("ingredients", name, len(sections))

	steps, name := cascade(p, minViableSteps, instructionStrategies)
	steps = cleanSteps(steps)
	s.record("instructions", name, len(steps))

	cookTime, name := firstString(p, cookTimeStrategies)
	s.record("cookTime", name, 1)

	servings, name := s.findServings(p, title, description, steps)
	s.record("servings", name, 1)

	return &recipe.Partial{
		Title:        title,
		Description:  description,
		CookTime:     cookTime,
		Servings:     servings,
		Ingredients:  recipe.Ingredients(sections).Compact(),
		Instructions: instructionsOrPlaceholder(steps),
		ImageURL:     s.findImage(p),
		VideoURL:     s.findVideo(p),
	}
}

// inChrome reports whether sel sits inside navigation, comments or similar
// page furniture.
func inChrome(sel *goquery.Selection) bool {
	return sel.Closest(chromeSel).Length() > 0
}

// texts collects the normalized text of every match outside page chrome that
// passes keep.
func texts(selector string, keep func(string) bool) func(p *page) []string {
	return func(p *page) []string {
		var out []string
		p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if inChrome(sel) {
				return
			}
			if t := textOf(sel); t != "" && keep(t) {
				out = append(out, t)
			}
		})
		return out
	}
}

func attrs(selector, attr string) func(p *page) []string {
	return func(p *page) []string {
		var out []string
		p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if v := normalizeSpace(sel.AttrOr(attr, "")); v != "" {
				out = append(out, stripMarkup(v))
			}
		})
		return out
	}
}

func lengthBetween(min, max int) func(string) bool {
	return func(s string) bool {
		n := len([]rune(s))
		return n >= min && n <= max
	}
}

var titleStrategies = []strategy[string]{
	{"recipe-title", texts(`h1.recipe-title, h2.recipe-title, .wprm-recipe-name, .tasty-recipes-title, h1[itemprop="name"], h2[itemprop="name"], .recipe-header h1`, lengthBetween(3, 200))},
	{"h1", texts("h1", lengthBetween(3, 200))},
	{"og-title", attrs(`meta[property="og:title"]`, "content")},
	{"document-title", func(p *page) []string {
		t := normalizeSpace(p.doc.Find("head title").First().Text())
		if t == "" {
			return nil
		}
		if trimmed := titleSuffixRe.ReplaceAllString(t, ""); trimmed != "" {
			t = trimmed
		}
		return []string{t}
	}},
}

var descriptionStrategies = []strategy[string]{
	{"recipe-summary", texts(`.wprm-recipe-summary, .tasty-recipes-description, .recipe-summary, .recipe-description, [itemprop="description"]`, lengthBetween(10, 2000))},
	{"meta-description", attrs(`meta[name="description"]`, "content")},
	{"og-description", attrs(`meta[property="og:description"]`, "content")},
}

// Ingredients.

var ingredientStrategies = []strategy[recipe.IngredientSection]{
	{"sections", ingredientSections},
	{"wprm", flatIngredients(".wprm-recipe-ingredient")},
	{"tasty", flatIngredients(".tasty-recipes-ingredients li")},
	{"itemprop", flatIngredients(`[itemprop="recipeIngredient"], [itemprop="ingredients"]`)},
	{"ingredient-list", flatIngredients(".recipe-ingredients li, .ingredients li, .ingredient-list li, #ingredients li")},
	{"class-contains", flatIngredients(`[class*="ingredient"] li`)},
	{"generic-list", strictListIngredients},
	{"page-text", pageTextIngredients},
}

// ingredientSections associates ingredient headings such as "Filling" with
// the lists that follow them.
func ingredientSections(p *page) []recipe.IngredientSection {
	match := func(h string) bool {
		return ingredientHeadingRe.MatchString(h) && !instructionHeadingRe.MatchString(h)
	}
	accept := func(line string) bool {
		return len([]rune(line)) <= maxIngredientLn && ingredient.LooksLikeIngredient(line)
	}

	var out []recipe.IngredientSection
	for _, sec := range walkSections(p, match, accept) {
		parsed := recipe.IngredientsFromLines(sec.lines)
		if len(parsed) == 0 {
			continue
		}
		name := sec.name
		if bareIngredientsRe.MatchString(name) {
			name = ""
		}
		parsed[0].SectionName = name
		out = append(out, parsed[0])
	}
	return out
}

// flatIngredients reads one unsectioned list from selector. Lines that do not
// look like ingredients are dropped unless that would drop all of them.
func flatIngredients(selector string) func(p *page) []recipe.IngredientSection {
	collect := texts(selector, lengthBetween(1, maxIngredientLn))
	return func(p *page) []recipe.IngredientSection {
		return asSection(shapeFilter(collect(p)))
	}
}

func strictListIngredients(p *page) []recipe.IngredientSection {
	var lines []string
	p.doc.Find("ul li").Each(func(_ int, li *goquery.Selection) {
		if inChrome(li) || li.Find("li").Length() > 0 {
			return
		}
		t := textOf(li)
		if t == "" || len([]rune(t)) > 150 || !ingredient.HasMeasurement(t) {
			return
		}
		lines = append(lines, t)
	})
	return asSection(lines)
}

// pageTextIngredients mines the visible text, preferring the block between an
// "Ingredients" line and the instructions.
func pageTextIngredients(p *page) []recipe.IngredientSection {
	lines := p.textLines()
	if window := linesAfter(lines, ingredientsMarkerRe, instructionsMarkerRe, endMarkerRe); len(window) > 0 {
		var picked []string
		for _, l := range window {
			if len([]rune(l)) <= maxIngredientLn && ingredient.LooksLikeIngredient(l) {
				picked = append(picked, l)
			}
		}
		if len(picked) > 0 {
			return asSection(picked)
		}
	}

	var picked []string
	for _, l := range lines {
		if len([]rune(l)) <= 120 && ingredient.HasMeasurement(l) {
			picked = append(picked, l)
		}
	}
	return asSection(picked)
}

func shapeFilter(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if ingredient.LooksLikeIngredient(l) {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return lines
	}
	return kept
}

func asSection(lines []string) []recipe.IngredientSection {
	if len(lines) == 0 {
		return nil
	}
	return recipe.IngredientsFromLines(lines)
}

// Instructions.

var instructionStrategies = []strategy[string]{
	{"wprm", texts(".wprm-recipe-instruction-text", isStep)},
	{"tasty", texts(".tasty-recipes-instructions li", isStep)},
	{"itemprop", itempropInstructions},
	{"instruction-list", texts(".recipe-instructions li, .instructions li, .directions li, .method li, .recipe-method li, #instructions li, #directions li", isStep)},
	{"class-contains", texts(`[class*="instruction"] li, [class*="direction"] li, [class*="step"] p`, isStep)},
	{"ordered-list", texts("ol li", func(s string) bool { return len([]rune(s)) >= 15 && isStep(s) })},
	{"numbered-paragraphs", numberedParagraphs},
	{"action-vocabulary", texts("p, li", func(s string) bool {
		n := len([]rune(s))
		return n >= 20 && n <= 1000 && actionRe.MatchString(s) && !isBoilerplate(s)
	})},
	{"heading-walk", instructionSections},
	{"page-text", pageTextInstructions},
}

// isStep applies the length window to text taken from recipe markup.
func isStep(s string) bool {
	n := len([]rune(s))
	return n >= minStepLen && n <= maxStepLen
}

// isBoilerplate flags ad, consent and sharing text. Only the tiers that scan
// loose page text check it; recipe markup is trusted.
func isBoilerplate(s string) bool {
	return boilerplateRe.MatchString(s)
}

func itempropInstructions(p *page) []string {
	var out []string
	p.doc.Find(`[itemprop="recipeInstructions"]`).Each(func(_ int, sel *goquery.Selection) {
		parts := sel.Find("li, p")
		if parts.Length() == 0 {
			parts = sel
		}
		parts.Each(func(_ int, part *goquery.Selection) {
			if t := textOf(part); isStep(t) {
				out = append(out, t)
			}
		})
	})
	return out
}

// numberedParagraphs picks leaf paragraphs that start with "1." or "Step 1".
func numberedParagraphs(p *page) []string {
	var out []string
	p.doc.Find("p, div").Each(func(_ int, sel *goquery.Selection) {
		if inChrome(sel) || sel.Find("p, div, ul, ol, section").Length() > 0 {
			return
		}
		t := textOf(sel)
		if n := len([]rune(t)); n < minStepLen || n > 1000 {
			return
		}
		if stepPrefixRe.MatchString(t) && !isBoilerplate(t) {
			out = append(out, t)
		}
	})
	return out
}

// instructionSections walks headings such as "Make the sauce" or "Assemble"
// and flattens the steps that follow them.
func instructionSections(p *page) []string {
	var out []string
	for _, sec := range walkSections(p, instructionHeadingRe.MatchString, isStep) {
		out = append(out, sec.lines...)
	}
	return out
}

func pageTextInstructions(p *page) []string {
	lines := p.textLines()
	var out []string
	for _, l := range linesAfter(lines, instructionsMarkerRe, endMarkerRe) {
		if isStep(l) && !isBoilerplate(l) {
			out = append(out, l)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, l := range lines {
		if stepPrefixRe.MatchString(l) && isStep(l) && !isBoilerplate(l) {
			out = append(out, l)
		}
	}
	return out
}

// cleanSteps strips step numbering, removes duplicates and empty entries.
func cleanSteps(steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, st := range steps {
		st = normalizeSpace(stepPrefixRe.ReplaceAllString(normalizeSpace(st), ""))
		if st != "" {
			out = append(out, st)
		}
	}
	return dedupe(out)
}

// Section walks.

type namedLines struct {
	name  string
	lines []string
}

// walkSections finds headings whose text satisfies match and collects the
// accepted lines from up to maxSectionHops following siblings, stopping at
// the next heading. Each collected node is claimed so it is never read twice.
func walkSections(p *page, match, accept func(string) bool) []namedLines {
	claimed := make(map[*html.Node]bool)
	var out []namedLines

	p.doc.Find(headingSel).Each(func(_ int, h *goquery.Selection) {
		name := strings.TrimSpace(strings.TrimSuffix(textOf(h), ":"))
		if name == "" || len([]rune(name)) > maxHeadingLen || !match(name) || inChrome(h) {
			return
		}
		anchor := headingAnchor(h)
		if isClaimed(claimed, anchor) {
			return
		}

		var lines []string
		hops := 0
		for next := anchor.Next(); next.Length() > 0 && hops < maxSectionHops; next = next.Next() {
			hops++
			if isHeading(next) || next.Find("h1, h2, h3, h4, h5, h6").Length() > 0 {
				break
			}
			lines = append(lines, collectBlock(next, claimed, accept)...)
		}
		if len(lines) > 0 {
			out = append(out, namedLines{name: name, lines: lines})
		}
	})
	return out
}

// headingAnchor returns the block a heading lives in when the heading is an
// inline <strong> or <b> that fills its parent paragraph.
func headingAnchor(h *goquery.Selection) *goquery.Selection {
	switch goquery.NodeName(h) {
	case "strong", "b":
		parent := h.Parent()
		if parent.Length() > 0 && textOf(parent) == textOf(h) {
			return parent
		}
	}
	return h
}

func isHeading(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	case "p", "div":
		inline := sel.ChildrenFiltered("strong, b")
		if inline.Length() == 1 && sel.Children().Length() == 1 {
			t := textOf(sel)
			return t != "" && t == textOf(inline) && len([]rune(t)) <= maxHeadingLen
		}
	}
	return sel.HasClass("wprm-recipe-group-name")
}

func isClaimed(claimed map[*html.Node]bool, sel *goquery.Selection) bool {
	for n := sel.Get(0); n != nil; n = n.Parent {
		if claimed[n] {
			return true
		}
	}
	return false
}

// collectBlock reads list items from a list block, or the text lines of any
// other block.
func collectBlock(block *goquery.Selection, claimed map[*html.Node]bool, accept func(string) bool) []string {
	if isClaimed(claimed, block) {
		return nil
	}
	defer func() { claimed[block.Get(0)] = true }()

	var lines []string
	items := block.Find("li")
	if goquery.NodeName(block) == "li" {
		items = block
	}
	if items.Length() > 0 {
		items.Each(func(_ int, li *goquery.Selection) {
			if li.Find("li").Length() > 0 {
				return
			}
			if t := textOf(li); t != "" && accept(t) {
				lines = append(lines, t)
			}
		})
		return lines
	}

	for _, l := range blockLines(block.Nodes) {
		if accept(l) {
			lines = append(lines, l)
		}
	}
	return lines
}

// linesAfter returns the lines following the first line matching start, up
// to the first line matching any of stops.
func linesAfter(lines []string, start *regexp.Regexp, stops ...*regexp.Regexp) []string {
	begin := -1
	for i, l := range lines {
		if start.MatchString(l) {
			begin = i + 1
			break
		}
	}
	if begin < 0 {
		return nil
	}
	for i := begin; i < len(lines); i++ {
		for _, stop := range stops {
			if stop.MatchString(lines[i]) {
				return lines[begin:i]
			}
		}
	}
	return lines[begin:]
}

// Cook time and servings.

var cookTimeStrategies = []strategy[string]{
	{"itemprop", func(p *page) []string {
		var out []string
		p.doc.Find(`[itemprop="totalTime"], [itemprop="cookTime"]`).Each(func(_ int, sel *goquery.Selection) {
			raw := sel.AttrOr("content", sel.AttrOr("datetime", ""))
			if raw == "" {
				raw = textOf(sel)
			}
			if d := formatDuration(cookTimeLabelRe.ReplaceAllString(normalizeSpace(raw), "")); d != "" {
				out = append(out, d)
			}
		})
		return out
	}},
	{"time-selectors", func(p *page) []string {
		var out []string
		for _, t := range texts(`.wprm-recipe-total_time-container, .wprm-recipe-cook_time-container, .tasty-recipes-total-time, .tasty-recipes-cook-time, .total-time, .cook-time, .recipe-cook-time`, lengthBetween(1, 60))(p) {
			if t = cookTimeLabelRe.ReplaceAllString(t, ""); t != "" {
				out = append(out, t)
			}
		}
		return out
	}},
	{"page-text", func(p *page) []string {
		for _, l := range p.textLines() {
			if m := cookTimeTextRe.FindStringSubmatch(l); m != nil {
				return []string{normalizeSpace(m[1])}
			}
		}
		return nil
	}},
}

var servingsSelector = `.wprm-recipe-servings, .tasty-recipes-yield, [itemprop="recipeYield"], .recipe-yield, .servings, .yield`

// findServings reads a servings element, then falls back to free text over
// the title, description, steps and page text. It returns 0 when nothing
// plausible is found.
func (s *Scraper) findServings(p *page, title, description string, steps []string) (int, string) {
	servings := 0
	p.doc.Find(servingsSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := sel.AttrOr("content", "")
		if raw == "" {
			raw = textOf(sel)
		}
		if n := firstInt(raw); saneServings(n) {
			servings = n
			return false
		}
		return true
	})
	if servings > 0 {
		return servings, "servings-selector"
	}
	if n := servingsFromText(title, description, strings.Join(steps, " "), strings.Join(p.textLines(), "\n")); n > 0 {
		return n, "free-text"
	}
	return 0, ""
}


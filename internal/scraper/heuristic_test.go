package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/recipe"
)

func TestCascade(t *testing.T) {
	var calledLast bool
	strategies := []strategy[string]{
		{"first", func(*page) []string { return []string{"a"} }},
		{"second", func(*page) []string { return []string{"b", "c"} }},
		{"third", func(*page) []string { return []string{"d", "e"} }},
	}

	got, name := cascade(nil, 3, strategies)
	assert.Equal(t, []string{"b", "c"}, got, "richest result wins, ties go to the earlier strategy")
	assert.Equal(t, "second", name)

	strategies = append([]strategy[string]{
		{"viable", func(*page) []string { return []string{"x", "y", "z"} }},
	}, strategy[string]{"never", func(*page) []string {
		calledLast = true
		return nil
	}})
	got, name = cascade(nil, 3, strategies)
	assert.Equal(t, []string{"x", "y", "z"}, got)
	assert.Equal(t, "viable", name)
	assert.False(t, calledLast)

	got, name = cascade(nil, 1, []strategy[string]{{"empty", func(*page) []string { return nil }}})
	assert.Empty(t, got)
	assert.Empty(t, name)
}

func TestExtractHeuristic_WPRM(t *testing.T) {
	p := newPage(t, `<html><head>
		<meta property="og:image" content="/images/chili.jpg">
		<meta name="description" content="Weeknight chili in one pot.">
	</head><body>
		<h2 class="wprm-recipe-name">Weeknight Chili</h2>
		<span class="wprm-recipe-servings">6</span>
		<span class="wprm-recipe-total_time-container">Total Time: 45 minutes</span>
		<ul class="wprm-recipe-ingredients">
			<li class="wprm-recipe-ingredient">▢ 1 lb ground beef</li>
			<li class="wprm-recipe-ingredient">▢ 2 cans kidney beans</li>
			<li class="wprm-recipe-ingredient">▢ 1 T chili powder</li>
		</ul>
		<div class="wprm-recipe-instruction-text">Brown the beef in a large pot.</div>
		<div class="wprm-recipe-instruction-text">Add the beans and chili powder.</div>
		<div class="wprm-recipe-instruction-text">Simmer for 30 minutes and serve.</div>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)

	assert.Equal(t, "Weeknight Chili", got.Title)
	assert.Equal(t, "Weeknight chili in one pot.", got.Description)
	assert.Equal(t, 6, got.Servings)
	assert.Equal(t, "45 minutes", got.CookTime)
	assert.Equal(t, "https://example.com/images/chili.jpg", got.ImageURL)
	assert.Equal(t, recipe.Ingredients{{Items: []recipe.IngredientItem{
		{Name: "Ground beef", Quantity: "1", Unit: "lb"},
		{Name: "Kidney beans", Quantity: "2", Unit: "can"},
		{Name: "Chili powder", Quantity: "1", Unit: "Tbsp"},
	}}}, got.Ingredients)
	assert.Len(t, got.Instructions.Steps(), 3)
}

func TestExtractHeuristic_KeepsUnfilteredIngredients(t *testing.T) {
	p := newPage(t, `<html><body><h1>Grandma's Secret</h1>
		<ul class="recipe-ingredients"><li>Love</li><li>Patience</li></ul>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, []recipe.IngredientItem{{Name: "Love"}, {Name: "Patience"}}, got.Ingredients[0].Items)
}

func TestExtractHeuristic_NumberedParagraphs(t *testing.T) {
	p := newPage(t, `<html><body><h1>Fried Rice</h1>
		<p>1. Heat the oil in a wok.</p>
		<p>2. Add the rice and stir well.</p>
		<p>Step 3: Season with soy sauce and serve.</p>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	assert.Equal(t, []string{
		"Heat the oil in a wok.",
		"Add the rice and stir well.",
		"Season with soy sauce and serve.",
	}, got.Instructions.Steps())
}

func TestExtractHeuristic_RichestTierKept(t *testing.T) {
	p := newPage(t, `<html><body><h1>Toast</h1>
		<ul class="instructions"><li>Toast the bread until golden.</li><li>Spread with butter.</li></ul>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	assert.Equal(t, []string{"Toast the bread until golden.", "Spread with butter."}, got.Instructions.Steps())
}

func TestExtractHeuristic_PageText(t *testing.T) {
	p := newPage(t, `<html><body>
		<div>Ingredients</div>
		<div>2 cups flour</div>
		<div>1 tsp salt</div>
		<div>Directions</div>
		<div>Mix the flour and salt together well.</div>
		<div>Bake for twenty minutes until golden.</div>
		<div>Notes</div>
		<div>Keeps for a week in a tin.</div>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	assert.Equal(t, recipe.Ingredients{{Items: []recipe.IngredientItem{
		{Name: "Flour", Quantity: "2", Unit: "Cup"},
		{Name: "Salt", Quantity: "1", Unit: "tsp"},
	}}}, got.Ingredients)
	assert.Equal(t, []string{
		"Mix the flour and salt together well.",
		"Bake for twenty minutes until golden.",
	}, got.Instructions.Steps())
}

func TestExtractHeuristic_StrongHeadings(t *testing.T) {
	p := newPage(t, `<html><body><h1>Cinnamon Rolls</h1>
		<p><strong>For the dough:</strong></p>
		<ul><li>3 cups flour</li><li>1 packet yeast</li></ul>
		<p><strong>For the glaze:</strong></p>
		<p>1 cup powdered sugar</p>
		<p>2 tbsp milk</p>
		<h2>Method</h2>
		<ol><li>Knead the dough for ten minutes.</li></ol>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "For the dough", got.Ingredients[0].SectionName)
	assert.Len(t, got.Ingredients[0].Items, 2)
	assert.Equal(t, "For the glaze", got.Ingredients[1].SectionName)
	assert.Equal(t, []recipe.IngredientItem{
		{Name: "Powdered sugar", Quantity: "1", Unit: "Cup"},
		{Name: "Milk", Quantity: "2", Unit: "Tbsp"},
	}, got.Ingredients[1].Items)
}

func TestFindVideo(t *testing.T) {
	p := newPage(t, `<html><body>
		<a href="https://example.com/about">About</a>
		<a href="https://vimeo.com/12345">Watch</a>
	</body></html>`)
	assert.Equal(t, "https://vimeo.com/12345", newTestScraper(Options{}).findVideo(p))

	p = newPage(t, `<html><body><iframe data-src="//www.dailymotion.com/embed/video/x7"></iframe></body></html>`)
	assert.Equal(t, "https://www.dailymotion.com/embed/video/x7", newTestScraper(Options{}).findVideo(p))

	p = newPage(t, `<html><body><iframe src="https://maps.example.com/embed"></iframe></body></html>`)
	assert.Empty(t, newTestScraper(Options{}).findVideo(p))
}

func TestExtractHeuristic_CookieRecipeKeepsSteps(t *testing.T) {
	p := newPage(t, `<html><body><h1>Chocolate Chip Cookies</h1>
		<div class="wprm-recipe-instruction-text">Cream the butter and sugar together.</div>
		<div class="wprm-recipe-instruction-text">Scoop the cookie dough onto a lined tray.</div>
		<div class="wprm-recipe-instruction-text">Bake the cookies for 12 minutes.</div>
		<div class="wprm-recipe-instruction-text">Cool the cookies on a rack, then leave a comment with your results!</div>
		<div class="cookie-banner"><p>This site uses cookies. Accept cookies to continue and bake along.</p></div>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	assert.Equal(t, []string{
		"Cream the butter and sugar together.",
		"Scoop the cookie dough onto a lined tray.",
		"Bake the cookies for 12 minutes.",
		"Cool the cookies on a rack, then leave a comment with your results!",
	}, got.Instructions.Steps())
}

func TestIsBoilerplate(t *testing.T) {
	for _, s := range []string{
		"We use cookies. Accept all cookies?",
		"Read our cookie policy for details.",
		"Subscribe to the newsletter for weekly recipes.",
		"Leave a comment below and stir up the conversation.",
		"42 comments",
	} {
		assert.True(t, isBoilerplate(s), s)
	}
	for _, s := range []string{
		"Bake the cookies for 12 minutes.",
		"Scoop the cookie dough onto a lined tray.",
		"Comment: the dough keeps for three days.",
	} {
		assert.False(t, isBoilerplate(s), s)
	}
}

func TestExtractHeuristic_ArticleHeaderTitle(t *testing.T) {
	p := newPage(t, `<html><head><title>Site Name</title></head><body>
		<header class="site-header"><h1 class="site-title">Site Name</h1></header>
		<article>
			<header class="entry-header"><h1 class="entry-title">Lemon Bars</h1></header>
			<p>Bright and tangy squares.</p>
		</article>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	assert.Equal(t, "Lemon Bars", got.Title)
}

func TestExtractHeuristic_RecipeInsideFormAndAside(t *testing.T) {
	p := newPage(t, `<html><body>
		<header><nav><a href="/">Home</a></nav><h1>My Food Blog</h1></header>
		<form id="main-form">
			<aside class="recipe-card">
				<h2 class="wprm-recipe-name">Hummus</h2>
				<ul class="wprm-recipe-ingredients">
					<li class="wprm-recipe-ingredient">1 can chickpeas</li>
					<li class="wprm-recipe-ingredient">2 tbsp tahini</li>
				</ul>
				<div class="wprm-recipe-instruction-text">Drain the chickpeas.</div>
				<div class="wprm-recipe-instruction-text">Blend everything until smooth.</div>
				<div class="wprm-recipe-instruction-text">Season with salt and lemon.</div>
			</aside>
		</form>
		<aside class="sidebar"><ul><li>2 cups popular posts</li></ul></aside>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	assert.Equal(t, "Hummus", got.Title)
	assert.Equal(t, 2, got.Ingredients.ItemCount())
	assert.Len(t, got.Instructions.Steps(), 3)
}

func TestExtractHeuristic_ActionVocabulary(t *testing.T) {
	p := newPage(t, `<html><body><h1>Garlic Bread</h1>
		<p>This is my favorite side dish for pasta night.</p>
		<p>Preheat the oven to 400 degrees.</p>
		<p>Mix the softened butter with minced garlic and parsley.</p>
		<p>Spread the butter over the halved loaf.</p>
		<p>Bake for 10 minutes until golden and crisp.</p>
		<p>Subscribe to our newsletter and bake along with us!</p>
		<p>Stir it all now ok.</p>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	assert.Equal(t, []string{
		"Preheat the oven to 400 degrees.",
		"Mix the softened butter with minced garlic and parsley.",
		"Spread the butter over the halved loaf.",
		"Bake for 10 minutes until golden and crisp.",
	}, got.Instructions.Steps())
}

func TestExtractHeuristic_HeadingWalk(t *testing.T) {
	p := newPage(t, `<html><body><h1>Lasagna</h1>
		<h3>Make the sauce</h3>
		<p>Crush the tomatoes by hand into a bowl.</p>
		<p>Let the garlic sizzle gently in olive oil.</p>
		<h3>Assemble</h3>
		<p>Layer the noodles, sauce and ricotta in a dish.</p>
		<p>Top with mozzarella and let it rest.</p>
	</body></html>`)

	got := newTestScraper(Options{}).extractHeuristic(p)
	assert.Equal(t, []string{
		"Crush the tomatoes by hand into a bowl.",
		"Let the garlic sizzle gently in olive oil.",
		"Layer the noodles, sauce and ricotta in a dish.",
		"Top with mozzarella and let it rest.",
	}, got.Instructions.Steps())
}

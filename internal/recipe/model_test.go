package recipe

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredients_UnmarshalLegacy(t *testing.T) {
	var ing Ingredients
	require.NoError(t, json.Unmarshal([]byte(`["2 cups flour", "", "1 tsp salt"]`), &ing))

	require.Len(t, ing, 1)
	assert.Empty(t, ing[0].SectionName)
	assert.Equal(t, []IngredientItem{
		{Name: "Flour", Quantity: "2", Unit: "Cup"},
		{Name: "Salt", Quantity: "1", Unit: "tsp"},
	}, ing[0].Items)
}

func TestIngredients_UnmarshalSectioned(t *testing.T) {
	data := `[
		{"sectionName": "Filling", "items": [{"name": "Sugar", "quantity": "1", "unit": "Cup"}, {"name": "  "}]},
		{"sectionName": "Empty", "items": []},
		{"items": [{"name": "Butter"}]}
	]`
	var ing Ingredients
	require.NoError(t, json.Unmarshal([]byte(data), &ing))

	require.Len(t, ing, 2)
	assert.Equal(t, "Filling", ing[0].SectionName)
	assert.Equal(t, []IngredientItem{{Name: "Sugar", Quantity: "1", Unit: "Cup"}}, ing[0].Items)
	assert.Empty(t, ing[1].SectionName)
	assert.Equal(t, 2, ing.ItemCount())
}

func TestIngredients_UnmarshalStringItems(t *testing.T) {
	var ing Ingredients
	require.NoError(t, json.Unmarshal([]byte(`[
		{"sectionName":"Dough","items":["2 cups flour", "", {"name":"Salt","quantity":"1","unit":"tsp"}]}
	]`), &ing))

	assert.Equal(t, Ingredients{{SectionName: "Dough", Items: []IngredientItem{
		{Name: "Flour", Quantity: "2", Unit: "Cup"},
		{Name: "Salt", Quantity: "1", Unit: "tsp"},
	}}}, ing)
}

func TestIngredients_BothShapesAgree(t *testing.T) {
	var legacy, sectioned Ingredients
	require.NoError(t, json.Unmarshal([]byte(`["2 cups flour"]`), &legacy))
	require.NoError(t, json.Unmarshal([]byte(`[{"items":[{"name":"Flour","quantity":"2","unit":"Cup"}]}]`), &sectioned))
	assert.Equal(t, sectioned, legacy)
}

func TestIngredients_UnmarshalNull(t *testing.T) {
	var ing Ingredients
	require.NoError(t, json.Unmarshal([]byte(`null`), &ing))
	assert.Empty(t, ing)

	assert.Error(t, json.Unmarshal([]byte(`{"items": []}`), &ing))
}

func TestInstructions_UnmarshalLegacy(t *testing.T) {
	var ins Instructions
	require.NoError(t, json.Unmarshal([]byte(`["Mix.", " ", "Cook."]`), &ins))

	require.Len(t, ins, 1)
	assert.Equal(t, []InstructionStep{{Text: "Mix."}, {Text: "Cook."}}, ins[0].Steps)
	assert.Equal(t, []string{"Mix.", "Cook."}, ins.Steps())
}

func TestScanAndValue(t *testing.T) {
	in := Ingredients{
		{SectionName: "Dough", Items: []IngredientItem{{Name: "Flour", Quantity: "2", Unit: "Cup"}}},
		{SectionName: "Nothing"},
	}
	v, err := in.Value()
	require.NoError(t, err)

	var out Ingredients
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in[:1], out)

	var legacy Ingredients
	require.NoError(t, legacy.Scan([]byte(`["1 lemon"]`)))
	assert.Equal(t, Ingredients{{Items: []IngredientItem{{Name: "Lemon", Quantity: "1"}}}}, legacy)

	empty, err := Ingredients(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	var ins Instructions
	require.NoError(t, ins.Scan(nil))
	assert.Empty(t, ins)
	assert.Error(t, ins.Scan(42))
}

func TestIngredients_Lines(t *testing.T) {
	ing := Ingredients{
		{Items: []IngredientItem{{Name: "Flour", Quantity: "2", Unit: "Cup"}, {Name: "Salt to taste"}}},
		{SectionName: "Icing", Items: []IngredientItem{{Name: "Eggs", Quantity: "3"}}},
	}
	assert.Equal(t, []string{"2 Cup Flour", "Salt to taste", "3 Eggs"}, ing.Lines())
}

func TestPatch_Apply(t *testing.T) {
	r := &Recipe{ID: "r1", Title: "Soup", Servings: 2, Rating: 3}
	title := "  Tomato soup "
	servings := 4
	fav := true
	instructions := Instructions{{Steps: []InstructionStep{{Text: "Simmer."}, {Text: ""}}}}

	(&Patch{Title: &title, Servings: &servings, IsFavorite: &fav, Instructions: &instructions}).Apply(r)

	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "Tomato soup", r.Title)
	assert.Equal(t, 4, r.Servings)
	assert.Equal(t, 3.0, r.Rating)
	assert.True(t, r.IsFavorite)
	assert.Equal(t, []string{"Simmer."}, r.Instructions.Steps())
}

func TestValidate(t *testing.T) {
	valid := &Partial{
		Title:       "  Pancakes ",
		Servings:    4,
		SourceURL:   "https://example.com/pancakes",
		Ingredients: Ingredients{{Items: []IngredientItem{{Name: "Flour"}, {Name: ""}}}},
	}
	require.NoError(t, Validate(valid))
	assert.Equal(t, "Pancakes", valid.Title)
	assert.Len(t, valid.Ingredients[0].Items, 1)

	tests := []struct {
		name    string
		partial *Partial
	}{
		{"nil", nil},
		{"missing title", &Partial{Title: "   "}},
		{"rating above five", &Partial{Title: "x", Rating: 6}},
		{"negative servings", &Partial{Title: "x", Servings: -1}},
		{"relative source", &Partial{Title: "x", SourceURL: "/pancakes"}},
		{"ftp image", &Partial{Title: "x", ImageURL: "ftp://example.com/a.jpg"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tc.partial), ErrInvalidRecipe)
		})
	}
}

func TestNewValidator(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })
	assert.NoError(t, v.Var("https://example.com/a", "weburl"))
	assert.Error(t, v.Var("ftp://example.com/a", "weburl"))

	assert.Panics(t, func() { mustRegister(validator.New(), "", validateWebURL) })
}

func TestValidatePatch(t *testing.T) {
	empty := ""
	bad := 9.5
	good := 4.5
	assert.ErrorIs(t, ValidatePatch(&Patch{Title: &empty}), ErrInvalidRecipe)
	assert.ErrorIs(t, ValidatePatch(&Patch{Rating: &bad}), ErrInvalidRecipe)
	assert.NoError(t, ValidatePatch(&Patch{Rating: &good}))
	assert.NoError(t, ValidatePatch(&Patch{}))
}

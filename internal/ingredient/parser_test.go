package ingredient

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		raw  string
		want Item
	}{
		{"2 cups flour", Item{Name: "Flour", Quantity: "2", Unit: "Cup"}},
		{"1 tsp salt", Item{Name: "Salt", Quantity: "1", Unit: "tsp"}},
		{"1 1/2 cups whole milk", Item{Name: "Whole milk", Quantity: "1 1/2", Unit: "Cup"}},
		{"½ tablespoon olive oil", Item{Name: "Olive oil", Quantity: "½", Unit: "Tbsp"}},
		{"1½ lbs chicken thighs", Item{Name: "Chicken thighs", Quantity: "1½", Unit: "lb"}},
		{"2-3 cloves garlic, minced", Item{Name: "Garlic, minced", Quantity: "2-3", Unit: "clove"}},
		{"1 to 2 T honey", Item{Name: "Honey", Quantity: "1 to 2", Unit: "Tbsp"}},
		{"2 t vanilla", Item{Name: "Vanilla", Quantity: "2", Unit: "tsp"}},
		{"200g dark chocolate", Item{Name: "Dark chocolate", Quantity: "200", Unit: "g"}},
		{"0.5 oz. yeast", Item{Name: "Yeast", Quantity: "0.5", Unit: "oz"}},
		{"3 large eggs", Item{Name: "Large eggs", Quantity: "3"}},
		{"2 tomatoes", Item{Name: "Tomatoes", Quantity: "2"}},
		{"1 or 2 limes", Item{Name: "Limes", Quantity: "1 or 2"}},
		{"a pinch of salt", Item{Name: "Salt", Quantity: "a pinch of"}},
		{"A handful of basil leaves", Item{Name: "Basil leaves", Quantity: "A handful of"}},
		{"salt and pepper to taste", Item{Name: "Salt and pepper to taste"}},
		{"  • 1 can   chickpeas ", Item{Name: "Chickpeas", Quantity: "1", Unit: "can"}},
		{"1 lemon", Item{Name: "Lemon", Quantity: "1"}},
		{"4 cups", Item{Name: "Cups", Quantity: "4"}},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLine(tc.raw))
		})
	}
}

func TestParseLine_Empty(t *testing.T) {
	assert.Equal(t, Item{}, ParseLine("   "))
}

func TestParseLine_NeverDropsText(t *testing.T) {
	lines := []string{
		"2 cups flour",
		"1 (14 oz) can diced tomatoes, drained",
		"3 large eggs, at room temperature",
		"freshly ground black pepper",
		"1-2 tbsp maple syrup or honey",
		"a dash of hot sauce",
		"¾ cup sugar",
		"zest of 1 orange",
		"Kosher salt",
	}
	for _, raw := range lines {
		item := ParseLine(raw)
		assert.NotEmpty(t, item.Name, raw)

		recovered := strings.ToLower(item.Quantity + " " + item.Name)
		for _, tok := range strings.Fields(raw) {
			if item.Unit != "" && StandardizeUnit(strings.TrimSuffix(tok, ".")) == item.Unit {
				continue
			}
			assert.Contains(t, recovered, strings.ToLower(tok), "token %q of %q", tok, raw)
		}
	}
}

func TestStandardizeUnit(t *testing.T) {
	tests := map[string]string{
		"cups":        "Cup",
		"Cup":         "Cup",
		"c":           "Cup",
		"tbsp":        "Tbsp",
		"Tablespoons": "Tbsp",
		"tbs":         "Tbsp",
		"T":           "Tbsp",
		"t":           "tsp",
		"teaspoon":    "tsp",
		"OZ":          "oz",
		"ounces":      "oz",
		"lbs":         "lb",
		"pound":       "lb",
		"Grams":       "g",
		"litres":      "L",
		"pints":       "pint",
		"cloves":      "clove",
		"pkg":         "package",
		"tbsp.":       "Tbsp",
		"handful":     "handful",
		"sprig":       "sprig",
	}
	for raw, want := range tests {
		assert.Equal(t, want, StandardizeUnit(raw), raw)
	}
}

func TestStandardizeUnit_Idempotent(t *testing.T) {
	inputs := []string{"T", "t", "unknown", "L", "l", ""}
	for u := range canonicalUnits {
		inputs = append(inputs, u, strings.ToUpper(u))
	}
	for _, u := range inputs {
		once := StandardizeUnit(u)
		assert.Equal(t, once, StandardizeUnit(once), u)
	}
	assert.Equal(t, StandardizeUnit("cups"), StandardizeUnit("Cup"))
}

func TestLooksLikeIngredient(t *testing.T) {
	assert.True(t, LooksLikeIngredient("2 cups rolled oats"))
	assert.True(t, LooksLikeIngredient("½ tsp cinnamon"))
	assert.True(t, LooksLikeIngredient("Kosher salt"))
	assert.True(t, LooksLikeIngredient("a pinch of nutmeg"))
	assert.False(t, LooksLikeIngredient("Home"))
	assert.False(t, LooksLikeIngredient("Subscribe to our newsletter"))
	assert.False(t, LooksLikeIngredient("Privacy Policy"))
}

func TestItem_UnmarshalJSON(t *testing.T) {
	var items []Item
	require.NoError(t, json.Unmarshal([]byte(`["2 cups flour", {"name":"Salt","quantity":"1","unit":"tsp"}, "water as needed"]`), &items))
	assert.Equal(t, []Item{
		{Name: "Flour", Quantity: "2", Unit: "Cup"},
		{Name: "Salt", Quantity: "1", Unit: "tsp"},
		ParseLine("water as needed"),
	}, items)

	var it Item
	assert.Error(t, json.Unmarshal([]byte(`42`), &it))
}

package recipe

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off`, escapeLike("50% off"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}

// newTestStore connects to RECIPEBOX_TEST_DATABASE_URL and skips when it is unset.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("RECIPEBOX_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("RECIPEBOX_TEST_DATABASE_URL not set")
	}
	s, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owner, other := uuid.NewString(), uuid.NewString()
	created, err := s.CreateRecipe(ctx, owner, &Partial{
		Title:        " Banana Bread ",
		Servings:     8,
		Ingredients:  IngredientsFromLines([]string{"3 ripe bananas", "2 cups flour", "  "}),
		Instructions: InstructionsFromLines([]string{"Mash.", "Bake at 350F for 60 min."}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Banana Bread", created.Title)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 2, created.Ingredients.ItemCount())

	got, err := s.GetRecipe(ctx, owner, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Ingredients, got.Ingredients)
	assert.Equal(t, created.Instructions, got.Instructions)

	got, err = s.GetRecipe(ctx, other, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	found, err := s.SearchRecipes(ctx, owner, "FLOUR")
	require.NoError(t, err)
	assert.Len(t, found, 1)
	found, err = s.SearchRecipes(ctx, owner, "100%")
	require.NoError(t, err)
	assert.Empty(t, found)

	fav := true
	updated, err := s.UpdateRecipe(ctx, owner, created.ID, &Patch{IsFavorite: &fav})
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)
	assert.Equal(t, "Banana Bread", updated.Title)

	_, err = s.UpdateRecipe(ctx, other, created.ID, &Patch{IsFavorite: &fav})
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	assert.ErrorIs(t, s.DeleteRecipe(ctx, other, created.ID), ErrRecipeNotFound)
	require.NoError(t, s.DeleteRecipe(ctx, owner, created.ID))
	assert.ErrorIs(t, s.DeleteRecipe(ctx, owner, created.ID), ErrRecipeNotFound)
}

func TestPostgresStore_LegacyRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner, id := uuid.NewString(), uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipes (id, owner_id, title, ingredients, instructions) VALUES ($1, $2, 'Old', $3, $4)`,
		id, owner, `["1 cup rice", "2 cups water"]`, `["Boil.", "Simmer."]`)
	require.NoError(t, err)

	got, err := s.GetRecipe(ctx, owner, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Ingredients{{Items: []IngredientItem{
		{Name: "Rice", Quantity: "1", Unit: "Cup"},
		{Name: "Water", Quantity: "2", Unit: "Cup"},
	}}}, got.Ingredients)
	assert.Equal(t, []string{"Boil.", "Simmer."}, got.Instructions.Steps())
}

func TestCreateRecipe_RejectsInvalid(t *testing.T) {
	s := &PostgresStore{}
	_, err := s.CreateRecipe(context.Background(), "u1", &Partial{Title: ""})
	assert.ErrorIs(t, err, ErrInvalidRecipe)
}

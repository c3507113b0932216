package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store defines the interface for recipe data operations. Every operation is
// scoped to the owning user.
type Store interface {
	CreateRecipe(ctx context.Context, ownerID string, p *Partial) (*Recipe, error)
	GetRecipe(ctx context.Context, ownerID, id string) (*Recipe, error)
	UpdateRecipe(ctx context.Context, ownerID, id string, patch *Patch) (*Recipe, error)
	DeleteRecipe(ctx context.Context, ownerID, id string) error
	SearchRecipes(ctx context.Context, ownerID, text string) ([]*Recipe, error)
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

const recipeColumns = `id, owner_id, title, description, cook_time, servings, category, difficulty, rating,
	image_url, video_url, source_url, ingredients, instructions, is_favorite, created_at`

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	cook_time TEXT NOT NULL DEFAULT '',
	servings INTEGER NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL DEFAULT '',
	rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	image_url TEXT NOT NULL DEFAULT '',
	video_url TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	ingredients JSONB NOT NULL DEFAULT '[]',
	instructions JSONB NOT NULL DEFAULT '[]',
	is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS recipes_owner_created_idx ON recipes (owner_id, created_at DESC);
`

// NewPostgresStore connects to the database and creates the recipes table if needed.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing connection and ensures the schema exists.
func NewStore(db *sqlx.DB) (*PostgresStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateRecipe validates p, assigns an id and creation time, and stores it.
func (s *PostgresStore) CreateRecipe(ctx context.Context, ownerID string, p *Partial) (*Recipe, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	r := &Recipe{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        p.Title,
		Description:  p.Description,
		CookTime:     p.CookTime,
		Servings:     p.Servings,
		Category:     p.Category,
		Difficulty:   p.Difficulty,
		Rating:       p.Rating,
		ImageURL:     p.ImageURL,
		VideoURL:     p.VideoURL,
		SourceURL:    p.SourceURL,
		Ingredients:  p.Ingredients,
		Instructions: p.Instructions,
		IsFavorite:   p.IsFavorite,
		CreatedAt:    s.now().UTC(),
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO recipes (`+recipeColumns+`) VALUES (:id, :owner_id, :title, :description, :cook_time, :servings,
		:category, :difficulty, :rating, :image_url, :video_url, :source_url, :ingredients, :instructions,
		:is_favorite, :created_at)`,
		r,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	return r, nil
}

// GetRecipe retrieves a recipe by id. It returns nil, nil when the owner has no such recipe.
func (s *PostgresStore) GetRecipe(ctx context.Context, ownerID, id string) (*Recipe, error) {
	var r Recipe
	err := s.db.GetContext(ctx, &r, `SELECT `+recipeColumns+` FROM recipes WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &r, nil
}

// UpdateRecipe applies patch to the stored recipe. The row is locked for the
// duration of the read-modify-write.
func (s *PostgresStore) UpdateRecipe(ctx context.Context, ownerID, id string, patch *Patch) (*Recipe, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var r Recipe
	err = tx.GetContext(ctx, &r, `SELECT `+recipeColumns+` FROM recipes WHERE owner_id = $1 AND id = $2 FOR UPDATE`, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	patch.Apply(&r)
	if strings.TrimSpace(r.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRecipe)
	}

	_, err = tx.NamedExecContext(ctx,
		`UPDATE recipes SET title = :title, description = :description, cook_time = :cook_time,
		servings = :servings, category = :category, difficulty = :difficulty, rating = :rating,
		image_url = :image_url, video_url = :video_url, source_url = :source_url,
		ingredients = :ingredients, instructions = :instructions, is_favorite = :is_favorite
		WHERE owner_id = :owner_id AND id = :id`,
		&r,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recipe update: %w", err)
	}
	return &r, nil
}

// DeleteRecipe removes a recipe.
func (s *PostgresStore) DeleteRecipe(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// SearchRecipes returns the owner's recipes whose title, description, category
// or ingredients contain text, newest first. An empty text lists all recipes.
func (s *PostgresStore) SearchRecipes(ctx context.Context, ownerID, text string) ([]*Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if text = strings.TrimSpace(text); text != "" {
		query += ` AND (title ILIKE $2 OR description ILIKE $2 OR category ILIKE $2 OR ingredients::text ILIKE $2)`
		args = append(args, "%"+escapeLike(text)+"%")
	}
	query += ` ORDER BY created_at DESC`

	recipes := []*Recipe{}
	if err := s.db.SelectContext(ctx, &recipes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

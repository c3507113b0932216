package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipebox/internal/portion"
	"recipebox/internal/recipe"
	"recipebox/internal/scraper"
)

// UserHeader carries the id of the authenticated user.
const UserHeader = "X-User-ID"

const userKey = "userID"

// DefaultTimeout bounds each request when the handler is built without one.
const DefaultTimeout = 30 * time.Second

// Ingester turns a recipe URL into a partial recipe.
type Ingester interface {
	Ingest(ctx context.Context, rawURL string) (*recipe.Partial, error)
}

// RecipeStore defines the interface for recipe data operations.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, ownerID string, p *recipe.Partial) (*recipe.Recipe, error)
	GetRecipe(ctx context.Context, ownerID, id string) (*recipe.Recipe, error)
	UpdateRecipe(ctx context.Context, ownerID, id string, patch *recipe.Patch) (*recipe.Recipe, error)
	DeleteRecipe(ctx context.Context, ownerID, id string) error
	SearchRecipes(ctx context.Context, ownerID, text string) ([]*recipe.Recipe, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Ingester    Ingester
	RecipeStore RecipeStore
	Scaler      *portion.Scaler
	Timeout     time.Duration

	logger *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(ingester Ingester, store RecipeStore, scaler *portion.Scaler, timeout time.Duration, logger *zap.Logger) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Ingester:    ingester,
		RecipeStore: store,
		Scaler:      scaler,
		Timeout:     timeout,
		logger:      logger.Named("api"),
	}
}

// RequireUser rejects requests without a user id header.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(UserHeader))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserHeader + " header"})
			return
		}
		c.Set(userKey, id)
		c.Next()
	}
}

// Register mounts the recipe routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/recipes", RequireUser())
	g.POST("/import", h.ImportRecipe)
	g.POST("", h.CreateRecipe)
	g.GET("", h.SearchRecipes)
	g.GET("/:id", h.GetRecipe)
	g.PATCH("/:id", h.UpdateRecipe)
	g.DELETE("/:id", h.DeleteRecipe)
	g.GET("/:id/ingredients", h.ScaledIngredients)
}

type importRequest struct {
	URL string `json:"url" binding:"required"`
}

// ImportRecipe scrapes the posted URL and returns the extracted recipe
// without saving it.
func (h *Handler) ImportRecipe(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	partial, err := h.Ingester.Ingest(ctx, req.URL)
	if err != nil {
		h.fail(c, "import", err)
		return
	}
	c.JSON(http.StatusOK, partial)
}

// CreateRecipe saves a recipe for the current user.
func (h *Handler) CreateRecipe(c *gin.Context) {
	var p recipe.Partial
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	r, err := h.RecipeStore.CreateRecipe(ctx, userID(c), &p)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// SearchRecipes lists the current user's recipes matching the q parameter.
func (h *Handler) SearchRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.RecipeStore.SearchRecipes(ctx, userID(c), c.Query("q"))
	if err != nil {
		h.fail(c, "search", err)
		return
	}
	if recipes == nil {
		recipes = []*recipe.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe returns a single recipe.
func (h *Handler) GetRecipe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	r, ok := h.lookup(ctx, c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

// UpdateRecipe applies a partial edit.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	var patch recipe.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := recipe.ValidatePatch(&patch); err != nil {
		h.fail(c, "update", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	r, err := h.RecipeStore.UpdateRecipe(ctx, userID(c), c.Param("id"), &patch)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRecipe removes a recipe.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.RecipeStore.DeleteRecipe(ctx, userID(c), c.Param("id")); err != nil {
		h.fail(c, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type scaledIngredients struct {
	Multiplier float64           `json:"multiplier"`
	Sections   []portion.Section `json:"sections"`
}

// ScaledIngredients renders a recipe's ingredients at the multiplier query
// parameter, 1 when absent.
func (h *Handler) ScaledIngredients(c *gin.Context) {
	multiplier := 1.0
	if raw := c.Query("multiplier"); raw != "" {
		m, err := portion.ParseMultiplier(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		multiplier = m
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	r, ok := h.lookup(ctx, c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, scaledIngredients{
		Multiplier: multiplier,
		Sections:   h.Scaler.Scale(r.Ingredients, multiplier),
	})
}

func (h *Handler) lookup(ctx context.Context, c *gin.Context) (*recipe.Recipe, bool) {
	r, err := h.RecipeStore.GetRecipe(ctx, userID(c), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return nil, false
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return nil, false
	}
	return r, true
}

// fail maps err to a status code. Scrape causes and storage errors are logged
// but never sent to the client.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError || status == http.StatusRequestTimeout {
		h.logger.Error("request failed", zap.String("op", op), zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, scraper.ErrScrapeFailed):
		return http.StatusBadGateway, scraper.UserMessage
	case errors.Is(err, recipe.ErrInvalidRecipe):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, recipe.ErrRecipeNotFound):
		return http.StatusNotFound, "recipe not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}

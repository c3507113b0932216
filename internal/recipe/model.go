package recipe

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipebox/internal/ingredient"
)

// PlaceholderStep is substituted when no usable instruction could be extracted.
const PlaceholderStep = "No instructions could be extracted. Please check the original recipe at the source URL."

// IngredientItem is one ingredient line split into name, quantity and unit.
type IngredientItem = ingredient.Item

// IngredientSection groups ingredients under an optional heading such as "Icing".
type IngredientSection struct {
	SectionName string           `json:"sectionName,omitempty"`
	Items       []IngredientItem `json:"items" validate:"min=1,dive"`
}

// InstructionStep is a single step of a recipe.
type InstructionStep struct {
	Text     string `json:"text" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// InstructionSection groups steps under an optional heading.
type InstructionSection struct {
	SectionName string            `json:"sectionName,omitempty"`
	Steps       []InstructionStep `json:"steps" validate:"min=1,dive"`
}

// Ingredients is the canonical sectioned ingredient list of a recipe.
type Ingredients []IngredientSection

// Instructions is the canonical sectioned instruction list of a recipe.
type Instructions []InstructionSection

// Recipe is a stored recipe owned by a single user.
type Recipe struct {
	ID           string       `json:"id" db:"id"`
	OwnerID      string       `json:"ownerId" db:"owner_id"`
	Title        string       `json:"title" db:"title"`
	Description  string       `json:"description,omitempty" db:"description"`
	CookTime     string       `json:"cookTime,omitempty" db:"cook_time"`
	Servings     int          `json:"servings,omitempty" db:"servings"`
	Category     string       `json:"category,omitempty" db:"category"`
	Difficulty   string       `json:"difficulty,omitempty" db:"difficulty"`
	Rating       float64      `json:"rating,omitempty" db:"rating"`
	ImageURL     string       `json:"imageUrl,omitempty" db:"image_url"`
	VideoURL     string       `json:"videoUrl,omitempty" db:"video_url"`
	SourceURL    string       `json:"sourceUrl,omitempty" db:"source_url"`
	Ingredients  Ingredients  `json:"ingredients" db:"ingredients"`
	Instructions Instructions `json:"instructions" db:"instructions"`
	IsFavorite   bool         `json:"isFavorite" db:"is_favorite"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
}

// Partial is a recipe without identity, as produced by ingestion or submitted
// from the edit form.
type Partial struct {
	Title        string       `json:"title" validate:"required,max=300"`
	Description  string       `json:"description,omitempty"`
	CookTime     string       `json:"cookTime,omitempty"`
	Servings     int          `json:"servings,omitempty" validate:"gte=0,lte=1000"`
	Category     string       `json:"category,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	Rating       float64      `json:"rating,omitempty" validate:"gte=0,lte=5"`
	ImageURL     string       `json:"imageUrl,omitempty" validate:"weburl"`
	VideoURL     string       `json:"videoUrl,omitempty" validate:"weburl"`
	SourceURL    string       `json:"sourceUrl,omitempty" validate:"weburl"`
	Ingredients  Ingredients  `json:"ingredients" validate:"dive"`
	Instructions Instructions `json:"instructions" validate:"dive"`
	IsFavorite   bool         `json:"isFavorite"`
}

// Patch carries a partial edit. Nil fields are left untouched.
type Patch struct {
	Title        *string       `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Description  *string       `json:"description,omitempty"`
	CookTime     *string       `json:"cookTime,omitempty"`
	Servings     *int          `json:"servings,omitempty" validate:"omitempty,gte=0,lte=1000"`
	Category     *string       `json:"category,omitempty"`
	Difficulty   *string       `json:"difficulty,omitempty"`
	Rating       *float64      `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ImageURL     *string       `json:"imageUrl,omitempty" validate:"omitempty,weburl"`
	VideoURL     *string       `json:"videoUrl,omitempty" validate:"omitempty,weburl"`
	SourceURL    *string       `json:"sourceUrl,omitempty" validate:"omitempty,weburl"`
	Ingredients  *Ingredients  `json:"ingredients,omitempty"`
	Instructions *Instructions `json:"instructions,omitempty"`
	IsFavorite   *bool         `json:"isFavorite,omitempty"`
}

// Apply copies the set fields of p onto r.
func (p *Patch) Apply(r *Recipe) {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.CookTime != nil {
		r.CookTime = *p.CookTime
	}
	if p.Servings != nil {
		r.Servings = *p.Servings
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Difficulty != nil {
		r.Difficulty = *p.Difficulty
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	if p.VideoURL != nil {
		r.VideoURL = *p.VideoURL
	}
	if p.SourceURL != nil {
		r.SourceURL = *p.SourceURL
	}
	if p.Ingredients != nil {
		r.Ingredients = p.Ingredients.Compact()
	}
	if p.Instructions != nil {
		r.Instructions = p.Instructions.Compact()
	}
	if p.IsFavorite != nil {
		r.IsFavorite = *p.IsFavorite
	}
}

// IngredientsFromLines parses flat ingredient lines into a single unnamed section.
func IngredientsFromLines(lines []string) Ingredients {
	items := make([]IngredientItem, 0, len(lines))
	for _, line := range lines {
		item := ingredient.ParseLine(line)
		if item.Name == "" {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return Ingredients{}
	}
	return Ingredients{{Items: items}}
}

// InstructionsFromLines wraps flat instruction strings into a single unnamed section.
func InstructionsFromLines(lines []string) Instructions {
	steps := make([]InstructionStep, 0, len(lines))
	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		steps = append(steps, InstructionStep{Text: text})
	}
	if len(steps) == 0 {
		return Instructions{}
	}
	return Instructions{{Steps: steps}}
}

// Lines flattens the ingredient sections back to display lines.
func (ing Ingredients) Lines() []string {
	var lines []string
	for _, s := range ing {
		for _, it := range s.Items {
			parts := make([]string, 0, 3)
			for _, p := range []string{it.Quantity, it.Unit, it.Name} {
				if p != "" {
					parts = append(parts, p)
				}
			}
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return lines
}

// ItemCount returns the number of items across all sections.
func (ing Ingredients) ItemCount() int {
	n := 0
	for _, s := range ing {
		n += len(s.Items)
	}
	return n
}

// Compact drops items without a name and sections left without items.
func (ing Ingredients) Compact() Ingredients {
	out := make(Ingredients, 0, len(ing))
	for _, s := range ing {
		items := make([]IngredientItem, 0, len(s.Items))
		for _, it := range s.Items {
			it.Name = strings.TrimSpace(it.Name)
			if it.Name == "" {
				continue
			}
			it.Quantity = strings.TrimSpace(it.Quantity)
			it.Unit = strings.TrimSpace(it.Unit)
			items = append(items, it)
		}
		if len(items) == 0 {
			continue
		}
		out = append(out, IngredientSection{SectionName: strings.TrimSpace(s.SectionName), Items: items})
	}
	return out
}

// UnmarshalJSON accepts both the sectioned shape and the legacy flat array of
// ingredient strings.
func (ing *Ingredients) UnmarshalJSON(data []byte) error {
	elems, err := splitArray(data)
	if err != nil {
		return fmt.Errorf("ingredients: %w", err)
	}
	if lines, ok := legacyLines(elems); ok {
		*ing = IngredientsFromLines(lines)
		return nil
	}
	sections := make([]IngredientSection, 0, len(elems))
	for _, raw := range elems {
		var s IngredientSection
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("ingredients: %w", err)
		}
		sections = append(sections, s)
	}
	*ing = Ingredients(sections).Compact()
	return nil
}

// Scan implements sql.Scanner for JSONB columns.
func (ing *Ingredients) Scan(src any) error {
	data, err := scanBytes(src)
	if err != nil {
		return fmt.Errorf("ingredients: %w", err)
	}
	return ing.UnmarshalJSON(data)
}

// Value implements driver.Valuer for JSONB columns.
func (ing Ingredients) Value() (driver.Value, error) {
	return marshalColumn(ing.Compact())
}

// Steps flattens the instruction sections to their step texts.
func (ins Instructions) Steps() []string {
	var steps []string
	for _, s := range ins {
		for _, st := range s.Steps {
			steps = append(steps, st.Text)
		}
	}
	return steps
}

// Compact drops empty steps and sections left without steps.
func (ins Instructions) Compact() Instructions {
	out := make(Instructions, 0, len(ins))
	for _, s := range ins {
		steps := make([]InstructionStep, 0, len(s.Steps))
		for _, st := range s.Steps {
			st.Text = strings.TrimSpace(st.Text)
			if st.Text == "" {
				continue
			}
			steps = append(steps, st)
		}
		if len(steps) == 0 {
			continue
		}
		out = append(out, InstructionSection{SectionName: strings.TrimSpace(s.SectionName), Steps: steps})
	}
	return out
}

// UnmarshalJSON accepts both the sectioned shape and the legacy flat array of
// step strings.
func (ins *Instructions) UnmarshalJSON(data []byte) error {
	elems, err := splitArray(data)
	if err != nil {
		return fmt.Errorf("instructions: %w", err)
	}
	if lines, ok := legacyLines(elems); ok {
		*ins = InstructionsFromLines(lines)
		return nil
	}
	sections := make([]InstructionSection, 0, len(elems))
	for _, raw := range elems {
		var s InstructionSection
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("instructions: %w", err)
		}
		sections = append(sections, s)
	}
	*ins = Instructions(sections).Compact()
	return nil
}

// Scan implements sql.Scanner for JSONB columns.
func (ins *Instructions) Scan(src any) error {
	data, err := scanBytes(src)
	if err != nil {
		return fmt.Errorf("instructions: %w", err)
	}
	return ins.UnmarshalJSON(data)
}

// Value implements driver.Valuer for JSONB columns.
func (ins Instructions) Value() (driver.Value, error) {
	return marshalColumn(ins.Compact())
}

// Normalize compacts both lists and trims the title.
func (p *Partial) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Ingredients = p.Ingredients.Compact()
	p.Instructions = p.Instructions.Compact()
}

func splitArray(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}

// legacyLines reports whether every element is a bare string, returning them.
func legacyLines(elems []json.RawMessage) ([]string, bool) {
	if len(elems) == 0 {
		return nil, false
	}
	lines := make([]string, 0, len(elems))
	for _, raw := range elems {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '"' {
			return nil, false
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		lines = append(lines, s)
	}
	return lines, true
}

func marshalColumn(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported column type")
	}
}

package recipe

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrRecipeNotFound is returned when no recipe with the given id belongs to the owner.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrInvalidRecipe is returned when a recipe fails validation.
	ErrInvalidRecipe = errors.New("invalid recipe")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "weburl", validateWebURL)
	return v
}

// mustRegister panics when a custom tag cannot be registered.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// validateWebURL accepts empty strings and absolute http(s) URLs.
func validateWebURL(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate normalizes p and checks it against the recipe constraints.
func Validate(p *Partial) error {
	if p == nil {
		return fmt.Errorf("%w: empty recipe", ErrInvalidRecipe)
	}
	p.Normalize()
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecipe, describe(err))
	}
	return nil
}

// ValidatePatch checks the set fields of a patch.
func ValidatePatch(p *Patch) error {
	if p == nil {
		return fmt.Errorf("%w: empty patch", ErrInvalidRecipe)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecipe, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

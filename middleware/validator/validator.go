package validator

import (
	"fmt"

	"github.com/mealforge/mealforge/middleware"
	"github.com/mealforge/mealforge/recipe"
)

// maxServings bounds how many portions one request may ask for.
const maxServings = 50

// RequestValidator rejects malformed generation requests before any
// tokens are spent on them.
type RequestValidator struct{}

// NewRequestValidator creates a request validation middleware
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// Name returns the middleware name
func (m *RequestValidator) Name() string {
	return "RequestValidator"
}

// Execute validates the request
func (m *RequestValidator) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if err := validate(ctx.Request); err != nil {
		return fmt.Errorf("%w: %v", middleware.ErrInvalidRequest, err)
	}
	return next(ctx)
}

func validate(req *recipe.GenerationRequest) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	switch req.Difficulty {
	case "", recipe.DifficultyEasy, recipe.DifficultyMedium, recipe.DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q", req.Difficulty)
	}
	if req.Servings < 0 || req.Servings > maxServings {
		return fmt.Errorf("servings %d out of range", req.Servings)
	}
	if req.MaxPrepTimeMinutes < 0 {
		return fmt.Errorf("negative max prep time")
	}
	if req.MaxCookTimeMinutes < 0 {
		return fmt.Errorf("negative max cook time")
	}
	for _, name := range req.IngredientsToUse {
		for _, avoid := range req.IngredientsToAvoid {
			if name == avoid {
				return fmt.Errorf("ingredient %q both required and avoided", name)
			}
		}
	}
	return nil
}

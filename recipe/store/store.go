package store

import (
	"context"

	"github.com/mealforge/mealforge/recipe"
)

// RecipeStore defines the interface for persisting finished recipes.
// Implementations are provided for in-memory, PostgreSQL, MongoDB and Redis
// backends.
type RecipeStore interface {
	// SaveRecipe persists a recipe, assigning an ID when it has none
	SaveRecipe(ctx context.Context, r *recipe.Recipe) error

	// GetRecipe retrieves a recipe by ID
	GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error)

	// ListRecipes returns the most recent recipes, newest first
	ListRecipes(ctx context.Context, limit int) ([]*recipe.Recipe, error)

	// DeleteRecipe removes a recipe by ID
	DeleteRecipe(ctx context.Context, id int64) error
}

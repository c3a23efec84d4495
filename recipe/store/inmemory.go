package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	errorspkg "github.com/mealforge/mealforge/errors"
	"github.com/mealforge/mealforge/recipe"
)

// InMemoryStore implements RecipeStore using in-memory storage
type InMemoryStore struct {
	mu      sync.RWMutex
	recipes map[int64]*recipe.Recipe
	nextID  int64
}

// NewInMemoryStore creates a new in-memory recipe store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		recipes: make(map[int64]*recipe.Recipe),
		nextID:  1,
	}
}

// SaveRecipe stores a recipe, assigning the next ID when it has none
func (s *InMemoryStore) SaveRecipe(ctx context.Context, r *recipe.Recipe) error {
	if r == nil {
		return fmt.Errorf("recipe cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == 0 {
		r.ID = s.nextID
		s.nextID++
	} else if r.ID >= s.nextID {
		s.nextID = r.ID + 1
	}
	clone := *r
	s.recipes[r.ID] = &clone
	return nil
}

// GetRecipe retrieves a recipe by ID
func (s *InMemoryStore) GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", id, errorspkg.ErrNotFound)
	}
	clone := *r
	return &clone, nil
}

// ListRecipes returns the most recent recipes, newest first
func (s *InMemoryStore) ListRecipes(ctx context.Context, limit int) ([]*recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*recipe.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteRecipe removes a recipe by ID
func (s *InMemoryStore) DeleteRecipe(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return fmt.Errorf("recipe %d: %w", id, errorspkg.ErrNotFound)
	}
	delete(s.recipes, id)
	return nil
}

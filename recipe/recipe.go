package recipe

import "time"

// Difficulty represents how demanding a recipe is to cook
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Ingredient represents a single line item of a recipe
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// Instruction represents one preparation step. Step carries the 1-based number
// reported by the producer; the slice order is authoritative.
type Instruction struct {
	Step    int    `json:"step"`
	Content string `json:"content"`
}

// Metadata holds the timing and serving summary of a recipe
type Metadata struct {
	PrepTimeMinutes int `json:"prep_time_minutes"`
	CookTimeMinutes int `json:"cook_time_minutes"`
	Servings        int `json:"servings"`
}

// Nutrition holds the per-serving nutrition summary
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
}

// Recipe is a finished, persistable recipe
type Recipe struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Metadata     Metadata      `json:"metadata"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	Nutrition    *Nutrition    `json:"nutrition,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Outcome is the terminal result of one generation session. Exactly one
// outcome is produced per submitted request.
type Outcome struct {
	RecipeID int64  `json:"recipe_id,omitempty"`
	Message  string `json:"message,omitempty"`
	Err      string `json:"error,omitempty"`
	Timeout  bool   `json:"timeout,omitempty"`
}

// Success reports whether the session ended with a completed recipe.
func (o Outcome) Success() bool {
	return o.Err == "" && !o.Timeout
}

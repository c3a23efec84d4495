package recipe

// GenerationRequest describes one desired recipe. It is supplied once at
// stream start and never mutated while the session is running.
type GenerationRequest struct {
	MealType            string     `json:"meal_type,omitempty"`
	Cuisine             string     `json:"cuisine,omitempty"`
	Difficulty          Difficulty `json:"difficulty,omitempty"`
	MaxPrepTimeMinutes  int        `json:"max_prep_time_minutes,omitempty"`
	MaxCookTimeMinutes  int        `json:"max_cook_time_minutes,omitempty"`
	Servings            int        `json:"servings,omitempty"`
	IngredientsToUse    []string   `json:"ingredients_to_use,omitempty"`
	IngredientsToAvoid  []string   `json:"ingredients_to_avoid,omitempty"`
	DietaryRestrictions []string   `json:"dietary_restrictions,omitempty"`
	Comments            string     `json:"comments,omitempty"`
	AllowWebSearch      bool       `json:"allow_web_search,omitempty"`
}

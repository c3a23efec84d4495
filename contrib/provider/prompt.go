package provider

import (
	"fmt"
	"strings"

	"github.com/mealforge/mealforge/recipe"
	"github.com/mealforge/mealforge/search"
)

// systemPrompt instructs the model to speak the generation event protocol.
const systemPrompt = `You are a recipe generator. Emit the recipe as a stream of JSON events, exactly one JSON object per line, with no surrounding prose or markdown.

Event order and shapes:
{"type":"recipe_start"}
{"type":"recipe_name","content":"<name>"}
{"type":"recipe_description","content":"<short description>"}
{"type":"recipe_metadata","content":{"prep_time_minutes":<int>,"cook_time_minutes":<int>,"servings":<int>}}
{"type":"ingredients_start"}
{"type":"ingredient","content":{"name":"<name>","quantity":<number>,"unit":"<unit>","notes":"<optional>"}}
{"type":"instructions_start"}
{"type":"instruction","step":<1-based int>,"content":"<step text>"}
{"type":"nutrition","content":{"calories":<number>,"protein":<number>,"carbs":<number>,"fat":<number>}}
{"type":"complete","recipe_id":0}

Emit one ingredient event per ingredient and one instruction event per step, in order. Always end with the complete event.`

// BuildPrompt renders the system and user prompts for one generation
// request, folding in an extracted reference page when available.
func BuildPrompt(req *recipe.GenerationRequest, page *search.Result) (system, user string) {
	var b strings.Builder
	b.WriteString("Generate a recipe")
	if req.MealType != "" {
		fmt.Fprintf(&b, " for %s", req.MealType)
	}
	if req.Cuisine != "" {
		fmt.Fprintf(&b, " in %s cuisine", req.Cuisine)
	}
	b.WriteString(".\n")

	if req.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s.\n", req.Difficulty)
	}
	if req.Servings > 0 {
		fmt.Fprintf(&b, "Servings: %d.\n", req.Servings)
	}
	if req.MaxPrepTimeMinutes > 0 {
		fmt.Fprintf(&b, "Maximum preparation time: %d minutes.\n", req.MaxPrepTimeMinutes)
	}
	if req.MaxCookTimeMinutes > 0 {
		fmt.Fprintf(&b, "Maximum cooking time: %d minutes.\n", req.MaxCookTimeMinutes)
	}
	if len(req.IngredientsToUse) > 0 {
		fmt.Fprintf(&b, "Must use: %s.\n", strings.Join(req.IngredientsToUse, ", "))
	}
	if len(req.IngredientsToAvoid) > 0 {
		fmt.Fprintf(&b, "Must avoid: %s.\n", strings.Join(req.IngredientsToAvoid, ", "))
	}
	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "Dietary restrictions: %s.\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	if req.Comments != "" {
		fmt.Fprintf(&b, "Additional notes: %s\n", req.Comments)
	}

	if page != nil && page.Text != "" {
		fmt.Fprintf(&b, "\nReference recipe found on the web (%s):\n%s\n", page.Title, page.Text)
	}
	return systemPrompt, b.String()
}

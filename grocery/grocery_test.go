package grocery

import (
	"testing"

	"github.com/mealforge/mealforge/recipe"
)

func TestFromRecipesMergesByNameAndUnit(t *testing.T) {
	breakfast := &recipe.Recipe{
		ID: 1,
		Ingredients: []recipe.Ingredient{
			{Name: "Egg", Quantity: 2, Unit: "pieces"},
			{Name: "Butter", Quantity: 10, Unit: "g"},
		},
	}
	dinner := &recipe.Recipe{
		ID: 2,
		Ingredients: []recipe.Ingredient{
			{Name: "egg", Quantity: 3, Unit: "pieces"},
			{Name: "Butter", Quantity: 1, Unit: "tbsp"},
		},
	}

	list := FromRecipes(breakfast, dinner)

	if len(list.Items) != 3 {
		t.Fatalf("Expected 3 consolidated items, got %d: %+v", len(list.Items), list.Items)
	}
	eggs := list.Items[0]
	if eggs.Quantity != 5 {
		t.Errorf("Expected egg quantities summed to 5, got %v", eggs.Quantity)
	}
	if len(eggs.Recipes) != 2 {
		t.Errorf("Expected egg item to reference both recipes, got %v", eggs.Recipes)
	}
	// Butter in grams and butter in tablespoons must stay separate lines.
	if list.Items[1].Unit == list.Items[2].Unit {
		t.Errorf("Expected different units to remain separate, got %+v", list.Items[1:])
	}
}

func TestFromRecipesPreservesFirstSeenOrder(t *testing.T) {
	r := &recipe.Recipe{
		Ingredients: []recipe.Ingredient{
			{Name: "flour", Quantity: 250, Unit: "g"},
			{Name: "sugar", Quantity: 100, Unit: "g"},
			{Name: "flour", Quantity: 50, Unit: "g"},
		},
	}

	list := FromRecipes(r)
	if len(list.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(list.Items))
	}
	if list.Items[0].Name != "flour" || list.Items[1].Name != "sugar" {
		t.Errorf("Expected first-seen order, got %+v", list.Items)
	}
	if list.Items[0].Quantity != 300 {
		t.Errorf("Expected flour summed to 300, got %v", list.Items[0].Quantity)
	}
}

func TestCheckAndRemaining(t *testing.T) {
	r := &recipe.Recipe{
		Ingredients: []recipe.Ingredient{
			{Name: "egg", Quantity: 2, Unit: "pieces"},
			{Name: "bread", Quantity: 1, Unit: "loaf"},
		},
	}
	list := FromRecipes(r)

	if !list.Check("EGG") {
		t.Errorf("Expected case-insensitive check to succeed")
	}
	if list.Check("milk") {
		t.Errorf("Expected check of unknown item to fail")
	}

	remaining := list.Remaining()
	if len(remaining) != 1 || remaining[0].Name != "bread" {
		t.Errorf("Expected only bread remaining, got %+v", remaining)
	}
}

package recipe

import "testing"

func TestStreamingRecipeAppendOnly(t *testing.T) {
	s := NewStreamingRecipe()

	s.AddIngredient(Ingredient{Name: "egg", Quantity: 2, Unit: "pieces"})
	s.SetName("Egg Toast")
	s.AddIngredient(Ingredient{Name: "bread", Quantity: 1, Unit: "slice"})
	s.SetMetadata(Metadata{PrepTimeMinutes: 5, CookTimeMinutes: 5, Servings: 1})
	s.AddIngredient(Ingredient{Name: "butter", Quantity: 10, Unit: "g"})
	s.AddInstruction(1, "Fry egg")
	s.AddInstruction(2, "Toast bread")

	if len(s.Ingredients) != 3 {
		t.Errorf("Expected 3 ingredients, got %d", len(s.Ingredients))
	}
	if len(s.Instructions) != 2 {
		t.Errorf("Expected 2 instructions, got %d", len(s.Instructions))
	}
	if s.Ingredients[0].Name != "egg" || s.Ingredients[2].Name != "butter" {
		t.Errorf("Ingredient arrival order not preserved: %+v", s.Ingredients)
	}
	if s.Instructions[0].Content != "Fry egg" {
		t.Errorf("Instruction arrival order not preserved: %+v", s.Instructions)
	}
}

func TestStreamingRecipeLastWriteWins(t *testing.T) {
	s := NewStreamingRecipe()

	s.SetName("Draft")
	s.SetName("Egg Toast")
	s.SetNutrition(Nutrition{Calories: 100})
	s.SetNutrition(Nutrition{Calories: 180})

	if s.Name != "Egg Toast" {
		t.Errorf("Expected last name write to win, got %q", s.Name)
	}
	if s.Nutrition == nil || s.Nutrition.Calories != 180 {
		t.Errorf("Expected last nutrition write to win, got %+v", s.Nutrition)
	}
}

func TestStreamingRecipeSnapshotIsolation(t *testing.T) {
	s := NewStreamingRecipe()
	s.AddIngredient(Ingredient{Name: "egg", Quantity: 2, Unit: "pieces"})
	s.SetMetadata(Metadata{Servings: 2})

	snap := s.Snapshot()
	s.AddIngredient(Ingredient{Name: "salt", Quantity: 1, Unit: "pinch"})
	s.Metadata.Servings = 4

	if len(snap.Ingredients) != 1 {
		t.Errorf("Snapshot should not see later appends, got %d ingredients", len(snap.Ingredients))
	}
	if snap.Metadata.Servings != 2 {
		t.Errorf("Snapshot metadata should be a copy, got servings %d", snap.Metadata.Servings)
	}
}

func TestFreeze(t *testing.T) {
	s := NewStreamingRecipe()
	s.SetName("Egg Toast")
	s.SetMetadata(Metadata{PrepTimeMinutes: 5, CookTimeMinutes: 5, Servings: 2})
	s.AddIngredient(Ingredient{Name: "egg", Quantity: 2, Unit: "pieces"})
	s.AddInstruction(1, "Fry egg")
	s.SetNutrition(Nutrition{Calories: 180})

	r := s.Freeze(42)

	if r.ID != 42 {
		t.Errorf("Expected recipe ID 42, got %d", r.ID)
	}
	if r.Name != "Egg Toast" {
		t.Errorf("Expected name Egg Toast, got %q", r.Name)
	}
	if r.Metadata.Servings != 2 {
		t.Errorf("Expected servings 2, got %d", r.Metadata.Servings)
	}
	if len(r.Ingredients) != 1 || len(r.Instructions) != 1 {
		t.Errorf("Expected 1 ingredient and 1 instruction, got %d/%d",
			len(r.Ingredients), len(r.Instructions))
	}
	if r.Nutrition == nil || r.Nutrition.Calories != 180 {
		t.Errorf("Expected nutrition to carry over, got %+v", r.Nutrition)
	}
	if r.CreatedAt.IsZero() {
		t.Errorf("Expected CreatedAt to be set")
	}
}

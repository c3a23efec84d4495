package recipe

import "time"

// StreamingRecipe accumulates a partially built recipe while generation
// records arrive. Scalar fields are last-write-wins; the ingredient and
// instruction sequences are append-only and preserve arrival order.
//
// A StreamingRecipe is owned by a single generation session and mutated from
// one goroutine only; external readers must use Snapshot.
type StreamingRecipe struct {
	Name         string
	Description  string
	Metadata     *Metadata
	Ingredients  []Ingredient
	Instructions []Instruction
	Nutrition    *Nutrition
}

// NewStreamingRecipe returns an empty accumulator for one session.
func NewStreamingRecipe() *StreamingRecipe {
	return &StreamingRecipe{}
}

// SetName overwrites the recipe name.
func (s *StreamingRecipe) SetName(name string) {
	s.Name = name
}

// SetDescription overwrites the recipe description.
func (s *StreamingRecipe) SetDescription(desc string) {
	s.Description = desc
}

// SetMetadata overwrites the timing/serving metadata.
func (s *StreamingRecipe) SetMetadata(m Metadata) {
	s.Metadata = &m
}

// SetNutrition overwrites the nutrition summary.
func (s *StreamingRecipe) SetNutrition(n Nutrition) {
	s.Nutrition = &n
}

// AddIngredient appends an ingredient. Nothing ever removes or reorders
// previously appended entries.
func (s *StreamingRecipe) AddIngredient(ing Ingredient) {
	s.Ingredients = append(s.Ingredients, ing)
}

// AddInstruction appends an instruction in arrival order. The reported step
// number is stored as received; it is not validated against position.
func (s *StreamingRecipe) AddInstruction(step int, content string) {
	s.Instructions = append(s.Instructions, Instruction{Step: step, Content: content})
}

// Snapshot returns a deep copy safe for concurrent readers such as a
// progressive renderer.
func (s *StreamingRecipe) Snapshot() StreamingRecipe {
	out := StreamingRecipe{
		Name:        s.Name,
		Description: s.Description,
	}
	if s.Metadata != nil {
		m := *s.Metadata
		out.Metadata = &m
	}
	if s.Nutrition != nil {
		n := *s.Nutrition
		out.Nutrition = &n
	}
	if len(s.Ingredients) > 0 {
		out.Ingredients = make([]Ingredient, len(s.Ingredients))
		copy(out.Ingredients, s.Ingredients)
	}
	if len(s.Instructions) > 0 {
		out.Instructions = make([]Instruction, len(s.Instructions))
		copy(out.Instructions, s.Instructions)
	}
	return out
}

// Freeze converts the accumulated state into a finished Recipe with the
// identifier carried by the terminal record.
func (s *StreamingRecipe) Freeze(id int64) *Recipe {
	snap := s.Snapshot()
	r := &Recipe{
		ID:           id,
		Name:         snap.Name,
		Description:  snap.Description,
		Ingredients:  snap.Ingredients,
		Instructions: snap.Instructions,
		Nutrition:    snap.Nutrition,
		CreatedAt:    time.Now(),
	}
	if snap.Metadata != nil {
		r.Metadata = *snap.Metadata
	}
	return r
}

package grocery

import (
	"strings"

	"github.com/mealforge/mealforge/recipe"
)

// Item is one consolidated grocery line. Recipes lists which recipe IDs
// contributed to it.
type Item struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Recipes  []int64 `json:"recipes,omitempty"`
	Checked  bool    `json:"checked,omitempty"`
}

// List is a consolidated grocery list derived from one or more recipes.
type List struct {
	Items []Item `json:"items"`
}

// itemKey merges ingredient lines that name the same thing in the same unit.
type itemKey struct {
	name string
	unit string
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FromRecipes builds a grocery list from the given recipes. Ingredients with
// the same normalized name and unit are merged with their quantities summed;
// first-seen order is preserved.
func FromRecipes(recipes ...*recipe.Recipe) *List {
	list := &List{}
	index := make(map[itemKey]int)

	for _, r := range recipes {
		if r == nil {
			continue
		}
		for _, ing := range r.Ingredients {
			key := itemKey{name: normalize(ing.Name), unit: normalize(ing.Unit)}
			if i, ok := index[key]; ok {
				list.Items[i].Quantity += ing.Quantity
				list.Items[i].Recipes = appendRecipeID(list.Items[i].Recipes, r.ID)
				continue
			}
			index[key] = len(list.Items)
			list.Items = append(list.Items, Item{
				Name:     ing.Name,
				Quantity: ing.Quantity,
				Unit:     ing.Unit,
				Recipes:  appendRecipeID(nil, r.ID),
			})
		}
	}
	return list
}

func appendRecipeID(ids []int64, id int64) []int64 {
	if id == 0 {
		return ids
	}
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// Check marks the named item as acquired. It reports whether the item was
// found.
func (l *List) Check(name string) bool {
	target := normalize(name)
	for i := range l.Items {
		if normalize(l.Items[i].Name) == target {
			l.Items[i].Checked = true
			return true
		}
	}
	return false
}

// Remaining returns the unchecked items.
func (l *List) Remaining() []Item {
	var out []Item
	for _, item := range l.Items {
		if !item.Checked {
			out = append(out, item)
		}
	}
	return out
}

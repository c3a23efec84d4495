package genstream

import (
	"encoding/json"
	"strings"

	"github.com/mealforge/mealforge/pkg/logging"
	"github.com/mealforge/mealforge/recipe"
)

// Callbacks is the optional-capability surface a caller registers for one
// generation session. Every field may be nil; dispatch skips unregistered
// slots without error. Exactly one of OnComplete/OnError fires per session.
type Callbacks struct {
	OnStatus            func(message string)
	OnToolStarted       func(ev ToolEvent)
	OnToolCompleted     func(tool string)
	OnRecipeStart       func()
	OnRecipeName        func(name string)
	OnRecipeDescription func(description string)
	OnRecipeMetadata    func(meta recipe.Metadata)
	OnIngredientsStart  func()
	OnIngredient        func(ing recipe.Ingredient)
	OnInstructionsStart func()
	OnInstruction       func(step int, content string)
	OnNutrition         func(n recipe.Nutrition)
	OnComplete          func(ev CompleteEvent)
	OnError             func(message string)
}

// Dispatch converts one raw line into at most one callback invocation.
//
// Lines without the record prefix are protocol filler and ignored. Malformed
// JSON and unrecognized tags are logged and skipped; a single bad record
// never aborts the stream. Dispatch holds no state across calls.
func Dispatch(line string, cb *Callbacks) {
	if cb == nil {
		return
	}
	payload, ok := strings.CutPrefix(line, RecordPrefix)
	if !ok {
		return
	}

	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		logging.WithComponent("genstream").Warn("skipping malformed record", "error", err)
		return
	}

	switch env.Type {
	case MessageTypeStatus:
		if cb.OnStatus != nil {
			cb.OnStatus(env.Message)
		}
	case MessageTypeToolStarted:
		if cb.OnToolStarted != nil {
			cb.OnToolStarted(ToolEvent{
				Name:        env.Tool,
				Icon:        env.Icon,
				Title:       env.Title,
				Description: env.Description,
			})
		}
	case MessageTypeToolCompleted:
		if cb.OnToolCompleted != nil {
			cb.OnToolCompleted(env.Tool)
		}
	case MessageTypeRecipeStart:
		if cb.OnRecipeStart != nil {
			cb.OnRecipeStart()
		}
	case MessageTypeRecipeName:
		if cb.OnRecipeName != nil {
			cb.OnRecipeName(env.contentString())
		}
	case MessageTypeRecipeDescription:
		if cb.OnRecipeDescription != nil {
			cb.OnRecipeDescription(env.contentString())
		}
	case MessageTypeRecipeMetadata:
		if cb.OnRecipeMetadata != nil {
			var meta recipe.Metadata
			if env.contentInto(&meta) {
				cb.OnRecipeMetadata(meta)
			}
		}
	case MessageTypeIngredientsStart:
		if cb.OnIngredientsStart != nil {
			cb.OnIngredientsStart()
		}
	case MessageTypeIngredient:
		if cb.OnIngredient != nil {
			var ing recipe.Ingredient
			if env.contentInto(&ing) {
				cb.OnIngredient(ing)
			}
		}
	case MessageTypeInstructionsStart:
		if cb.OnInstructionsStart != nil {
			cb.OnInstructionsStart()
		}
	case MessageTypeInstruction:
		if cb.OnInstruction != nil {
			cb.OnInstruction(env.Step, env.contentString())
		}
	case MessageTypeNutrition:
		if cb.OnNutrition != nil {
			var n recipe.Nutrition
			if env.contentInto(&n) {
				cb.OnNutrition(n)
			}
		}
	case MessageTypeComplete:
		if cb.OnComplete != nil {
			ev := CompleteEvent{RecipeID: env.RecipeID, Message: env.Message}
			if ev.Message == "" {
				ev.Message = "Complete"
			}
			if env.Length != nil {
				ev.Length = *env.Length
			}
			cb.OnComplete(ev)
		}
	case MessageTypeError:
		if cb.OnError != nil {
			msg := env.Message
			if msg == "" {
				msg = "Unknown error"
			}
			cb.OnError(msg)
		}
	default:
		logging.WithComponent("genstream").Debug("ignoring unrecognized record type", "type", string(env.Type))
	}
}

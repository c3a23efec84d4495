package genstream

import (
	"context"
	"sync"
	"time"

	mferrors "github.com/mealforge/mealforge/errors"
	"github.com/mealforge/mealforge/pkg/logging"
	"github.com/mealforge/mealforge/recipe"
)

// session is the per-call arena of one generation lifecycle. It owns the
// assembly state, the watchdog, and the terminal transition; once retired or
// terminal it drops every further record and timer fire on the floor.
type session struct {
	id    uint64
	user  *Callbacks
	table *Callbacks

	mu       sync.Mutex
	state    State
	retired  bool
	assembly *recipe.StreamingRecipe
	outcome  recipe.Outcome
	result   *recipe.Recipe
	watchdog *time.Timer
	cancel   context.CancelFunc
}

func newSession(id uint64, cb *Callbacks) *session {
	if cb == nil {
		cb = &Callbacks{}
	}
	s := &session{
		id:       id,
		user:     cb,
		state:    StateSubmitted,
		assembly: recipe.NewStreamingRecipe(),
	}
	s.table = &Callbacks{
		OnStatus:            s.onStatus,
		OnToolStarted:       s.onToolStarted,
		OnToolCompleted:     s.onToolCompleted,
		OnRecipeStart:       s.onRecipeStart,
		OnRecipeName:        s.onRecipeName,
		OnRecipeDescription: s.onRecipeDescription,
		OnRecipeMetadata:    s.onRecipeMetadata,
		OnIngredientsStart:  s.onIngredientsStart,
		OnIngredient:        s.onIngredient,
		OnInstructionsStart: s.onInstructionsStart,
		OnInstruction:       s.onInstruction,
		OnNutrition:         s.onNutrition,
		OnComplete:          s.onComplete,
		OnError:             s.onError,
	}
	return s
}

// hooks returns the internal dispatch table wired to this session.
func (s *session) hooks() *Callbacks { return s.table }

// arm starts the watchdog for the whole session. The duration is fixed;
// progress records do not reset it. Firing cancels the stream context so a
// blocked read unwinds.
func (s *session) arm(d time.Duration, cancel context.CancelFunc) {
	s.mu.Lock()
	s.cancel = cancel
	s.watchdog = time.AfterFunc(d, s.onTimeout)
	s.mu.Unlock()
}

// liveLocked reports whether this session may still act: not yet terminal
// and not superseded by a newer submission.
func (s *session) liveLocked() bool {
	return !s.retired && !s.state.Terminal()
}

func (s *session) retire() {
	s.mu.Lock()
	s.retired = true
	if s.watchdog != nil {
		s.watchdog.Stop()
	}
	s.mu.Unlock()
}

// disarmLocked stops the watchdog; stopping a fired or never-armed timer is
// a no-op.
func (s *session) disarmLocked() {
	if s.watchdog != nil {
		s.watchdog.Stop()
	}
}

func (s *session) terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retired || s.state.Terminal()
}

func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) Outcome() recipe.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

func (s *session) Result() *recipe.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *session) Snapshot() recipe.StreamingRecipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assembly.Snapshot()
}

// fail records the single terminal failure of the session. In-progress
// assembly state is discarded, never surfaced as a partial success. Calling
// fail after a terminal state is a no-op, so stray errors lose to the first
// terminal.
func (s *session) fail(msg string) {
	s.terminate(StateFailed, recipe.Outcome{Err: msg}, func() {
		if s.user.OnError != nil {
			s.user.OnError(msg)
		}
	})
}

// onTimeout is the watchdog firing: the producer went silent. A complete
// record arriving after this point is ignored.
func (s *session) onTimeout() {
	msg := mferrors.ErrGenerationTimeout.Error()
	s.terminate(StateTimedOut, recipe.Outcome{Err: msg, Timeout: true}, func() {
		if s.user.OnError != nil {
			s.user.OnError(msg)
		}
	})
}

// terminate performs the exactly-once terminal transition and then notifies
// the caller. First terminal wins; later attempts are dropped.
func (s *session) terminate(state State, out recipe.Outcome, notify func()) {
	s.mu.Lock()
	if !s.liveLocked() {
		s.mu.Unlock()
		logging.WithComponent("genstream").Debug("dropping late terminal", "session", s.id, "state", state)
		return
	}
	s.state = state
	s.outcome = out
	s.disarmLocked()
	s.assembly = recipe.NewStreamingRecipe()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	notify()
}

func (s *session) onStatus(msg string) {
	s.mu.Lock()
	if !s.liveLocked() {
		s.mu.Unlock()
		return
	}
	if s.state == StateSubmitted {
		s.state = StateWaiting
	}
	s.mu.Unlock()
	if s.user.OnStatus != nil {
		s.user.OnStatus(msg)
	}
}

// structural runs one assembly mutation under the session lock, moving the
// session out of the waiting state, then forwards to the caller.
func (s *session) structural(apply func(), forward func()) {
	s.mu.Lock()
	if !s.liveLocked() {
		s.mu.Unlock()
		return
	}
	s.state = StateAssembling
	if apply != nil {
		apply()
	}
	s.mu.Unlock()
	if forward != nil {
		forward()
	}
}

func (s *session) onToolStarted(ev ToolEvent) {
	if s.terminated() {
		return
	}
	if s.user.OnToolStarted != nil {
		s.user.OnToolStarted(ev)
	}
}

func (s *session) onToolCompleted(tool string) {
	if s.terminated() {
		return
	}
	if s.user.OnToolCompleted != nil {
		s.user.OnToolCompleted(tool)
	}
}

func (s *session) onRecipeStart() {
	s.structural(nil, func() {
		if s.user.OnRecipeStart != nil {
			s.user.OnRecipeStart()
		}
	})
}

func (s *session) onRecipeName(name string) {
	s.structural(func() { s.assembly.SetName(name) }, func() {
		if s.user.OnRecipeName != nil {
			s.user.OnRecipeName(name)
		}
	})
}

func (s *session) onRecipeDescription(desc string) {
	s.structural(func() { s.assembly.SetDescription(desc) }, func() {
		if s.user.OnRecipeDescription != nil {
			s.user.OnRecipeDescription(desc)
		}
	})
}

func (s *session) onRecipeMetadata(meta recipe.Metadata) {
	s.structural(func() { s.assembly.SetMetadata(meta) }, func() {
		if s.user.OnRecipeMetadata != nil {
			s.user.OnRecipeMetadata(meta)
		}
	})
}

func (s *session) onIngredientsStart() {
	s.structural(nil, func() {
		if s.user.OnIngredientsStart != nil {
			s.user.OnIngredientsStart()
		}
	})
}

func (s *session) onIngredient(ing recipe.Ingredient) {
	s.structural(func() { s.assembly.AddIngredient(ing) }, func() {
		if s.user.OnIngredient != nil {
			s.user.OnIngredient(ing)
		}
	})
}

func (s *session) onInstructionsStart() {
	s.structural(nil, func() {
		if s.user.OnInstructionsStart != nil {
			s.user.OnInstructionsStart()
		}
	})
}

func (s *session) onInstruction(step int, content string) {
	s.structural(func() { s.assembly.AddInstruction(step, content) }, func() {
		if s.user.OnInstruction != nil {
			s.user.OnInstruction(step, content)
		}
	})
}

func (s *session) onNutrition(n recipe.Nutrition) {
	s.structural(func() { s.assembly.SetNutrition(n) }, func() {
		if s.user.OnNutrition != nil {
			s.user.OnNutrition(n)
		}
	})
}

func (s *session) onComplete(ev CompleteEvent) {
	s.mu.Lock()
	if !s.liveLocked() {
		s.mu.Unlock()
		logging.WithComponent("genstream").Debug("dropping late complete", "session", s.id, "recipe_id", ev.RecipeID)
		return
	}
	s.state = StateSucceeded
	s.outcome = recipe.Outcome{RecipeID: ev.RecipeID, Message: ev.Message}
	s.result = s.assembly.Freeze(ev.RecipeID)
	s.disarmLocked()
	s.mu.Unlock()
	if s.user.OnComplete != nil {
		s.user.OnComplete(ev)
	}
}

func (s *session) onError(msg string) {
	s.fail(msg)
}

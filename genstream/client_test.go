package genstream

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mealforge/mealforge/recipe"
)

// fakeTransport serves a canned stream, or fails to open.
type fakeTransport struct {
	stream  string
	openErr error
	opened  int
}

func (f *fakeTransport) Open(ctx context.Context, req *recipe.GenerationRequest, token string) (io.ReadCloser, error) {
	f.opened++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.stream)), nil
}

// slowReader delivers its payload only after a delay, ignoring cancellation.
type slowReader struct {
	delay   time.Duration
	payload string
	done    bool
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	time.Sleep(r.delay)
	r.done = true
	return copy(p, r.payload), nil
}

type slowTransport struct {
	delay   time.Duration
	payload string
}

func (t *slowTransport) Open(ctx context.Context, req *recipe.GenerationRequest, token string) (io.ReadCloser, error) {
	return io.NopCloser(&slowReader{delay: t.delay, payload: t.payload}), nil
}

const happyStream = `data: {"type":"status","message":"Generating your recipe..."}
data: {"type":"recipe_start"}
data: {"type":"recipe_name","content":"Egg Toast"}
data: {"type":"ingredients_start"}
data: {"type":"ingredient","content":{"name":"egg","quantity":2,"unit":"pieces"}}
data: {"type":"instructions_start"}
data: {"type":"instruction","step":1,"content":"Fry egg"}
data: {"type":"nutrition","content":{"calories":180}}
data: {"type":"complete","recipe_id":42}
`

func newTestClient(t *testing.T, tr Transport, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Transport: tr,
		Token:     StaticToken("tok-123"),
		Timeout:   timeout,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestGenerateEndToEnd(t *testing.T) {
	c := newTestClient(t, &fakeTransport{stream: happyStream}, time.Minute)

	var (
		statuses     []string
		names        []string
		ingredients  []recipe.Ingredient
		instructions []string
		nutrition    *recipe.Nutrition
		complete     *CompleteEvent
		errMsgs      []string
	)
	c.Generate(context.Background(), &recipe.GenerationRequest{
		Servings:         2,
		IngredientsToUse: []string{"egg"},
	}, &Callbacks{
		OnStatus:      func(msg string) { statuses = append(statuses, msg) },
		OnRecipeName:  func(name string) { names = append(names, name) },
		OnIngredient:  func(ing recipe.Ingredient) { ingredients = append(ingredients, ing) },
		OnInstruction: func(_ int, content string) { instructions = append(instructions, content) },
		OnNutrition:   func(n recipe.Nutrition) { nutrition = &n },
		OnComplete:    func(ev CompleteEvent) { complete = &ev },
		OnError:       func(msg string) { errMsgs = append(errMsgs, msg) },
	})

	if len(errMsgs) != 0 {
		t.Fatalf("Unexpected errors: %v", errMsgs)
	}
	if complete == nil || complete.RecipeID != 42 {
		t.Fatalf("Expected completion with recipe id 42, got %+v", complete)
	}
	if len(statuses) != 1 || len(names) != 1 || names[0] != "Egg Toast" {
		t.Errorf("Unexpected progress callbacks: statuses=%v names=%v", statuses, names)
	}
	if len(ingredients) != 1 || ingredients[0].Name != "egg" {
		t.Errorf("Expected one egg ingredient, got %v", ingredients)
	}
	if len(instructions) != 1 || instructions[0] != "Fry egg" {
		t.Errorf("Expected one instruction, got %v", instructions)
	}
	if nutrition == nil || nutrition.Calories != 180 {
		t.Errorf("Expected nutrition calories 180, got %+v", nutrition)
	}

	if c.State() != StateSucceeded {
		t.Errorf("Expected state succeeded, got %s", c.State())
	}
	result := c.Result()
	if result == nil || result.ID != 42 || result.Name != "Egg Toast" {
		t.Errorf("Unexpected frozen recipe: %+v", result)
	}
	if len(result.Ingredients) != 1 || len(result.Instructions) != 1 || result.Nutrition == nil {
		t.Errorf("Frozen recipe missing assembled parts: %+v", result)
	}
}

func TestGenerateMissingCredential(t *testing.T) {
	tr := &fakeTransport{stream: happyStream}
	c, err := NewClient(Config{
		Transport: tr,
		Token:     StaticToken(""),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	var errMsg string
	c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
		OnError:    func(msg string) { errMsg = msg },
		OnComplete: func(CompleteEvent) { t.Errorf("Success must not fire without a credential") },
	})

	if errMsg == "" {
		t.Fatalf("Expected error callback for missing credential")
	}
	if tr.opened != 0 {
		t.Errorf("Expected no network activity without a credential, got %d opens", tr.opened)
	}
	if c.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", c.State())
	}
}

func TestGenerateTransportOpenError(t *testing.T) {
	c := newTestClient(t, &fakeTransport{openErr: io.ErrUnexpectedEOF}, time.Minute)

	var errMsg string
	c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
		OnError: func(msg string) { errMsg = msg },
	})
	if errMsg == "" {
		t.Fatalf("Expected error callback for transport failure")
	}
}

func TestGenerateErrorRecordDiscardsAssembly(t *testing.T) {
	stream := `data: {"type":"status","message":"working"}
data: {"type":"recipe_start"}
data: {"type":"recipe_name","content":"Egg Toast"}
data: {"type":"ingredient","content":{"name":"egg","quantity":2,"unit":"pieces"}}
data: {"type":"error","message":"model refused"}
`
	c := newTestClient(t, &fakeTransport{stream: stream}, time.Minute)

	var errMsg string
	c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
		OnError:    func(msg string) { errMsg = msg },
		OnComplete: func(CompleteEvent) { t.Errorf("Success must not fire after a protocol error") },
	})

	if errMsg != "model refused" {
		t.Errorf("Expected verbatim protocol error, got %q", errMsg)
	}
	snap := c.Snapshot()
	if snap.Name != "" || len(snap.Ingredients) != 0 {
		t.Errorf("Expected assembly state to be discarded on error, got %+v", snap)
	}
	if c.Result() != nil {
		t.Errorf("Expected no frozen recipe after failure")
	}
}

func TestGenerateFirstTerminalWins(t *testing.T) {
	stream := `data: {"type":"complete","recipe_id":42}
data: {"type":"error","message":"stray"}
data: {"type":"complete","recipe_id":99}
`
	c := newTestClient(t, &fakeTransport{stream: stream}, time.Minute)

	var completes []CompleteEvent
	var errMsgs []string
	c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
		OnComplete: func(ev CompleteEvent) { completes = append(completes, ev) },
		OnError:    func(msg string) { errMsgs = append(errMsgs, msg) },
	})

	if len(completes) != 1 || completes[0].RecipeID != 42 {
		t.Errorf("Expected exactly one completion with id 42, got %v", completes)
	}
	if len(errMsgs) != 0 {
		t.Errorf("Stray error after terminal must be ignored, got %v", errMsgs)
	}
}

func TestGenerateStreamEndsWithoutTerminal(t *testing.T) {
	stream := `data: {"type":"status","message":"working"}
`
	c := newTestClient(t, &fakeTransport{stream: stream}, time.Minute)

	var errMsg string
	c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
		OnError: func(msg string) { errMsg = msg },
	})
	if errMsg == "" {
		t.Fatalf("Expected error callback when the stream ends without a terminal record")
	}
	if strings.Contains(errMsg, "timed out") {
		t.Errorf("EOF failure must be distinguishable from a timeout, got %q", errMsg)
	}
}

func TestGenerateWatchdogTimeout(t *testing.T) {
	lateComplete := `data: {"type":"complete","recipe_id":42}` + "\n"
	c := newTestClient(t, &slowTransport{delay: 150 * time.Millisecond, payload: lateComplete}, 30*time.Millisecond)

	var mu sync.Mutex
	var errMsgs []string
	completed := false
	c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
		OnError: func(msg string) {
			mu.Lock()
			errMsgs = append(errMsgs, msg)
			mu.Unlock()
		},
		OnComplete: func(CompleteEvent) {
			mu.Lock()
			completed = true
			mu.Unlock()
		},
	})

	mu.Lock()
	defer mu.Unlock()
	if len(errMsgs) != 1 {
		t.Fatalf("Expected exactly one timeout error, got %v", errMsgs)
	}
	if !strings.Contains(errMsgs[0], "timed out") {
		t.Errorf("Expected the timeout-specific message, got %q", errMsgs[0])
	}
	if completed {
		t.Errorf("A complete record arriving after the timeout must be ignored")
	}
	if c.State() != StateTimedOut {
		t.Errorf("Expected state timed_out, got %s", c.State())
	}
}

func TestGenerateWaitingThenAssembling(t *testing.T) {
	c := newTestClient(t, &fakeTransport{stream: happyStream}, time.Minute)

	var stateAtStatus, stateAtStart State
	c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
		OnStatus:      func(string) { stateAtStatus = c.State() },
		OnRecipeStart: func() { stateAtStart = c.State() },
	})

	if stateAtStatus != StateWaiting {
		t.Errorf("Expected waiting state on status, got %s", stateAtStatus)
	}
	if stateAtStart != StateAssembling {
		t.Errorf("Expected assembling state on recipe_start, got %s", stateAtStart)
	}
}

func TestGenerateResubmissionResets(t *testing.T) {
	failing := `data: {"type":"error","message":"first attempt failed"}
`
	tr := &fakeTransport{stream: failing}
	c := newTestClient(t, tr, time.Minute)

	req := &recipe.GenerationRequest{Servings: 2}
	var errMsg string
	c.Generate(context.Background(), req, &Callbacks{
		OnError: func(msg string) { errMsg = msg },
	})
	if errMsg == "" {
		t.Fatalf("Expected first session to fail")
	}

	// Retry with the same request value must start a fresh session.
	tr.stream = happyStream
	var complete *CompleteEvent
	c.Generate(context.Background(), req, &Callbacks{
		OnComplete: func(ev CompleteEvent) { complete = &ev },
		OnError:    func(msg string) { t.Errorf("Unexpected error on retry: %s", msg) },
	})

	if complete == nil || complete.RecipeID != 42 {
		t.Fatalf("Expected retry to succeed with id 42, got %+v", complete)
	}
	if c.State() != StateSucceeded {
		t.Errorf("Expected state succeeded after retry, got %s", c.State())
	}
	result := c.Result()
	if result == nil || len(result.Ingredients) != 1 {
		t.Errorf("Expected fresh assembly state on retry, got %+v", result)
	}
}

// switchTransport swaps the underlying transport between submissions.
type switchTransport struct {
	mu sync.Mutex
	tr Transport
}

func (s *switchTransport) set(tr Transport) {
	s.mu.Lock()
	s.tr = tr
	s.mu.Unlock()
}

func (s *switchTransport) Open(ctx context.Context, req *recipe.GenerationRequest, token string) (io.ReadCloser, error) {
	s.mu.Lock()
	tr := s.tr
	s.mu.Unlock()
	return tr.Open(ctx, req, token)
}

func TestGenerateSupersededSessionIsInert(t *testing.T) {
	sw := &switchTransport{tr: &slowTransport{delay: 100 * time.Millisecond, payload: `data: {"type":"complete","recipe_id":1}` + "\n"}}
	c := newTestClient(t, sw, time.Minute)

	var mu sync.Mutex
	firstFired := false
	done := make(chan struct{})
	go func() {
		c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
			OnComplete: func(CompleteEvent) { mu.Lock(); firstFired = true; mu.Unlock() },
			OnError:    func(string) { mu.Lock(); firstFired = true; mu.Unlock() },
		})
		close(done)
	}()

	// Let the first session get in flight, then supersede it.
	time.Sleep(20 * time.Millisecond)
	sw.set(&fakeTransport{stream: happyStream})
	var complete *CompleteEvent
	c.Generate(context.Background(), &recipe.GenerationRequest{}, &Callbacks{
		OnComplete: func(ev CompleteEvent) { complete = &ev },
	})

	<-done
	mu.Lock()
	defer mu.Unlock()
	if firstFired {
		t.Errorf("Superseded session must not deliver callbacks")
	}
	if complete == nil || complete.RecipeID != 42 {
		t.Errorf("Expected the new session to complete normally, got %+v", complete)
	}
}

package genstream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mealforge/mealforge/config"
	mferrors "github.com/mealforge/mealforge/errors"
	"github.com/mealforge/mealforge/pkg/logging"
	"github.com/mealforge/mealforge/pkg/telemetry"
	"github.com/mealforge/mealforge/recipe"
)

// State represents where a generation session is in its lifecycle
type State string

const (
	StateIdle       State = "idle"
	StateSubmitted  State = "submitted"
	StateWaiting    State = "waiting"
	StateAssembling State = "assembling"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
)

// Terminal reports whether the state ends a session.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateTimedOut
}

// DefaultTimeout is the watchdog bound for a whole session. It is fixed at
// submit time and is not reset by intermediate progress records.
const DefaultTimeout = 90 * time.Second

// Config holds generation client configuration
type Config struct {
	Transport Transport
	Token     TokenFunc
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Validate checks the configuration for required fields
func (c *Config) Validate() error {
	v := config.NewValidator()
	if c.Transport == nil {
		v.RequireNonEmpty("transport", "")
	}
	if c.Token == nil {
		v.RequireNonEmpty("token", "")
	}
	if c.Timeout < 0 {
		v.RequirePositive("timeout_seconds", int(c.Timeout/time.Second))
	}
	return v.Error()
}

// Client runs generation sessions against a Transport. Only one session is
// active at a time; a new Generate call fully supersedes the previous
// session, whose watchdog and late callbacks become inert.
type Client struct {
	transport Transport
	token     TokenFunc
	timeout   time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer

	mu      sync.Mutex
	gen     uint64
	current *session
}

// NewClient creates a generation client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.WithComponent("genstream")
	}
	return &Client{
		transport: cfg.Transport,
		token:     cfg.Token,
		timeout:   cfg.Timeout,
		logger:    logger,
		tracer:    otel.Tracer("github.com/mealforge/mealforge/genstream"),
	}, nil
}

// Generate runs one generation session to its terminal state. It blocks
// until the session succeeds, fails, or times out; all results are delivered
// through the callbacks. Exactly one of OnComplete or OnError fires.
func (c *Client) Generate(ctx context.Context, req *recipe.GenerationRequest, cb *Callbacks) {
	ctx, span := c.tracer.Start(ctx, "genstream.Generate")
	s := c.supersede(cb)
	defer func() {
		out := s.Outcome()
		span.SetAttributes(
			attribute.Bool("generation.success", out.Success()),
			attribute.Bool("generation.timeout", out.Timeout),
		)
		telemetry.End(span, nil)
	}()

	token, err := c.token(ctx)
	if err != nil || token == "" {
		c.logger.Warn("generation refused, no credential", "error", err)
		s.fail(mferrors.ErrNoCredential.Error())
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.arm(c.timeout, cancel)

	body, err := c.transport.Open(ctx, req, token)
	if err != nil {
		c.logger.Warn("failed to open generation stream", "error", err)
		s.fail(err.Error())
		return
	}
	defer body.Close()

	for line, err := range Records(body) {
		if s.terminated() {
			return
		}
		if err != nil {
			s.fail(err.Error())
			return
		}
		Dispatch(line, s.hooks())
	}
	if !s.terminated() {
		s.fail(mferrors.ErrStreamClosed.Error())
	}
}

// State returns the lifecycle state of the most recent session, or StateIdle
// before the first submission.
func (c *Client) State() State {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil {
		return StateIdle
	}
	return s.State()
}

// Snapshot returns a copy of the current session's assembly state for
// progressive rendering. The zero value is returned before any submission.
func (c *Client) Snapshot() recipe.StreamingRecipe {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil {
		return recipe.StreamingRecipe{}
	}
	return s.Snapshot()
}

// Result returns the frozen recipe of the most recent session, or nil if it
// has not (yet) succeeded.
func (c *Client) Result() *recipe.Recipe {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Result()
}

// supersede starts a fresh session and retires the previous one.
func (c *Client) supersede(cb *Callbacks) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.current != nil {
		c.current.retire()
	}
	c.current = newSession(c.gen, cb)
	return c.current
}

package middleware

import (
	"context"
	"io"

	"github.com/mealforge/mealforge/genstream"
	"github.com/mealforge/mealforge/recipe"
)

// Context represents the middleware execution context for one generation
// request on its way to the transport.
type Context struct {
	// Request is the generation request. Middlewares may rewrite it.
	Request *recipe.GenerationRequest

	// Token is the bearer credential passed to the transport.
	Token string

	// Stream is the opened record stream, set by the final handler.
	Stream io.ReadCloser

	// Metadata for passing data between middlewares
	Metadata map[string]interface{}

	// Internal state
	context context.Context
}

// NewContext creates a new middleware context
func NewContext(ctx context.Context) *Context {
	return &Context{
		Metadata: make(map[string]interface{}),
		context:  ctx,
	}
}

// Context returns the underlying context.Context
func (c *Context) Context() context.Context {
	return c.context
}

// Middleware defines the interface for middleware components
// Middlewares can intercept and modify requests before the stream opens
type Middleware interface {
	// Name returns the name of the middleware for logging and debugging
	Name() string

	// Execute runs the middleware logic
	// It receives the current context and a next handler to continue the chain
	// Returning error will stop the middleware chain
	Execute(ctx *Context, next Handler) error
}

// Handler is the function called to pass control to the next middleware
type Handler func(*Context) error

// Chain represents a sequence of middleware to be executed
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Add appends a middleware to the chain
func (c *Chain) Add(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Execute runs all middlewares in the chain
func (c *Chain) Execute(ctx *Context, finalHandler Handler) error {
	return c.executeMiddleware(ctx, 0, finalHandler)
}

func (c *Chain) executeMiddleware(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		return finalHandler(ctx)
	}
	nextHandler := func(ctx *Context) error {
		return c.executeMiddleware(ctx, index+1, finalHandler)
	}
	return c.middlewares[index].Execute(ctx, nextHandler)
}

// Transport runs a middleware chain in front of an inner stream transport.
// It satisfies genstream.Transport, so a wrapped transport drops into the
// generation client unchanged.
type Transport struct {
	inner genstream.Transport
	chain *Chain
}

// Wrap decorates a transport with the given middlewares. They run in order
// before the inner transport opens the stream.
func Wrap(inner genstream.Transport, middlewares ...Middleware) *Transport {
	return &Transport{
		inner: inner,
		chain: NewChain(middlewares...),
	}
}

// Open runs the chain and, if every middleware passes, opens the inner
// stream. A middleware error aborts the request before anything is sent.
func (t *Transport) Open(ctx context.Context, req *recipe.GenerationRequest, token string) (io.ReadCloser, error) {
	mctx := NewContext(ctx)
	mctx.Request = req
	mctx.Token = token

	err := t.chain.Execute(mctx, func(mc *Context) error {
		stream, err := t.inner.Open(mc.Context(), mc.Request, mc.Token)
		if err != nil {
			return err
		}
		mc.Stream = stream
		return nil
	})
	if err != nil {
		if mctx.Stream != nil {
			mctx.Stream.Close()
		}
		return nil, err
	}
	return mctx.Stream, nil
}

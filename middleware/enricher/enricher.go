package enricher

import (
	"github.com/mealforge/mealforge/middleware"
	"github.com/mealforge/mealforge/recipe"
)

// EnricherFunc rewrites a request before it is sent
type EnricherFunc func(*recipe.GenerationRequest) error

// RequestEnricher fills in defaults or account-level preferences on a
// generation request, for example a household's standing dietary
// restrictions.
type RequestEnricher struct {
	enricher EnricherFunc
}

// NewRequestEnricher creates a request enriching middleware
func NewRequestEnricher(enricher EnricherFunc) *RequestEnricher {
	return &RequestEnricher{enricher: enricher}
}

// Name returns the middleware name
func (m *RequestEnricher) Name() string {
	return "RequestEnricher"
}

// Execute enriches the request
func (m *RequestEnricher) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if m.enricher != nil {
		if err := m.enricher(ctx.Request); err != nil {
			return err
		}
	}
	return next(ctx)
}

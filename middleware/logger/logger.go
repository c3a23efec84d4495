package logger

import (
	"log/slog"
	"time"

	"github.com/mealforge/mealforge/middleware"
	"github.com/mealforge/mealforge/pkg/logging"
)

// RequestLogger logs each generation request before it reaches the
// transport, and the outcome of opening the stream.
type RequestLogger struct {
	logger *slog.Logger
}

// NewRequestLogger creates a request logging middleware
func NewRequestLogger(l *slog.Logger) *RequestLogger {
	if l == nil {
		l = logging.WithComponent("middleware.logger")
	}
	return &RequestLogger{logger: l}
}

// Name returns the middleware name
func (m *RequestLogger) Name() string {
	return "RequestLogger"
}

// Execute logs the request and how long the stream took to open
func (m *RequestLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	req := ctx.Request
	m.logger.Info("opening generation stream",
		"meal_type", req.MealType,
		"cuisine", req.Cuisine,
		"servings", req.Servings,
		"web_search", req.AllowWebSearch,
	)

	start := time.Now()
	err := next(ctx)
	if err != nil {
		m.logger.Warn("generation stream rejected", "error", err, "elapsed", time.Since(start))
		return err
	}
	m.logger.Debug("generation stream open", "elapsed", time.Since(start))
	return nil
}

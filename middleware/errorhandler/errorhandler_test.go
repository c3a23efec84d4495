package errorhandler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mealforge/mealforge/middleware"
)

func TestErrorHandlerWrapsDownstreamError(t *testing.T) {
	h := NewErrorHandler(func(err error) error {
		return fmt.Errorf("generation pipeline: %w", err)
	})

	boom := errors.New("connection reset")
	err := h.Execute(middleware.NewContext(context.Background()), func(*middleware.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Wrapped error lost the cause: %v", err)
	}
	if err.Error() != "generation pipeline: connection reset" {
		t.Errorf("Unexpected wrapped message: %v", err)
	}
}

func TestErrorHandlerPassesSuccessThrough(t *testing.T) {
	called := false
	h := NewErrorHandler(func(err error) error {
		called = true
		return err
	})

	err := h.Execute(middleware.NewContext(context.Background()), func(*middleware.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if called {
		t.Error("Handler must not run on success")
	}
}

func TestErrorHandlerCanSuppress(t *testing.T) {
	h := NewErrorHandler(func(error) error { return nil })

	err := h.Execute(middleware.NewContext(context.Background()), func(*middleware.Context) error {
		return errors.New("transient")
	})
	if err != nil {
		t.Errorf("Expected suppressed error, got %v", err)
	}
}

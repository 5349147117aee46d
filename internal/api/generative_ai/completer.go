package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/go-travel-planner/config"
)

var ErrNotConfigured = errors.New("llm provider is not configured")

// Completer turns a prompt into the model's text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// NewCompleter builds the provider selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Completer, error) {
	switch cfg.Provider {
	case "", "gemini":
		model := cfg.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		c, err := NewAIClient(ctx, cfg.GeminiAPIKey, model, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		logger.Info("LLM provider ready", slog.String("provider", "gemini"), slog.String("model", model))
		return c, nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		c, err := NewOpenAIClient(cfg.OpenAIAPIKey, model, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		logger.Info("LLM provider ready", slog.String("provider", "openai"), slog.String("model", model))
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

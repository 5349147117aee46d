package generativeAI

import (
	"context"
	"log/slog"
	"time"

	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type agentKey struct{}

// WithAgent labels the LLM calls made with ctx in the interaction log.
func WithAgent(ctx context.Context, agent string) context.Context {
	return context.WithValue(ctx, agentKey{}, agent)
}

func agentFromContext(ctx context.Context) string {
	if a, ok := ctx.Value(agentKey{}).(string); ok {
		return a
	}
	return "unknown"
}

// RecordingCompleter persists every exchange of the wrapped Completer.
// Persistence failures are logged and never fail the call.
type RecordingCompleter struct {
	next   Completer
	repo   InteractionRepository
	logger *slog.Logger
}

var _ Completer = (*RecordingCompleter)(nil)

func NewRecordingCompleter(next Completer, repo InteractionRepository, logger *slog.Logger) *RecordingCompleter {
	return &RecordingCompleter{next: next, repo: repo, logger: logger}
}

func (c *RecordingCompleter) Model() string { return c.next.Model() }

func (c *RecordingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.next.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	interaction := types.LlmInteraction{
		Agent:        agentFromContext(ctx),
		Prompt:       prompt,
		ResponseText: text,
		ModelUsed:    c.next.Model(),
		LatencyMs:    int(time.Since(start).Milliseconds()),
	}
	if memberID, ok := auth.MemberIDFromContext(ctx); ok {
		interaction.MemberID = &memberID
	}
	if _, saveErr := c.repo.SaveInteraction(context.WithoutCancel(ctx), interaction); saveErr != nil {
		c.logger.WarnContext(ctx, "Failed to save llm interaction",
			slog.String("agent", interaction.Agent), slog.Any("error", saveErr))
	}
	return text, nil
}

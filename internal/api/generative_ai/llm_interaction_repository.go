package generativeAI

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ InteractionRepository = (*InteractionRepositoryImpl)(nil)

type InteractionRepository interface {
	SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error)
}

type InteractionRepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewInteractionRepository(pgxpool database.Pool, logger *slog.Logger) *InteractionRepositoryImpl {
	return &InteractionRepositoryImpl{logger: logger, pgpool: pgxpool}
}

func (r *InteractionRepositoryImpl) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error) {
	ctx, span := otel.Tracer("LlmInteractionRepo").Start(ctx, "SaveInteraction", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "llm_interactions"),
		attribute.String("agent", interaction.Agent),
	))
	defer span.End()

	id := uuid.New()
	_, err := r.pgpool.Exec(ctx, `
        INSERT INTO llm_interactions (id, member_id, agent, prompt, response_text, model_used, latency_ms)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, interaction.MemberID, interaction.Agent, interaction.Prompt,
		interaction.ResponseText, interaction.ModelUsed, interaction.LatencyMs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return uuid.Nil, fmt.Errorf("failed to insert llm_interaction: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return id, nil
}

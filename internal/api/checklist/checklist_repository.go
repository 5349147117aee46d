package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository methods are scoped to plans owned by memberID. A plan owned by
// someone else behaves as if it had no checklist.
type Repository interface {
	GetChecklist(ctx context.Context, memberID, planID uuid.UUID) (*types.Checklist, error)
	UpsertChecklist(ctx context.Context, memberID, planID uuid.UUID, items []types.ChecklistItem) (*types.Checklist, error)
	DeleteChecklist(ctx context.Context, memberID, planID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgxpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgxpool}
}

func (r *RepositoryImpl) GetChecklist(ctx context.Context, memberID, planID uuid.UUID) (*types.Checklist, error) {
	ctx, span := otel.Tracer("ChecklistRepo").Start(ctx, "GetChecklist", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "checklists"),
		attribute.String("plan.id", planID.String()),
	))
	defer span.End()

	c := types.Checklist{PlanID: planID}
	var raw []byte
	err := r.pgpool.QueryRow(ctx, `
        SELECT c.id, c.items, c.created_at, c.updated_at
        FROM checklists c
        JOIN plans p ON p.id = c.plan_id
        WHERE c.plan_id = $1 AND p.member_id = $2`, planID, memberID,
	).Scan(&c.ID, &raw, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checklist for plan %s: %w", planID, types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching checklist: %w", err)
	}
	if err = json.Unmarshal(raw, &c.Items); err != nil {
		return nil, fmt.Errorf("decode checklist items: %w", err)
	}
	return &c, nil
}

func (r *RepositoryImpl) UpsertChecklist(ctx context.Context, memberID, planID uuid.UUID, items []types.ChecklistItem) (*types.Checklist, error) {
	ctx, span := otel.Tracer("ChecklistRepo").Start(ctx, "UpsertChecklist", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "checklists"),
		attribute.String("plan.id", planID.String()),
		attribute.Int("items.count", len(items)),
	))
	defer span.End()

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode checklist items: %w", err)
	}

	c := types.Checklist{PlanID: planID, Items: items}
	err = r.pgpool.QueryRow(ctx, `
        INSERT INTO checklists (id, plan_id, items)
        SELECT $1, p.id, $3 FROM plans p WHERE p.id = $2 AND p.member_id = $4
        ON CONFLICT (plan_id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()
        RETURNING id, created_at, updated_at`,
		uuid.New(), planID, raw, memberID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to upsert checklist", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB upsert failed")
		return nil, fmt.Errorf("database error saving checklist: %w", err)
	}
	span.SetStatus(codes.Ok, "Checklist saved")
	return &c, nil
}

func (r *RepositoryImpl) DeleteChecklist(ctx context.Context, memberID, planID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `
        DELETE FROM checklists c
        USING plans p
        WHERE c.plan_id = p.id AND c.plan_id = $1 AND p.member_id = $2`, planID, memberID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete checklist", slog.Any("error", err))
		return fmt.Errorf("database error deleting checklist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("checklist for plan %s: %w", planID, types.ErrNotFound)
	}
	return nil
}

package member

import (
	"context"
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

type Repository interface {
	GetMember(ctx context.Context, memberID uuid.UUID) (*types.Member, error)
	UpdateMember(ctx context.Context, memberID uuid.UUID, params types.UpdateMemberParams) (*types.Member, error)
	// DeleteMember removes the member; plans, checklists and tokens cascade.
	DeleteMember(ctx context.Context, memberID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgxpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgxpool}
}

const memberColumns = `id, email, nickname, provider, provider_user_id, profile_image_url, created_at, updated_at`

func scanMember(row pgx.Row) (*types.Member, error) {
	var m types.Member
	var provider string
	if err := row.Scan(&m.ID, &m.Email, &m.Nickname, &provider, &m.ProviderUserID,
		&m.ProfileImageURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Provider = types.Provider(provider)
	return &m, nil
}

func (r *RepositoryImpl) GetMember(ctx context.Context, memberID uuid.UUID) (*types.Member, error) {
	ctx, span := otel.Tracer("MemberRepo").Start(ctx, "GetMember", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "members"),
		attribute.String("member.id", memberID.String()),
	))
	defer span.End()

	m, err := scanMember(r.pgpool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", memberID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to fetch member", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching member: %w", err)
	}
	span.SetStatus(codes.Ok, "Member fetched")
	return m, nil
}

func (r *RepositoryImpl) UpdateMember(ctx context.Context, memberID uuid.UUID, params types.UpdateMemberParams) (*types.Member, error) {
	ctx, span := otel.Tracer("MemberRepo").Start(ctx, "UpdateMember", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "members"),
	))
	defer span.End()

	query := `
        UPDATE members SET
            nickname = COALESCE($2, nickname),
            profile_image_url = COALESCE($3, profile_image_url),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + memberColumns

	m, err := scanMember(r.pgpool.QueryRow(ctx, query, memberID, params.Nickname, params.ProfileImageURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", memberID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to update member", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB update failed")
		return nil, fmt.Errorf("database error updating member: %w", err)
	}
	return m, nil
}

func (r *RepositoryImpl) DeleteMember(ctx context.Context, memberID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM members WHERE id = $1`, memberID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete member", slog.Any("error", err))
		return fmt.Errorf("database error deleting member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", memberID, types.ErrNotFound)
	}
	return nil
}

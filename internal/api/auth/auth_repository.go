package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

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
	// UpsertMember inserts or refreshes the member identified by
	// (provider, provider_user_id). A stored nickname is never overwritten.
	UpsertMember(ctx context.Context, profile *types.OAuthProfile) (*types.Member, error)
	GetMemberByID(ctx context.Context, memberID uuid.UUID) (*types.Member, error)
	UpdateProviderRefreshToken(ctx context.Context, memberID uuid.UUID, token string) error

	StoreRefreshToken(ctx context.Context, memberID uuid.UUID, tokenHash string, expiresAt time.Time) error
	// RotateRefreshToken revokes oldHash and stores newHash for the same
	// member in one transaction, returning that member's id.
	RotateRefreshToken(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgxpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgxpool,
	}
}

const memberColumns = `id, email, nickname, provider, provider_user_id, profile_image_url, provider_refresh_token, created_at, updated_at`

func scanMember(row pgx.Row) (*types.Member, error) {
	var m types.Member
	var provider string
	err := row.Scan(&m.ID, &m.Email, &m.Nickname, &provider, &m.ProviderUserID,
		&m.ProfileImageURL, &m.ProviderRefreshToken, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Provider = types.Provider(provider)
	return &m, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *RepositoryImpl) UpsertMember(ctx context.Context, profile *types.OAuthProfile) (*types.Member, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "UpsertMember", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "members"),
		attribute.String("auth.provider", string(profile.Provider)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpsertMember"), slog.String("provider", string(profile.Provider)))

	query := `
        INSERT INTO members (id, email, nickname, provider, provider_user_id, profile_image_url, provider_refresh_token)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (provider, provider_user_id) DO UPDATE SET
            email = COALESCE(EXCLUDED.email, members.email),
            profile_image_url = COALESCE(EXCLUDED.profile_image_url, members.profile_image_url),
            provider_refresh_token = COALESCE(EXCLUDED.provider_refresh_token, members.provider_refresh_token),
            updated_at = now()
        RETURNING ` + memberColumns

	m, err := scanMember(r.pgpool.QueryRow(ctx, query,
		uuid.New(), nullable(profile.Email), profile.Nickname, string(profile.Provider),
		profile.ProviderUserID, nullable(profile.AvatarURL), nullable(profile.RefreshToken),
	))
	if err != nil {
		l.ErrorContext(ctx, "Failed to upsert member", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB upsert failed")
		return nil, fmt.Errorf("database error upserting member: %w", err)
	}

	span.SetStatus(codes.Ok, "Member upserted")
	return m, nil
}

func (r *RepositoryImpl) GetMemberByID(ctx context.Context, memberID uuid.UUID) (*types.Member, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetMemberByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "members"),
	))
	defer span.End()

	m, err := scanMember(r.pgpool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", memberID, types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching member: %w", err)
	}
	return m, nil
}

func (r *RepositoryImpl) UpdateProviderRefreshToken(ctx context.Context, memberID uuid.UUID, token string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE members SET provider_refresh_token = $2, updated_at = now() WHERE id = $1`,
		memberID, token)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update provider refresh token", slog.Any("error", err))
		return fmt.Errorf("database error updating provider token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", memberID, types.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) StoreRefreshToken(ctx context.Context, memberID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, member_id, token, expires_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), memberID, tokenHash, expiresAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to store refresh token", slog.String("memberID", memberID.String()), slog.Any("error", err))
		return fmt.Errorf("database error storing refresh token: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) RotateRefreshToken(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "RotateRefreshToken", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "refresh_tokens"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "RotateRefreshToken"))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var memberID uuid.UUID
	err = tx.QueryRow(ctx, `
        UPDATE refresh_tokens SET revoked_at = now()
        WHERE token = $1 AND revoked_at IS NULL AND expires_at > now()
        RETURNING member_id`, oldHash).Scan(&memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			l.WarnContext(ctx, "Refresh token unknown, revoked or expired")
			span.SetStatus(codes.Error, "invalid refresh token")
			return uuid.Nil, fmt.Errorf("refresh token: %w", types.ErrUnauthenticated)
		}
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("database error revoking refresh token: %w", err)
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO refresh_tokens (id, member_id, token, expires_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), memberID, newHash, expiresAt); err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("database error storing rotated token: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("commit rotation: %w", err)
	}

	span.SetStatus(codes.Ok, "Refresh token rotated")
	return memberID, nil
}

func (r *RepositoryImpl) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now() WHERE token = $1 AND revoked_at IS NULL`, tokenHash)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to revoke refresh token", slog.Any("error", err))
		return fmt.Errorf("database error revoking refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.DebugContext(ctx, "Refresh token already revoked or unknown")
	}
	return nil
}

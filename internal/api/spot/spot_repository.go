package spot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

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
	CreateSpot(ctx context.Context, s *types.Spot) error
	GetSpot(ctx context.Context, spotID uuid.UUID) (*types.Spot, error)
	ListSpots(ctx context.Context, filter types.SpotFilter) ([]types.Spot, int, error)
	UpdateSpot(ctx context.Context, s *types.Spot) error
	// DeleteSpot removes the spot unless a plan of another member still
	// uses it, which is reported as ErrConflict.
	DeleteSpot(ctx context.Context, memberID, spotID uuid.UUID) error
	ListTags(ctx context.Context) ([]types.SpotTag, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgxpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgxpool}
}

const spotColumns = `id, name, spot_type, address, latitude, longitude, description, image_url, source_url, phone, rating, created_at`

func scanSpot(row pgx.Row) (*types.Spot, error) {
	var s types.Spot
	var spotType string
	if err := row.Scan(&s.ID, &s.Name, &spotType, &s.Address, &s.Latitude, &s.Longitude,
		&s.Description, &s.ImageURL, &s.SourceURL, &s.Phone, &s.Rating, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.SpotType = types.SpotType(spotType)
	return &s, nil
}

func (r *RepositoryImpl) CreateSpot(ctx context.Context, s *types.Spot) error {
	ctx, span := otel.Tracer("SpotRepo").Start(ctx, "CreateSpot", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "spots"),
		attribute.String("spot.type", string(s.SpotType)),
	))
	defer span.End()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.pgpool.QueryRow(ctx, `
        INSERT INTO spots (id, name, spot_type, address, latitude, longitude, description, image_url, source_url, phone, rating)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at`,
		s.ID, s.Name, string(s.SpotType), s.Address, s.Latitude, s.Longitude,
		s.Description, s.ImageURL, s.SourceURL, s.Phone, s.Rating,
	).Scan(&s.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert spot", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return fmt.Errorf("database error creating spot: %w", err)
	}
	span.SetStatus(codes.Ok, "Spot created")
	return nil
}

func (r *RepositoryImpl) GetSpot(ctx context.Context, spotID uuid.UUID) (*types.Spot, error) {
	ctx, span := otel.Tracer("SpotRepo").Start(ctx, "GetSpot", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "spots"),
		attribute.String("spot.id", spotID.String()),
	))
	defer span.End()

	s, err := scanSpot(r.pgpool.QueryRow(ctx, `SELECT `+spotColumns+` FROM spots WHERE id = $1`, spotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("spot %s: %w", spotID, types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching spot: %w", err)
	}
	return s, nil
}

// buildSpotFilter returns the WHERE clause and its args for filter.
func buildSpotFilter(filter types.SpotFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conds = append(conds, fmt.Sprintf("spot_type = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *RepositoryImpl) ListSpots(ctx context.Context, filter types.SpotFilter) ([]types.Spot, int, error) {
	ctx, span := otel.Tracer("SpotRepo").Start(ctx, "ListSpots", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "spots"),
		attribute.String("filter.type", string(filter.Type)),
		attribute.String("filter.q", filter.Query),
	))
	defer span.End()

	where, args := buildSpotFilter(filter)

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT count(*) FROM spots`+where, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("database error counting spots: %w", err)
	}

	page := filter.Page
	args = append(args, page.PageSize, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM spots%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		spotColumns, where, len(args)-1, len(args))

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, 0, fmt.Errorf("database error listing spots: %w", err)
	}
	defer rows.Close()

	spots := make([]types.Spot, 0, page.PageSize)
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("database error scanning spot: %w", err)
		}
		spots = append(spots, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("database error iterating spots: %w", err)
	}
	return spots, total, nil
}

func (r *RepositoryImpl) UpdateSpot(ctx context.Context, s *types.Spot) error {
	ctx, span := otel.Tracer("SpotRepo").Start(ctx, "UpdateSpot", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "spots"),
		attribute.String("spot.id", s.ID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `
        UPDATE spots SET
            name = $2, spot_type = $3, address = $4, latitude = $5, longitude = $6,
            description = $7, image_url = $8, source_url = $9, phone = $10, rating = $11
        WHERE id = $1`,
		s.ID, s.Name, string(s.SpotType), s.Address, s.Latitude, s.Longitude,
		s.Description, s.ImageURL, s.SourceURL, s.Phone, s.Rating)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB update failed")
		return fmt.Errorf("database error updating spot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("spot %s: %w", s.ID, types.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) DeleteSpot(ctx context.Context, memberID, spotID uuid.UUID) error {
	ctx, span := otel.Tracer("SpotRepo").Start(ctx, "DeleteSpot", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "spots, plan_spot_map"),
		attribute.String("spot.id", spotID.String()),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error deleting spot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The row lock blocks concurrent attaches until the delete commits.
	var id uuid.UUID
	if err = tx.QueryRow(ctx, `SELECT id FROM spots WHERE id = $1 FOR UPDATE`, spotID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("spot %s: %w", spotID, types.ErrNotFound)
		}
		span.RecordError(err)
		return fmt.Errorf("database error locking spot: %w", err)
	}

	var shared bool
	if err = tx.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM plan_spot_map psm
            JOIN plans p ON p.id = psm.plan_id
            WHERE psm.spot_id = $1 AND p.member_id <> $2)`, spotID, memberID).Scan(&shared); err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error checking spot usage: %w", err)
	}
	if shared {
		span.SetStatus(codes.Error, "spot in use")
		return fmt.Errorf("spot %s is on another member's plan: %w", spotID, types.ErrConflict)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM spots WHERE id = $1`, spotID); err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete spot", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("database error deleting spot: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error deleting spot: %w", err)
	}
	span.SetStatus(codes.Ok, "Spot deleted")
	return nil
}

func (r *RepositoryImpl) ListTags(ctx context.Context) ([]types.SpotTag, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT id, name FROM spot_tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("database error listing tags: %w", err)
	}
	defer rows.Close()

	tags := []types.SpotTag{}
	for rows.Next() {
		var t types.SpotTag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("database error scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

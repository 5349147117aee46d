package region

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListTopLevel(ctx context.Context) ([]types.Region, error)
	GetByCode(ctx context.Context, code string) (*types.Region, error)
	ListChildren(ctx context.Context, parentCode string) ([]types.Region, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgxpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgxpool}
}

func (r *RepositoryImpl) query(ctx context.Context, sql string, args ...any) ([]types.Region, error) {
	rows, err := r.pgpool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("database error listing regions: %w", err)
	}
	defer rows.Close()

	regions := []types.Region{}
	for rows.Next() {
		var reg types.Region
		if err := rows.Scan(&reg.ID, &reg.Code, &reg.Name, &reg.ParentCode, &reg.Level); err != nil {
			return nil, fmt.Errorf("database error scanning region: %w", err)
		}
		regions = append(regions, reg)
	}
	return regions, rows.Err()
}

func (r *RepositoryImpl) ListTopLevel(ctx context.Context) ([]types.Region, error) {
	ctx, span := otel.Tracer("RegionRepo").Start(ctx, "ListTopLevel", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "administrative_divisions"),
	))
	defer span.End()

	return r.query(ctx, `
        SELECT id, code, name, parent_code, level
        FROM administrative_divisions
        WHERE level = 1
        ORDER BY code`)
}

func (r *RepositoryImpl) GetByCode(ctx context.Context, code string) (*types.Region, error) {
	ctx, span := otel.Tracer("RegionRepo").Start(ctx, "GetByCode", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "administrative_divisions"),
		attribute.String("region.code", code),
	))
	defer span.End()

	var reg types.Region
	err := r.pgpool.QueryRow(ctx, `
        SELECT id, code, name, parent_code, level
        FROM administrative_divisions
        WHERE code = $1`, code,
	).Scan(&reg.ID, &reg.Code, &reg.Name, &reg.ParentCode, &reg.Level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("region %q: %w", code, types.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching region: %w", err)
	}
	return &reg, nil
}

func (r *RepositoryImpl) ListChildren(ctx context.Context, parentCode string) ([]types.Region, error) {
	return r.query(ctx, `
        SELECT id, code, name, parent_code, level
        FROM administrative_divisions
        WHERE parent_code = $1
        ORDER BY code`, parentCode)
}

package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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
	CreatePlan(ctx context.Context, p *types.Plan) error
	// GetPlan returns ErrNotFound when the plan does not exist or belongs to
	// another member.
	GetPlan(ctx context.Context, memberID, planID uuid.UUID) (*types.Plan, error)
	ListPlans(ctx context.Context, memberID uuid.UUID, page types.Page) ([]types.Plan, int, error)
	UpdatePlan(ctx context.Context, p *types.Plan) error
	// DeletePlan removes the plan with its plan-spot rows, their tags and its
	// checklist in one transaction.
	DeletePlan(ctx context.Context, memberID, planID uuid.UUID) error

	ListPlanSpots(ctx context.Context, planID uuid.UUID) ([]types.PlanSpot, error)
	AttachSpot(ctx context.Context, planID uuid.UUID, params types.AttachSpotParams) (*types.PlanSpot, error)
	DetachSpot(ctx context.Context, planID, planSpotID uuid.UUID) error
	TagPlanSpot(ctx context.Context, planID, planSpotID uuid.UUID, tagName string) (*types.SpotTag, error)
	// AddNewSpots inserts each item's spot and attaches it to the plan on
	// the item's day. Either every item is stored or none is.
	AddNewSpots(ctx context.Context, planID uuid.UUID, items []types.PlanSpot) ([]types.PlanSpot, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgxpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgxpool}
}

const planColumns = `id, member_id, title, region_code, start_date, end_date, headcount, budget, transport, created_at, updated_at`

func scanPlan(row pgx.Row) (*types.Plan, error) {
	var p types.Plan
	err := row.Scan(&p.ID, &p.MemberID, &p.Title, &p.RegionCode, &p.StartDate, &p.EndDate,
		&p.Headcount, &p.Budget, &p.Transport, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RepositoryImpl) dbError(ctx context.Context, span trace.Span, op string, err error) error {
	r.logger.ErrorContext(ctx, "Database operation failed", slog.String("op", op), slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, types.ErrConflict)
		case "23503":
			return fmt.Errorf("%s: referenced row does not exist: %w", op, types.ErrNotFound)
		case "23514":
			return fmt.Errorf("%s: %w: %s", op, types.ErrInvalidInput, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("database error in %s: %w", op, err)
}

func (r *RepositoryImpl) CreatePlan(ctx context.Context, p *types.Plan) error {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "CreatePlan", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "plans"),
		attribute.String("member.id", p.MemberID.String()),
	))
	defer span.End()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
        INSERT INTO plans (id, member_id, title, region_code, start_date, end_date, headcount, budget, transport)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at`

	err := r.pgpool.QueryRow(ctx, query,
		p.ID, p.MemberID, p.Title, p.RegionCode, p.StartDate, p.EndDate, p.Headcount, p.Budget, p.Transport,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return r.dbError(ctx, span, "create plan", err)
	}

	span.SetStatus(codes.Ok, "Plan created")
	return nil
}

func (r *RepositoryImpl) GetPlan(ctx context.Context, memberID, planID uuid.UUID) (*types.Plan, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "GetPlan", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "plans"),
		attribute.String("plan.id", planID.String()),
	))
	defer span.End()

	p, err := scanPlan(r.pgpool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = $1 AND member_id = $2`, planID, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
		}
		return nil, r.dbError(ctx, span, "get plan", err)
	}
	return p, nil
}

func (r *RepositoryImpl) ListPlans(ctx context.Context, memberID uuid.UUID, page types.Page) ([]types.Plan, int, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "ListPlans", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "plans"),
		attribute.Int("page", page.Page),
	))
	defer span.End()

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT count(*) FROM plans WHERE member_id = $1`, memberID).Scan(&total); err != nil {
		return nil, 0, r.dbError(ctx, span, "count plans", err)
	}

	rows, err := r.pgpool.Query(ctx, `
        SELECT `+planColumns+`
        FROM plans
        WHERE member_id = $1
        ORDER BY created_at DESC, id
        LIMIT $2 OFFSET $3`, memberID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, r.dbError(ctx, span, "list plans", err)
	}
	defer rows.Close()

	plans := make([]types.Plan, 0, page.PageSize)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, r.dbError(ctx, span, "scan plan", err)
		}
		plans = append(plans, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, r.dbError(ctx, span, "iterate plans", err)
	}

	span.SetStatus(codes.Ok, "Plans listed")
	return plans, total, nil
}

func (r *RepositoryImpl) UpdatePlan(ctx context.Context, p *types.Plan) error {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "UpdatePlan", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "plans"),
		attribute.String("plan.id", p.ID.String()),
	))
	defer span.End()

	err := r.pgpool.QueryRow(ctx, `
        UPDATE plans SET
            title = $3, region_code = $4, start_date = $5, end_date = $6,
            headcount = $7, budget = $8, transport = $9, updated_at = now()
        WHERE id = $1 AND member_id = $2
        RETURNING updated_at`,
		p.ID, p.MemberID, p.Title, p.RegionCode, p.StartDate, p.EndDate, p.Headcount, p.Budget, p.Transport,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("plan %s: %w", p.ID, types.ErrNotFound)
		}
		return r.dbError(ctx, span, "update plan", err)
	}
	return nil
}

func (r *RepositoryImpl) DeletePlan(ctx context.Context, memberID, planID uuid.UUID) error {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "DeletePlan", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "plans, plan_spot_map, plan_spot_tag_map, checklists"),
		attribute.String("plan.id", planID.String()),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return r.dbError(ctx, span, "begin delete plan", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM plans WHERE id = $1 AND member_id = $2`, planID, memberID)
	if err != nil {
		return r.dbError(ctx, span, "delete plan", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
	}

	// The FKs cascade, but the children are removed explicitly so the
	// delete does not depend on the constraint definitions.
	if _, err = tx.Exec(ctx, `
        DELETE FROM plan_spot_tag_map
        WHERE plan_spot_id IN (SELECT id FROM plan_spot_map WHERE plan_id = $1)`, planID); err != nil {
		return r.dbError(ctx, span, "delete plan spot tags", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM plan_spot_map WHERE plan_id = $1`, planID); err != nil {
		return r.dbError(ctx, span, "delete plan spots", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM checklists WHERE plan_id = $1`, planID); err != nil {
		return r.dbError(ctx, span, "delete checklist", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return r.dbError(ctx, span, "commit delete plan", err)
	}
	span.SetStatus(codes.Ok, "Plan deleted")
	return nil
}

func (r *RepositoryImpl) ListPlanSpots(ctx context.Context, planID uuid.UUID) ([]types.PlanSpot, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "ListPlanSpots", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "plan_spot_map, spots, plan_spot_tag_map, spot_tags"),
		attribute.String("plan.id", planID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
        SELECT psm.id, psm.plan_id, psm.day_number, psm.sequence, psm.created_at,
               s.id, s.name, s.spot_type, s.address, s.latitude, s.longitude,
               s.description, s.image_url, s.source_url, s.phone, s.rating, s.created_at,
               COALESCE(array_agg(st.name ORDER BY st.name) FILTER (WHERE st.name IS NOT NULL), '{}') AS tags
        FROM plan_spot_map psm
        JOIN spots s ON s.id = psm.spot_id
        LEFT JOIN plan_spot_tag_map pstm ON pstm.plan_spot_id = psm.id
        LEFT JOIN spot_tags st ON st.id = pstm.spot_tag_id
        WHERE psm.plan_id = $1
        GROUP BY psm.id, s.id
        ORDER BY psm.day_number, psm.sequence`, planID)
	if err != nil {
		return nil, r.dbError(ctx, span, "list plan spots", err)
	}
	defer rows.Close()

	var spots []types.PlanSpot
	for rows.Next() {
		var ps types.PlanSpot
		var spotType string
		if err := rows.Scan(&ps.ID, &ps.PlanID, &ps.DayNumber, &ps.Sequence, &ps.CreatedAt,
			&ps.Spot.ID, &ps.Spot.Name, &spotType, &ps.Spot.Address, &ps.Spot.Latitude, &ps.Spot.Longitude,
			&ps.Spot.Description, &ps.Spot.ImageURL, &ps.Spot.SourceURL, &ps.Spot.Phone, &ps.Spot.Rating, &ps.Spot.CreatedAt,
			&ps.Tags); err != nil {
			return nil, r.dbError(ctx, span, "scan plan spot", err)
		}
		ps.Spot.SpotType = types.SpotType(spotType)
		spots = append(spots, ps)
	}
	if err = rows.Err(); err != nil {
		return nil, r.dbError(ctx, span, "iterate plan spots", err)
	}
	return spots, nil
}

const attachSpotQuery = `
        INSERT INTO plan_spot_map (id, plan_id, spot_id, day_number, sequence)
        VALUES ($1, $2, $3, $4, COALESCE($5::int,
            (SELECT COALESCE(MAX(sequence), 0) + 1 FROM plan_spot_map WHERE plan_id = $2 AND day_number = $4)))
        RETURNING sequence, created_at`

func (r *RepositoryImpl) AttachSpot(ctx context.Context, planID uuid.UUID, params types.AttachSpotParams) (*types.PlanSpot, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "AttachSpot", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "plan_spot_map"),
		attribute.String("plan.id", planID.String()),
		attribute.Int("day", params.DayNumber),
	))
	defer span.End()

	ps := &types.PlanSpot{
		ID:        uuid.New(),
		PlanID:    planID,
		DayNumber: params.DayNumber,
		Spot:      types.Spot{ID: params.SpotID},
		Tags:      []string{},
	}
	err := r.pgpool.QueryRow(ctx, attachSpotQuery,
		ps.ID, planID, params.SpotID, params.DayNumber, params.Sequence,
	).Scan(&ps.Sequence, &ps.CreatedAt)
	if err != nil {
		return nil, r.dbError(ctx, span, "attach spot", err)
	}

	span.SetStatus(codes.Ok, "Spot attached")
	return ps, nil
}

func (r *RepositoryImpl) DetachSpot(ctx context.Context, planID, planSpotID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM plan_spot_map WHERE id = $1 AND plan_id = $2`, planSpotID, planID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to detach spot", slog.Any("error", err))
		return fmt.Errorf("database error detaching spot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan spot %s: %w", planSpotID, types.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) TagPlanSpot(ctx context.Context, planID, planSpotID uuid.UUID, tagName string) (*types.SpotTag, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "TagPlanSpot", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "spot_tags, plan_spot_tag_map"),
		attribute.String("plan_spot.id", planSpotID.String()),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, r.dbError(ctx, span, "begin tag", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM plan_spot_map WHERE id = $1 AND plan_id = $2)`, planSpotID, planID,
	).Scan(&exists); err != nil {
		return nil, r.dbError(ctx, span, "check plan spot", err)
	}
	if !exists {
		return nil, fmt.Errorf("plan spot %s: %w", planSpotID, types.ErrNotFound)
	}

	tag := &types.SpotTag{Name: tagName}
	if err = tx.QueryRow(ctx, `
        INSERT INTO spot_tags (id, name) VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`, uuid.New(), tagName).Scan(&tag.ID); err != nil {
		return nil, r.dbError(ctx, span, "upsert tag", err)
	}

	if _, err = tx.Exec(ctx, `
        INSERT INTO plan_spot_tag_map (id, plan_spot_id, spot_tag_id) VALUES ($1, $2, $3)
        ON CONFLICT (plan_spot_id, spot_tag_id) DO NOTHING`, uuid.New(), planSpotID, tag.ID); err != nil {
		return nil, r.dbError(ctx, span, "map tag", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, r.dbError(ctx, span, "commit tag", err)
	}
	span.SetStatus(codes.Ok, "Plan spot tagged")
	return tag, nil
}

func (r *RepositoryImpl) AddNewSpots(ctx context.Context, planID uuid.UUID, items []types.PlanSpot) ([]types.PlanSpot, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "AddNewSpots", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "spots, plan_spot_map"),
		attribute.String("plan.id", planID.String()),
		attribute.Int("spots.count", len(items)),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, r.dbError(ctx, span, "begin add spots", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved := make([]types.PlanSpot, 0, len(items))
	for _, ps := range items {
		s := ps.Spot
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if err = tx.QueryRow(ctx, `
            INSERT INTO spots (id, name, spot_type, address, latitude, longitude, description, image_url, source_url, phone, rating)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
            RETURNING created_at`,
			s.ID, s.Name, string(s.SpotType), s.Address, s.Latitude, s.Longitude,
			s.Description, s.ImageURL, s.SourceURL, s.Phone, s.Rating,
		).Scan(&s.CreatedAt); err != nil {
			return nil, r.dbError(ctx, span, "insert spot", err)
		}

		ps.ID = uuid.New()
		ps.PlanID = planID
		ps.Spot = s
		ps.Tags = []string{}
		if err = tx.QueryRow(ctx, attachSpotQuery,
			ps.ID, planID, s.ID, ps.DayNumber, (*int)(nil),
		).Scan(&ps.Sequence, &ps.CreatedAt); err != nil {
			return nil, r.dbError(ctx, span, "attach new spot", err)
		}
		saved = append(saved, ps)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, r.dbError(ctx, span, "commit add spots", err)
	}
	span.SetStatus(codes.Ok, "Spots added")
	return saved, nil
}

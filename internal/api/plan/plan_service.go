package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const dateLayout = "2006-01-02"

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreatePlan(ctx context.Context, memberID uuid.UUID, params types.CreatePlanParams) (*types.Plan, error)
	GetPlan(ctx context.Context, memberID, planID uuid.UUID) (*types.Plan, error)
	ListPlans(ctx context.Context, memberID uuid.UUID, page types.Page) (*types.PlanList, error)
	UpdatePlan(ctx context.Context, memberID, planID uuid.UUID, params types.UpdatePlanParams) (*types.Plan, error)
	DeletePlan(ctx context.Context, memberID, planID uuid.UUID) error

	AttachSpot(ctx context.Context, memberID, planID uuid.UUID, params types.AttachSpotParams) (*types.PlanSpot, error)
	DetachSpot(ctx context.Context, memberID, planID, planSpotID uuid.UUID) error
	TagPlanSpot(ctx context.Context, memberID, planID, planSpotID uuid.UUID, tagName string) (*types.SpotTag, error)

	// SaveRecommendations stores each recommendation as a spot and places
	// them on the plan's days in round-robin order, all in one transaction.
	SaveRecommendations(ctx context.Context, memberID, planID uuid.UUID, recs []types.Recommendation) ([]types.PlanSpot, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func parseDate(field string, v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*v))
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", types.ErrInvalidInput, field)
	}
	return &t, nil
}

func validatePlan(p *types.Plan) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", types.ErrInvalidInput)
	}
	if p.Headcount < 1 {
		return fmt.Errorf("%w: headcount must be at least 1", types.ErrInvalidInput)
	}
	if p.Budget != nil && *p.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", types.ErrInvalidInput)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", types.ErrInvalidInput)
	}
	return nil
}

func emptyToNil(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func (s *ServiceImpl) CreatePlan(ctx context.Context, memberID uuid.UUID, params types.CreatePlanParams) (*types.Plan, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "CreatePlan", trace.WithAttributes(
		attribute.String("member.id", memberID.String()),
	))
	defer span.End()

	start, err := parseDate("start_date", params.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", params.EndDate)
	if err != nil {
		return nil, err
	}

	p := &types.Plan{
		MemberID:   memberID,
		Title:      params.Title,
		RegionCode: emptyToNil(params.RegionCode),
		StartDate:  start,
		EndDate:    end,
		Headcount:  1,
		Budget:     params.Budget,
		Transport:  emptyToNil(params.Transport),
	}
	if params.Headcount != nil {
		p.Headcount = *params.Headcount
	}
	if err = validatePlan(p); err != nil {
		span.SetStatus(codes.Error, "invalid plan")
		return nil, err
	}

	if err = s.repo.CreatePlan(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	s.logger.InfoContext(ctx, "Plan created", slog.String("planID", p.ID.String()), slog.String("memberID", memberID.String()))
	span.SetStatus(codes.Ok, "Plan created")
	return p, nil
}

func (s *ServiceImpl) GetPlan(ctx context.Context, memberID, planID uuid.UUID) (*types.Plan, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "GetPlan", trace.WithAttributes(
		attribute.String("plan.id", planID.String()),
	))
	defer span.End()

	p, err := s.repo.GetPlan(ctx, memberID, planID)
	if err != nil {
		return nil, err
	}
	spots, err := s.repo.ListPlanSpots(ctx, planID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	p.Spots = spots
	return p, nil
}

func (s *ServiceImpl) ListPlans(ctx context.Context, memberID uuid.UUID, page types.Page) (*types.PlanList, error) {
	page = page.Normalize()
	plans, total, err := s.repo.ListPlans(ctx, memberID, page)
	if err != nil {
		return nil, err
	}
	return &types.PlanList{Plans: plans, Page: page.Page, PageSize: page.PageSize, Total: total}, nil
}

func (s *ServiceImpl) UpdatePlan(ctx context.Context, memberID, planID uuid.UUID, params types.UpdatePlanParams) (*types.Plan, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "UpdatePlan", trace.WithAttributes(
		attribute.String("plan.id", planID.String()),
	))
	defer span.End()

	p, err := s.repo.GetPlan(ctx, memberID, planID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		p.Title = *params.Title
	}
	if params.RegionCode != nil {
		p.RegionCode = emptyToNil(params.RegionCode)
	}
	if params.StartDate != nil {
		if p.StartDate, err = parseDate("start_date", params.StartDate); err != nil {
			return nil, err
		}
	}
	if params.EndDate != nil {
		if p.EndDate, err = parseDate("end_date", params.EndDate); err != nil {
			return nil, err
		}
	}
	if params.Headcount != nil {
		p.Headcount = *params.Headcount
	}
	if params.Budget != nil {
		p.Budget = params.Budget
	}
	if params.Transport != nil {
		p.Transport = emptyToNil(params.Transport)
	}
	if err = validatePlan(p); err != nil {
		return nil, err
	}

	if err = s.repo.UpdatePlan(ctx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return p, nil
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, memberID, planID uuid.UUID) error {
	if err := s.repo.DeletePlan(ctx, memberID, planID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Plan deleted", slog.String("planID", planID.String()))
	return nil
}

func (s *ServiceImpl) AttachSpot(ctx context.Context, memberID, planID uuid.UUID, params types.AttachSpotParams) (*types.PlanSpot, error) {
	if params.SpotID == uuid.Nil {
		return nil, fmt.Errorf("%w: spot_id is required", types.ErrInvalidInput)
	}
	if params.DayNumber < 1 {
		return nil, fmt.Errorf("%w: day_number must be at least 1", types.ErrInvalidInput)
	}
	if params.Sequence != nil && *params.Sequence < 1 {
		return nil, fmt.Errorf("%w: sequence must be at least 1", types.ErrInvalidInput)
	}
	if _, err := s.repo.GetPlan(ctx, memberID, planID); err != nil {
		return nil, err
	}
	return s.repo.AttachSpot(ctx, planID, params)
}

func (s *ServiceImpl) DetachSpot(ctx context.Context, memberID, planID, planSpotID uuid.UUID) error {
	if _, err := s.repo.GetPlan(ctx, memberID, planID); err != nil {
		return err
	}
	return s.repo.DetachSpot(ctx, planID, planSpotID)
}

func (s *ServiceImpl) TagPlanSpot(ctx context.Context, memberID, planID, planSpotID uuid.UUID, tagName string) (*types.SpotTag, error) {
	tagName = strings.ToLower(strings.TrimSpace(tagName))
	if tagName == "" {
		return nil, fmt.Errorf("%w: tag name is required", types.ErrInvalidInput)
	}
	if len([]rune(tagName)) > 50 {
		return nil, fmt.Errorf("%w: tag name must be at most 50 characters", types.ErrInvalidInput)
	}
	if _, err := s.repo.GetPlan(ctx, memberID, planID); err != nil {
		return nil, err
	}
	return s.repo.TagPlanSpot(ctx, planID, planSpotID, tagName)
}

// tripDays is the number of days the plan spans, 1 when dates are unset.
func tripDays(p *types.Plan) int {
	if p.StartDate == nil || p.EndDate == nil {
		return 1
	}
	return int(p.EndDate.Sub(*p.StartDate).Hours()/24) + 1
}

// recommendationToSpot maps agent output to a spot row. Values outside the
// column ranges are dropped rather than rejected; a pair of coordinates is
// dropped together.
func recommendationToSpot(rec types.Recommendation) (types.Spot, bool) {
	spot := types.Spot{Name: strings.TrimSpace(rec.Name), SpotType: rec.Kind}
	if spot.Name == "" || !spot.SpotType.Valid() {
		return spot, false
	}
	if rec.Latitude != nil && rec.Longitude != nil &&
		*rec.Latitude >= -90 && *rec.Latitude <= 90 &&
		*rec.Longitude >= -180 && *rec.Longitude <= 180 {
		spot.Latitude, spot.Longitude = rec.Latitude, rec.Longitude
	}
	if rec.Rating != nil && *rec.Rating >= 0 && *rec.Rating <= 5 {
		spot.Rating = rec.Rating
	}
	set := func(v string) *string {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		return &v
	}
	spot.Address = set(rec.Address)
	spot.Description = set(rec.Description)
	spot.ImageURL = set(rec.ImageURL)
	spot.SourceURL = set(rec.URL)
	spot.Phone = set(rec.Phone)
	return spot, true
}

func (s *ServiceImpl) SaveRecommendations(ctx context.Context, memberID, planID uuid.UUID, recs []types.Recommendation) ([]types.PlanSpot, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "SaveRecommendations", trace.WithAttributes(
		attribute.String("plan.id", planID.String()),
		attribute.Int("recommendations.count", len(recs)),
	))
	defer span.End()

	p, err := s.repo.GetPlan(ctx, memberID, planID)
	if err != nil {
		return nil, err
	}
	days := tripDays(p)

	items := make([]types.PlanSpot, 0, len(recs))
	for _, rec := range recs {
		spot, ok := recommendationToSpot(rec)
		if !ok {
			s.logger.WarnContext(ctx, "Skipping unusable recommendation", slog.String("name", rec.Name), slog.String("kind", string(rec.Kind)))
			continue
		}
		items = append(items, types.PlanSpot{DayNumber: len(items)%days + 1, Spot: spot})
	}
	if len(items) == 0 {
		return []types.PlanSpot{}, nil
	}

	saved, err := s.repo.AddNewSpots(ctx, planID, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		// Reported as a server error whatever the cause.
		return nil, fmt.Errorf("save recommendations to plan %s: %v", planID, err)
	}

	s.logger.InfoContext(ctx, "Recommendations saved to plan",
		slog.String("planID", planID.String()), slog.Int("count", len(saved)), slog.Int("days", days))
	return saved, nil
}

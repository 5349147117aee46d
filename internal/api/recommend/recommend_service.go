package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	defaultLimit = 5
	maxLimit     = 10
	dateLayout   = "2006-01-02"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Recommend(ctx context.Context, kind types.SpotType, req types.RecommendationRequest) (*types.RecommendationResponse, error)
	Schedule(ctx context.Context, req types.RecommendationRequest) (*types.Schedule, error)
}

// PlanSaver stores recommendations as spots of a member's plan.
type PlanSaver interface {
	SaveRecommendations(ctx context.Context, memberID, planID uuid.UUID, recs []types.Recommendation) ([]types.PlanSpot, error)
}

type CacheOptions struct {
	TTL     time.Duration
	Cleanup time.Duration
}

type ServiceImpl struct {
	logger *slog.Logger
	agents map[types.SpotType]Recommender
	plans  PlanSaver
	cache  *cache.Cache
}

func NewServiceImpl(agents []Recommender, plans PlanSaver, cacheOpts CacheOptions, logger *slog.Logger) *ServiceImpl {
	byKind := make(map[types.SpotType]Recommender, len(agents))
	for _, a := range agents {
		byKind[a.Kind()] = a
	}
	if cacheOpts.TTL <= 0 {
		cacheOpts.TTL = time.Hour
	}
	if cacheOpts.Cleanup <= 0 {
		cacheOpts.Cleanup = 10 * time.Minute
	}
	return &ServiceImpl{
		logger: logger,
		agents: byKind,
		plans:  plans,
		cache:  cache.New(cacheOpts.TTL, cacheOpts.Cleanup),
	}
}

func normalizeRequest(req *types.RecommendationRequest) error {
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" {
		return fmt.Errorf("%w: destination is required", types.ErrInvalidInput)
	}

	var start, end time.Time
	var err error
	if req.StartDate != "" {
		if start, err = time.Parse(dateLayout, req.StartDate); err != nil {
			return fmt.Errorf("%w: start_date must be YYYY-MM-DD", types.ErrInvalidInput)
		}
	}
	if req.EndDate != "" {
		if end, err = time.Parse(dateLayout, req.EndDate); err != nil {
			return fmt.Errorf("%w: end_date must be YYYY-MM-DD", types.ErrInvalidInput)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end_date is before start_date", types.ErrInvalidInput)
	}

	switch {
	case req.Headcount < 0:
		return fmt.Errorf("%w: headcount must not be negative", types.ErrInvalidInput)
	case req.Budget < 0:
		return fmt.Errorf("%w: budget must not be negative", types.ErrInvalidInput)
	case req.Limit < 0 || req.Limit > maxLimit:
		return fmt.Errorf("%w: limit must be between 1 and %d", types.ErrInvalidInput, maxLimit)
	case req.Limit == 0:
		req.Limit = defaultLimit
	}
	return nil
}

// run calls the agent for kind through the cache and records metrics.
func (s *ServiceImpl) run(ctx context.Context, kind types.SpotType, req types.RecommendationRequest) ([]types.Recommendation, error) {
	agent, ok := s.agents[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown recommendation kind %q", types.ErrNotFound, kind)
	}

	key := string(kind) + "|" + req.CacheKey()
	if cached, found := s.cache.Get(key); found {
		s.logger.DebugContext(ctx, "Recommendation cache hit", slog.String("kind", string(kind)))
		return cached.([]types.Recommendation), nil
	}

	start := time.Now()
	recs, err := agent.Recommend(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("kind", string(kind)), attribute.String("status", status))
	m.AgentCallsTotal.Add(ctx, 1, attrs)
	m.AgentDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, recs, cache.DefaultExpiration)
	return recs, nil
}

func (s *ServiceImpl) save(ctx context.Context, planID uuid.UUID, recs []types.Recommendation) (int, error) {
	if s.plans == nil {
		return 0, fmt.Errorf("%w: saving to a plan is not available", types.ErrInvalidInput)
	}
	memberID, ok := auth.MemberIDFromContext(ctx)
	if !ok {
		return 0, types.ErrUnauthenticated
	}
	saved, err := s.plans.SaveRecommendations(ctx, memberID, planID, recs)
	return len(saved), err
}

func (s *ServiceImpl) Recommend(ctx context.Context, kind types.SpotType, req types.RecommendationRequest) (*types.RecommendationResponse, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("kind", string(kind)),
	))
	defer span.End()

	if _, ok := s.agents[kind]; !ok {
		span.SetStatus(codes.Error, "unknown kind")
		return nil, fmt.Errorf("%w: unknown recommendation kind %q", types.ErrNotFound, kind)
	}
	if err := normalizeRequest(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	recs, err := s.run(ctx, kind, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "agent failed")
		return nil, err
	}

	resp := &types.RecommendationResponse{Kind: kind, Destination: req.Destination, Recommendations: recs}
	if req.PlanID != nil {
		if resp.SavedSpots, err = s.save(ctx, *req.PlanID, recs); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// Schedule runs every agent concurrently. A failed agent leaves its section
// empty and is reported in Errors; the call fails only when all of them do.
func (s *ServiceImpl) Schedule(ctx context.Context, req types.RecommendationRequest) (*types.Schedule, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "Schedule", trace.WithAttributes(
		attribute.String("destination", req.Destination),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "Schedule"))

	if err := normalizeRequest(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	var (
		mu      sync.Mutex
		results = make(map[types.SpotType][]types.Recommendation, len(types.SpotTypes))
		failed  = make(map[string]string)
		errs    []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(types.SpotTypes))
	for _, kind := range types.SpotTypes {
		g.Go(func() error {
			recs, err := s.run(gctx, kind, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				l.WarnContext(ctx, "Agent failed", slog.String("kind", string(kind)), slog.Any("error", err))
				failed[string(kind)] = err.Error()
				errs = append(errs, err)
				return nil
			}
			results[kind] = recs
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) == len(types.SpotTypes) {
		err := fmt.Errorf("every recommendation agent failed: %w", errors.Join(errs...))
		span.RecordError(err)
		span.SetStatus(codes.Error, "all agents failed")
		return nil, err
	}

	schedule := &types.Schedule{
		Destination:    req.Destination,
		Accommodations: nonNil(results[types.SpotAccommodation]),
		Restaurants:    nonNil(results[types.SpotRestaurant]),
		Cafes:          nonNil(results[types.SpotCafe]),
		Sites:          nonNil(results[types.SpotSite]),
	}
	if len(failed) > 0 {
		schedule.Errors = failed
	}

	if req.PlanID != nil {
		var all []types.Recommendation
		for _, kind := range types.SpotTypes {
			all = append(all, results[kind]...)
		}
		n, err := s.save(ctx, *req.PlanID, all)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		schedule.PlanID = req.PlanID
		schedule.SavedSpots = n
	}

	l.InfoContext(ctx, "Schedule built", slog.Int("failed_agents", len(failed)))
	span.SetStatus(codes.Ok, "")
	return schedule, nil
}

func nonNil(recs []types.Recommendation) []types.Recommendation {
	if recs == nil {
		return []types.Recommendation{}
	}
	return recs
}

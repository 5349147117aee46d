package region

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const topLevelKey = "regions:top"

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListRegions(ctx context.Context) ([]types.Region, error)
	GetRegion(ctx context.Context, code string) (*types.Region, error)
}

// ServiceImpl caches lookups; the divisions only change with a migration.
type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(24*time.Hour, time.Hour),
	}
}

func (s *ServiceImpl) ListRegions(ctx context.Context) ([]types.Region, error) {
	if cached, found := s.cache.Get(topLevelKey); found {
		return cached.([]types.Region), nil
	}
	regions, err := s.repo.ListTopLevel(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(topLevelKey, regions, cache.DefaultExpiration)
	return regions, nil
}

func (s *ServiceImpl) GetRegion(ctx context.Context, code string) (*types.Region, error) {
	key := "regions:" + code
	if cached, found := s.cache.Get(key); found {
		s.logger.DebugContext(ctx, "Region cache hit", slog.String("code", code))
		return cached.(*types.Region), nil
	}

	reg, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if reg.Children, err = s.repo.ListChildren(ctx, code); err != nil {
		return nil, err
	}
	s.cache.Set(key, reg, cache.DefaultExpiration)
	return reg, nil
}

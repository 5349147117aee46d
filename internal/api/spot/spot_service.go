package spot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateSpot(ctx context.Context, params types.CreateSpotParams) (*types.Spot, error)
	GetSpot(ctx context.Context, spotID uuid.UUID) (*types.Spot, error)
	ListSpots(ctx context.Context, filter types.SpotFilter) (*types.SpotList, error)
	UpdateSpot(ctx context.Context, spotID uuid.UUID, params types.UpdateSpotParams) (*types.Spot, error)
	DeleteSpot(ctx context.Context, memberID, spotID uuid.UUID) error
	ListTags(ctx context.Context) ([]types.SpotTag, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func validateSpot(s *types.Spot) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", types.ErrInvalidInput)
	}
	if !s.SpotType.Valid() {
		return fmt.Errorf("%w: spot_type must be one of accommodation, restaurant, cafe, site", types.ErrInvalidInput)
	}
	if s.Latitude != nil && (*s.Latitude < -90 || *s.Latitude > 90) {
		return fmt.Errorf("%w: latitude must be within [-90, 90]", types.ErrInvalidInput)
	}
	if s.Longitude != nil && (*s.Longitude < -180 || *s.Longitude > 180) {
		return fmt.Errorf("%w: longitude must be within [-180, 180]", types.ErrInvalidInput)
	}
	if s.Rating != nil && (*s.Rating < 0 || *s.Rating > 5) {
		return fmt.Errorf("%w: rating must be within [0, 5]", types.ErrInvalidInput)
	}
	return nil
}

func (s *ServiceImpl) CreateSpot(ctx context.Context, params types.CreateSpotParams) (*types.Spot, error) {
	spot := &types.Spot{
		Name:        params.Name,
		SpotType:    params.SpotType,
		Address:     params.Address,
		Latitude:    params.Latitude,
		Longitude:   params.Longitude,
		Description: params.Description,
		ImageURL:    params.ImageURL,
		SourceURL:   params.SourceURL,
		Phone:       params.Phone,
		Rating:      params.Rating,
	}
	if err := validateSpot(spot); err != nil {
		return nil, err
	}
	if err := s.repo.CreateSpot(ctx, spot); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Spot created", slog.String("spotID", spot.ID.String()), slog.String("type", string(spot.SpotType)))
	return spot, nil
}

func (s *ServiceImpl) GetSpot(ctx context.Context, spotID uuid.UUID) (*types.Spot, error) {
	return s.repo.GetSpot(ctx, spotID)
}

func (s *ServiceImpl) ListSpots(ctx context.Context, filter types.SpotFilter) (*types.SpotList, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown spot type %q", types.ErrInvalidInput, filter.Type)
	}
	filter.Page = filter.Page.Normalize()
	spots, total, err := s.repo.ListSpots(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &types.SpotList{Spots: spots, Page: filter.Page.Page, PageSize: filter.Page.PageSize, Total: total}, nil
}

func (s *ServiceImpl) UpdateSpot(ctx context.Context, spotID uuid.UUID, params types.UpdateSpotParams) (*types.Spot, error) {
	spot, err := s.repo.GetSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		spot.Name = *params.Name
	}
	if params.SpotType != nil {
		spot.SpotType = *params.SpotType
	}
	if params.Address != nil {
		spot.Address = params.Address
	}
	if params.Latitude != nil {
		spot.Latitude = params.Latitude
	}
	if params.Longitude != nil {
		spot.Longitude = params.Longitude
	}
	if params.Description != nil {
		spot.Description = params.Description
	}
	if params.ImageURL != nil {
		spot.ImageURL = params.ImageURL
	}
	if params.SourceURL != nil {
		spot.SourceURL = params.SourceURL
	}
	if params.Phone != nil {
		spot.Phone = params.Phone
	}
	if params.Rating != nil {
		spot.Rating = params.Rating
	}
	if err = validateSpot(spot); err != nil {
		return nil, err
	}

	if err = s.repo.UpdateSpot(ctx, spot); err != nil {
		return nil, err
	}
	return spot, nil
}

func (s *ServiceImpl) DeleteSpot(ctx context.Context, memberID, spotID uuid.UUID) error {
	if err := s.repo.DeleteSpot(ctx, memberID, spotID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Spot deleted", slog.String("spotID", spotID.String()), slog.String("memberID", memberID.String()))
	return nil
}

func (s *ServiceImpl) ListTags(ctx context.Context) ([]types.SpotTag, error) {
	return s.repo.ListTags(ctx)
}

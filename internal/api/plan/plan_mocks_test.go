package plan

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePlan(ctx context.Context, p *types.Plan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) GetPlan(ctx context.Context, memberID, planID uuid.UUID) (*types.Plan, error) {
	args := m.Called(ctx, memberID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Plan), args.Error(1)
}

func (m *MockRepository) ListPlans(ctx context.Context, memberID uuid.UUID, page types.Page) ([]types.Plan, int, error) {
	args := m.Called(ctx, memberID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.Plan), args.Int(1), args.Error(2)
}

func (m *MockRepository) UpdatePlan(ctx context.Context, p *types.Plan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) DeletePlan(ctx context.Context, memberID, planID uuid.UUID) error {
	return m.Called(ctx, memberID, planID).Error(0)
}

func (m *MockRepository) ListPlanSpots(ctx context.Context, planID uuid.UUID) ([]types.PlanSpot, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlanSpot), args.Error(1)
}

func (m *MockRepository) AttachSpot(ctx context.Context, planID uuid.UUID, params types.AttachSpotParams) (*types.PlanSpot, error) {
	args := m.Called(ctx, planID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PlanSpot), args.Error(1)
}

func (m *MockRepository) DetachSpot(ctx context.Context, planID, planSpotID uuid.UUID) error {
	return m.Called(ctx, planID, planSpotID).Error(0)
}

func (m *MockRepository) TagPlanSpot(ctx context.Context, planID, planSpotID uuid.UUID, tagName string) (*types.SpotTag, error) {
	args := m.Called(ctx, planID, planSpotID, tagName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SpotTag), args.Error(1)
}

func (m *MockRepository) AddNewSpots(ctx context.Context, planID uuid.UUID, items []types.PlanSpot) ([]types.PlanSpot, error) {
	args := m.Called(ctx, planID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlanSpot), args.Error(1)
}

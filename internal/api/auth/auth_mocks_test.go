package auth

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpsertMember(ctx context.Context, profile *types.OAuthProfile) (*types.Member, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Member), args.Error(1)
}

func (m *MockRepository) GetMemberByID(ctx context.Context, memberID uuid.UUID) (*types.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Member), args.Error(1)
}

func (m *MockRepository) UpdateProviderRefreshToken(ctx context.Context, memberID uuid.UUID, token string) error {
	return m.Called(ctx, memberID, token).Error(0)
}

func (m *MockRepository) StoreRefreshToken(ctx context.Context, memberID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return m.Called(ctx, memberID, tokenHash, expiresAt).Error(0)
}

func (m *MockRepository) RotateRefreshToken(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error) {
	args := m.Called(ctx, oldHash, newHash, expiresAt)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

type MockService struct {
	mock.Mock
}

func (m *MockService) LoginURL(ctx context.Context, provider types.Provider, state string) (string, error) {
	args := m.Called(ctx, provider, state)
	return args.String(0), args.Error(1)
}

func (m *MockService) HandleCallback(ctx context.Context, provider types.Provider, params url.Values) (*types.LoginResult, error) {
	args := m.Called(ctx, provider, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LoginResult), args.Error(1)
}

func (m *MockService) Refresh(ctx context.Context, refreshToken string) (*types.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenPair), args.Error(1)
}

func (m *MockService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockService) RefreshProviderToken(ctx context.Context, memberID uuid.UUID) (*types.ProviderToken, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProviderToken), args.Error(1)
}

// fakeProvider stands in for a goth-backed provider.
type fakeProvider struct {
	name        types.Provider
	profile     *types.OAuthProfile
	exchangeErr error
	canRefresh  bool
	token       *oauth2.Token
	refreshErr  error
}

func (f *fakeProvider) Name() types.Provider { return f.name }

func (f *fakeProvider) AuthURL(state string) (string, error) {
	return "https://provider.example/authorize?state=" + url.QueryEscape(state), nil
}

func (f *fakeProvider) Exchange(ctx context.Context, params url.Values) (*types.OAuthProfile, error) {
	return f.profile, f.exchangeErr
}

func (f *fakeProvider) CanRefresh() bool { return f.canRefresh }

func (f *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return f.token, f.refreshErr
}

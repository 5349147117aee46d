package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:       "test-access-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "test-issuer",
		Audience:        "test-audience",
	}
}

func testMember(provider types.Provider) *types.Member {
	email := "traveller@example.com"
	return &types.Member{
		ID:       uuid.New(),
		Email:    &email,
		Nickname: "traveller",
		Provider: provider,
	}
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		profile := &types.OAuthProfile{Provider: types.ProviderNaver, ProviderUserID: "naver-1", Nickname: "traveller"}
		provider := &fakeProvider{name: types.ProviderNaver, profile: profile}
		service := NewServiceImpl(mockRepo, map[types.Provider]OAuthProvider{types.ProviderNaver: provider}, testJWTConfig(), logger)
		member := testMember(types.ProviderNaver)

		mockRepo.On("UpsertMember", mock.Anything, profile).Return(member, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, member.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

		result, err := service.HandleCallback(ctx, types.ProviderNaver, url.Values{"code": {"abc"}, "state": {"s"}})
		require.NoError(t, err)
		assert.Equal(t, member, result.Member)
		assert.NotEmpty(t, result.Tokens.RefreshToken)

		claims, err := ParseAccessToken(result.Tokens.AccessToken, testJWTConfig())
		require.NoError(t, err)
		assert.Equal(t, member.ID.String(), claims.UserID)
		assert.Equal(t, "traveller@example.com", claims.Email)
		assert.Equal(t, "naver", claims.Provider)

		storedHash := mockRepo.Calls[1].Arguments.String(2)
		assert.Equal(t, hashRefreshToken(result.Tokens.RefreshToken), storedHash)
		assert.NotEqual(t, result.Tokens.RefreshToken, storedHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnconfiguredProvider", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewServiceImpl(mockRepo, map[types.Provider]OAuthProvider{}, testJWTConfig(), logger)

		_, err := service.HandleCallback(ctx, types.ProviderKakao, url.Values{"code": {"abc"}})
		assert.ErrorIs(t, err, types.ErrNotFound)
		mockRepo.AssertNotCalled(t, "UpsertMember", mock.Anything, mock.Anything)
	})

	t.Run("MissingCode", func(t *testing.T) {
		mockRepo := new(MockRepository)
		provider := &fakeProvider{name: types.ProviderGoogle}
		service := NewServiceImpl(mockRepo, map[types.Provider]OAuthProvider{types.ProviderGoogle: provider}, testJWTConfig(), logger)

		_, err := service.HandleCallback(ctx, types.ProviderGoogle, url.Values{})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("ExchangeFails", func(t *testing.T) {
		mockRepo := new(MockRepository)
		provider := &fakeProvider{name: types.ProviderKakao, exchangeErr: fmt.Errorf("%w: kakao token exchange", types.ErrUpstream)}
		service := NewServiceImpl(mockRepo, map[types.Provider]OAuthProvider{types.ProviderKakao: provider}, testJWTConfig(), logger)

		_, err := service.HandleCallback(ctx, types.ProviderKakao, url.Values{"code": {"abc"}})
		assert.ErrorIs(t, err, types.ErrUpstream)
		mockRepo.AssertNotCalled(t, "UpsertMember", mock.Anything, mock.Anything)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("RotatesToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewServiceImpl(mockRepo, nil, testJWTConfig(), slog.Default())
		member := testMember(types.ProviderGoogle)

		mockRepo.On("RotateRefreshToken", mock.Anything, hashRefreshToken("old-token"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(member.ID, nil).Once()
		mockRepo.On("GetMemberByID", mock.Anything, member.ID).Return(member, nil).Once()

		pair, err := service.Refresh(ctx, "old-token")
		require.NoError(t, err)
		assert.NotEqual(t, "old-token", pair.RefreshToken)
		assert.Equal(t, hashRefreshToken(pair.RefreshToken), mockRepo.Calls[0].Arguments.String(2))
		mockRepo.AssertExpectations(t)
	})

	t.Run("RevokedToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewServiceImpl(mockRepo, nil, testJWTConfig(), slog.Default())

		mockRepo.On("RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(uuid.Nil, fmt.Errorf("refresh token: %w", types.ErrUnauthenticated)).Once()

		_, err := service.Refresh(ctx, "stale")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "GetMemberByID", mock.Anything, mock.Anything)
	})

	t.Run("EmptyToken", func(t *testing.T) {
		service := NewServiceImpl(new(MockRepository), nil, testJWTConfig(), slog.Default())
		_, err := service.Refresh(ctx, "")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})
}

func TestLogout(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewServiceImpl(mockRepo, nil, testJWTConfig(), slog.Default())

	mockRepo.On("RevokeRefreshToken", mock.Anything, hashRefreshToken("tok")).Return(nil).Once()
	require.NoError(t, service.Logout(context.Background(), "tok"))
	require.NoError(t, service.Logout(context.Background(), ""))
	mockRepo.AssertExpectations(t)
}

func TestRefreshProviderToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Unsupported", func(t *testing.T) {
		mockRepo := new(MockRepository)
		member := testMember(types.ProviderKakao)
		stored := "provider-refresh"
		member.ProviderRefreshToken = &stored
		provider := &fakeProvider{name: types.ProviderKakao, canRefresh: false}
		service := NewServiceImpl(mockRepo, map[types.Provider]OAuthProvider{types.ProviderKakao: provider}, testJWTConfig(), slog.Default())

		mockRepo.On("GetMemberByID", mock.Anything, member.ID).Return(member, nil).Once()
		_, err := service.RefreshProviderToken(ctx, member.ID)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("NoStoredToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		member := testMember(types.ProviderGoogle)
		provider := &fakeProvider{name: types.ProviderGoogle, canRefresh: true}
		service := NewServiceImpl(mockRepo, map[types.Provider]OAuthProvider{types.ProviderGoogle: provider}, testJWTConfig(), slog.Default())

		mockRepo.On("GetMemberByID", mock.Anything, member.ID).Return(member, nil).Once()
		_, err := service.RefreshProviderToken(ctx, member.ID)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("StoresRotatedProviderToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		member := testMember(types.ProviderNaver)
		stored := "old-provider-refresh"
		member.ProviderRefreshToken = &stored
		expiry := time.Now().Add(time.Hour)
		provider := &fakeProvider{
			name:       types.ProviderNaver,
			canRefresh: true,
			token:      &oauth2.Token{AccessToken: "fresh", RefreshToken: "new-provider-refresh", Expiry: expiry},
		}
		service := NewServiceImpl(mockRepo, map[types.Provider]OAuthProvider{types.ProviderNaver: provider}, testJWTConfig(), slog.Default())

		mockRepo.On("GetMemberByID", mock.Anything, member.ID).Return(member, nil).Once()
		mockRepo.On("UpdateProviderRefreshToken", mock.Anything, member.ID, "new-provider-refresh").Return(nil).Once()

		token, err := service.RefreshProviderToken(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, "fresh", token.AccessToken)
		assert.Equal(t, types.ProviderNaver, token.Provider)
		mockRepo.AssertExpectations(t)
	})
}

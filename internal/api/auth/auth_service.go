package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// LoginURL returns the provider's authorize URL carrying state.
	LoginURL(ctx context.Context, provider types.Provider, state string) (string, error)
	// HandleCallback exchanges the authorization code, upserts the member
	// and issues a local token pair. State must already be validated.
	HandleCallback(ctx context.Context, provider types.Provider, params url.Values) (*types.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*types.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshProviderToken(ctx context.Context, memberID uuid.UUID) (*types.ProviderToken, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	providers map[types.Provider]OAuthProvider
	tokens    *TokenIssuer
	cfg       config.JWTConfig
}

func NewServiceImpl(repo Repository, providers map[types.Provider]OAuthProvider, cfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		providers: providers,
		tokens:    NewTokenIssuer(cfg),
		cfg:       cfg,
	}
}

func (s *ServiceImpl) provider(name types.Provider) (OAuthProvider, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("provider %q: %w", name, types.ErrNotFound)
	}
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q is not configured: %w", name, types.ErrNotFound)
	}
	return p, nil
}

func (s *ServiceImpl) LoginURL(ctx context.Context, name types.Provider, state string) (string, error) {
	p, err := s.provider(name)
	if err != nil {
		return "", err
	}
	return p.AuthURL(state)
}

func (s *ServiceImpl) HandleCallback(ctx context.Context, name types.Provider, params url.Values) (*types.LoginResult, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "HandleCallback", trace.WithAttributes(
		attribute.String("auth.provider", string(name)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "HandleCallback"), slog.String("provider", string(name)))

	result, err := s.handleCallback(ctx, name, params)
	status := "success"
	if err != nil {
		status = "error"
		l.ErrorContext(ctx, "OAuth callback failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "OAuth callback failed")
	} else {
		l.InfoContext(ctx, "Member logged in", slog.String("memberID", result.Member.ID.String()))
		span.SetStatus(codes.Ok, "Member logged in")
	}
	metrics.Get().OAuthLoginsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", string(name)),
		attribute.String("status", status),
	))
	return result, err
}

func (s *ServiceImpl) handleCallback(ctx context.Context, name types.Provider, params url.Values) (*types.LoginResult, error) {
	p, err := s.provider(name)
	if err != nil {
		return nil, err
	}
	if params.Get("code") == "" {
		return nil, fmt.Errorf("%w: missing authorization code", types.ErrInvalidInput)
	}

	profile, err := p.Exchange(ctx, params)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.UpsertMember(ctx, profile)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issuePair(ctx, member)
	if err != nil {
		return nil, err
	}
	return &types.LoginResult{Member: member, Tokens: tokens}, nil
}

func (s *ServiceImpl) issuePair(ctx context.Context, member *types.Member) (*types.TokenPair, error) {
	access, expiresAt, err := s.tokens.IssueAccessToken(member)
	if err != nil {
		return nil, err
	}
	refresh, err := randomBase64URL(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err = s.repo.StoreRefreshToken(ctx, member.ID, hashRefreshToken(refresh), time.Now().Add(s.cfg.RefreshTokenTTL)); err != nil {
		return nil, err
	}
	return &types.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

func (s *ServiceImpl) Refresh(ctx context.Context, refreshToken string) (*types.TokenPair, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Refresh")
	defer span.End()

	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token required: %w", types.ErrUnauthenticated)
	}

	newRefresh, err := randomBase64URL(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	memberID, err := s.repo.RotateRefreshToken(ctx, hashRefreshToken(refreshToken), hashRefreshToken(newRefresh),
		time.Now().Add(s.cfg.RefreshTokenTTL))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rotation failed")
		return nil, err
	}

	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	access, expiresAt, err := s.tokens.IssueAccessToken(member)
	if err != nil {
		return nil, err
	}

	span.SetStatus(codes.Ok, "Session refreshed")
	return &types.TokenPair{AccessToken: access, RefreshToken: newRefresh, ExpiresAt: expiresAt}, nil
}

func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.RevokeRefreshToken(ctx, hashRefreshToken(refreshToken))
}

func (s *ServiceImpl) RefreshProviderToken(ctx context.Context, memberID uuid.UUID) (*types.ProviderToken, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshProviderToken", trace.WithAttributes(
		attribute.String("member.id", memberID.String()),
	))
	defer span.End()

	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	p, err := s.provider(member.Provider)
	if err != nil {
		return nil, err
	}
	if !p.CanRefresh() {
		return nil, fmt.Errorf("%w: %s does not support token refresh", types.ErrInvalidInput, member.Provider)
	}
	if member.ProviderRefreshToken == nil || *member.ProviderRefreshToken == "" {
		return nil, fmt.Errorf("%w: no %s refresh token stored", types.ErrInvalidInput, member.Provider)
	}

	token, err := p.Refresh(ctx, *member.ProviderRefreshToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider refresh failed")
		return nil, err
	}
	if token.RefreshToken != "" && token.RefreshToken != *member.ProviderRefreshToken {
		if err = s.repo.UpdateProviderRefreshToken(ctx, memberID, token.RefreshToken); err != nil {
			return nil, err
		}
	}

	span.SetStatus(codes.Ok, "Provider token refreshed")
	return &types.ProviderToken{
		Provider:    member.Provider,
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry,
	}, nil
}

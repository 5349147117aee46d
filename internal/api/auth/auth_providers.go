package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
	"github.com/markbates/goth/providers/kakao"
	"github.com/markbates/goth/providers/naver"
	"golang.org/x/oauth2"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// OAuthProvider is one external identity provider.
type OAuthProvider interface {
	Name() types.Provider
	AuthURL(state string) (string, error)
	Exchange(ctx context.Context, params url.Values) (*types.OAuthProfile, error)
	CanRefresh() bool
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

type gothProvider struct {
	name     types.Provider
	provider goth.Provider
}

var _ OAuthProvider = (*gothProvider)(nil)

// NewProviders builds a provider for every entry with a client id set.
func NewProviders(cfg config.OAuthConfig) map[types.Provider]OAuthProvider {
	providers := make(map[types.Provider]OAuthProvider)
	if c := cfg.Google; c.ClientID != "" {
		providers[types.ProviderGoogle] = &gothProvider{
			name:     types.ProviderGoogle,
			provider: google.New(c.ClientID, c.ClientSecret, c.CallbackURL, "email", "profile"),
		}
	}
	if c := cfg.Kakao; c.ClientID != "" {
		providers[types.ProviderKakao] = &gothProvider{
			name:     types.ProviderKakao,
			provider: kakao.New(c.ClientID, c.ClientSecret, c.CallbackURL),
		}
	}
	if c := cfg.Naver; c.ClientID != "" {
		providers[types.ProviderNaver] = &gothProvider{
			name:     types.ProviderNaver,
			provider: naver.New(c.ClientID, c.ClientSecret, c.CallbackURL),
		}
	}
	return providers
}

func (g *gothProvider) Name() types.Provider { return g.name }

func (g *gothProvider) AuthURL(state string) (string, error) {
	sess, err := g.provider.BeginAuth(state)
	if err != nil {
		return "", fmt.Errorf("%s begin auth: %w", g.name, err)
	}
	return sess.GetAuthURL()
}

func (g *gothProvider) Exchange(ctx context.Context, params url.Values) (*types.OAuthProfile, error) {
	sess, err := g.provider.BeginAuth(params.Get("state"))
	if err != nil {
		return nil, fmt.Errorf("%s begin auth: %w", g.name, err)
	}
	if _, err = sess.Authorize(g.provider, params); err != nil {
		return nil, fmt.Errorf("%w: %s token exchange: %v", types.ErrUpstream, g.name, err)
	}
	user, err := g.provider.FetchUser(sess)
	if err != nil {
		return nil, fmt.Errorf("%w: %s profile: %v", types.ErrUpstream, g.name, err)
	}
	if user.UserID == "" {
		return nil, fmt.Errorf("%w: %s returned an empty user id", types.ErrUpstream, g.name)
	}

	nickname := user.NickName
	if nickname == "" {
		nickname = user.Name
	}
	return &types.OAuthProfile{
		Provider:       g.name,
		ProviderUserID: user.UserID,
		Email:          user.Email,
		Nickname:       nickname,
		AvatarURL:      user.AvatarURL,
		AccessToken:    user.AccessToken,
		RefreshToken:   user.RefreshToken,
		ExpiresAt:      user.ExpiresAt,
	}, nil
}

func (g *gothProvider) CanRefresh() bool {
	return g.provider.RefreshTokenAvailable()
}

func (g *gothProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	token, err := g.provider.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s refresh: %v", types.ErrUpstream, g.name, err)
	}
	if token.Expiry.IsZero() && token.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return token, nil
}

package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
	ProviderNaver  Provider = "naver"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderKakao, ProviderNaver:
		return true
	}
	return false
}

// Claims are the custom claims carried by our access tokens.
type Claims struct {
	UserID   string `json:"uid"`
	Email    string `json:"eml,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// OAuthProfile is the provider-agnostic result of a successful OAuth exchange.
type OAuthProfile struct {
	Provider       Provider
	ProviderUserID string
	Email          string
	Nickname       string
	AvatarURL      string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type LoginResult struct {
	Member *Member    `json:"member"`
	Tokens *TokenPair `json:"tokens"`
}

type ProviderToken struct {
	Provider    Provider  `json:"provider"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

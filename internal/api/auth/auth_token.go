package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// TokenIssuer mints and verifies the local HS256 access tokens.
type TokenIssuer struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

func (t *TokenIssuer) IssueAccessToken(m *types.Member) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.cfg.AccessTokenTTL)

	claims := &types.Claims{
		UserID:   m.ID.String(),
		Nickname: m.Nickname,
		Provider: string(m.Provider),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   m.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if m.Email != nil {
		claims.Email = *m.Email
	}
	if t.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{t.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken validates signature, expiry, issuer and audience.
func ParseAccessToken(tokenString string, cfg config.JWTConfig) (*types.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(cfg.Issuer),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.SecretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, types.ErrUnauthenticated
	}
	return claims, nil
}

func randomBase64URL(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashRefreshToken is what we persist, never the raw token.
func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateState compares the state cookie against the state query parameter
// in constant time.
func ValidateState(cookieState, queryState string) error {
	if cookieState == "" || queryState == "" {
		return fmt.Errorf("%w: missing state", types.ErrInvalidState)
	}
	if subtle.ConstantTimeCompare([]byte(cookieState), []byte(queryState)) != 1 {
		return fmt.Errorf("%w: state mismatch", types.ErrInvalidState)
	}
	return nil
}

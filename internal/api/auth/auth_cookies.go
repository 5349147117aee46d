package auth

import (
	"net/http"
	"time"

	"github.com/FACorreiaa/go-travel-planner/config"
)

const (
	StateCookie        = "oauth_state"
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	stateCookieMaxAge = 10 * 60
	refreshCookiePath = "/api/v1/auth"
)

func setStateCookie(w http.ResponseWriter, state string, cfg config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.SecureCookie,
	})
}

func setSessionCookies(w http.ResponseWriter, access, refresh string, cfg config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    access,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   int(cfg.AccessTokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.SecureCookie,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refresh,
		Path:     refreshCookiePath,
		Domain:   cfg.CookieDomain,
		MaxAge:   int(cfg.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.SecureCookie,
	})
}

func clearCookie(w http.ResponseWriter, name, path string, cfg config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.SecureCookie,
	})
}
